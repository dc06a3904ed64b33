package domain

// DefaultKeyPrefix namespaces every persisted key.
const DefaultKeyPrefix = "liquiditick:"

// InstallationKeys lists every persisted key owned by one installation.
type InstallationKeys struct {
	Usage        string
	Emails       string
	EmailReports string
	Tier         string
}

// NewInstallationKeys builds the key set for an installation.
func NewInstallationKeys(prefix, installationID string) InstallationKeys {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return InstallationKeys{
		Usage:        prefix + "usage:" + installationID,
		Emails:       prefix + "emails:" + installationID,
		EmailReports: prefix + "email_reports:" + installationID,
		Tier:         prefix + "tier:" + installationID,
	}
}

// All returns every key, usage record first.
func (k InstallationKeys) All() []string {
	return []string{k.Usage, k.Emails, k.EmailReports, k.Tier}
}
