package usage

// Debug is a troubleshooting snapshot of one installation's tracker.
type Debug struct {
	Current    Record
	CanAccess  bool
	Remaining  int
	DailyLimit int
	Today      string
	StorageKey string
	Emails     []string
}
