// Package tier defines the subscription class controlling quota enforcement.
package tier

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/liquiditick/internal/domain"
)

// Tier is the user's subscription class.
type Tier string

const (
	// Free is metered by the daily quota.
	Free Tier = "free"
	// Pro bypasses the quota entirely.
	Pro Tier = "pro"
)

// Parse converts a persisted flag. Anything other than "pro" is Free,
// matching how the stored flag has always been read.
func Parse(s string) Tier {
	if strings.EqualFold(strings.TrimSpace(s), string(Pro)) {
		return Pro
	}
	return Free
}

// ParseStrict converts user input and rejects unknown values.
func ParseStrict(s string) (Tier, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(Free):
		return Free, nil
	case string(Pro):
		return Pro, nil
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidTier, s)
	}
}

// IsPro reports whether quota checks are skipped.
func (t Tier) IsPro() bool { return t == Pro }

func (t Tier) String() string { return string(t) }
