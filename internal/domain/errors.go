package domain

import "errors"

var (
	// ErrInvalidFilter signals an out-of-range or malformed opportunity filter.
	ErrInvalidFilter = errors.New("invalid filter")
	// ErrInvalidTier signals an unknown subscription tier string.
	ErrInvalidTier = errors.New("invalid tier")
	// ErrInvalidEmail signals a rejected email address.
	ErrInvalidEmail = errors.New("invalid email")
	// ErrInvalidInstallation signals a missing or malformed installation ID.
	ErrInvalidInstallation = errors.New("invalid installation id")
	// ErrQuotaExhausted signals that the free daily quota is spent.
	// It is never raised by the tracker itself; callers that need an error
	// value (SDK, admin tooling) use it to describe a denied access.
	ErrQuotaExhausted = errors.New("daily quota exhausted")
	// ErrFeatureLocked signals a Pro-only feature requested on the Free tier.
	ErrFeatureLocked = errors.New("feature requires pro tier")
)

// ErrNarrativeProvider signals a failed or empty response from the report model.
var ErrNarrativeProvider = errors.New("narrative provider error")
