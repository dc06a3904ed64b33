package liquiditick

import (
	"github.com/kailas-cloud/liquiditick/internal/domain"
	domopp "github.com/kailas-cloud/liquiditick/internal/domain/opportunity"
)

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidFilter       = domain.ErrInvalidFilter
	ErrInvalidTier         = domain.ErrInvalidTier
	ErrInvalidEmail        = domain.ErrInvalidEmail
	ErrInvalidInstallation = domain.ErrInvalidInstallation
	ErrQuotaExhausted      = domain.ErrQuotaExhausted
	ErrFeatureLocked       = domain.ErrFeatureLocked
	ErrSourceUnavailable   = domopp.ErrUnavailable
)
