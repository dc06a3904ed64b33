// Package opportunity describes scored market rows produced by the external scanner.
package opportunity

import (
	"errors"
	"strings"
)

// PageSize caps every fetch.
const PageSize = 50

// HighScore is the score from which a row counts as high-conviction.
const HighScore = 8.0

// ErrUnavailable signals that the data source is unconfigured or unreachable.
// It is distinct from an empty result.
var ErrUnavailable = errors.New("opportunity source unavailable")

// Type is the scanner's classification of an opportunity.
type Type string

// Known opportunity types.
const (
	TypeExplosive Type = "explosive"
	TypeMoonshot  Type = "moonshot"
	TypeMomentum  Type = "momentum"
	TypeStandard  Type = "standard"
)

// ParseType validates a type filter value.
func ParseType(s string) (Type, bool) {
	switch t := Type(strings.ToLower(strings.TrimSpace(s))); t {
	case TypeExplosive, TypeMoonshot, TypeMomentum, TypeStandard:
		return t, true
	default:
		return "", false
	}
}

// Row is one scored token as rendered by the dashboard.
type Row struct {
	Rank           int
	Score          float64
	Symbol         string
	Name           string
	PriceUSD       float64
	PriceChange1h  float64
	PriceChange24h float64
	Volume24h      float64
	Liquidity      float64
	MarketCap      float64
	DexID          string
	ChainID        string
	Type           Type
	Signals        []string
}

// Stats holds platform-wide performance figures.
type Stats struct {
	WinRate        float64
	AvgReturn      float64
	Subscribers    int
	MonthlyRevenue float64
}

// Status tells the caller whether rows came from the live source.
type Status string

// Connectivity states.
const (
	StatusOnline  Status = "online"
	StatusOffline Status = "offline"
)
