package opportunity

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/liquiditick/internal/domain"
)

// MaxSymbolLen bounds the symbol search term.
const MaxSymbolLen = 20

// MaxScore is the upper bound of a scanner score.
const MaxScore = 10.0

// Filters narrows a fetch. Nil pointers and empty strings mean "no constraint".
type Filters struct {
	TokenSymbol  string
	MinScore     *float64
	MinVolume    *float64
	MinLiquidity *float64
	Type         Type
}

// Validate checks bounds and normalises the symbol and type in place.
func (f *Filters) Validate() error {
	f.TokenSymbol = strings.TrimSpace(f.TokenSymbol)
	if len(f.TokenSymbol) > MaxSymbolLen {
		return fmt.Errorf("%w: token symbol longer than %d characters", domain.ErrInvalidFilter, MaxSymbolLen)
	}
	if f.MinScore != nil && (*f.MinScore < 0 || *f.MinScore > MaxScore) {
		return fmt.Errorf("%w: min score must be within [0, %g]", domain.ErrInvalidFilter, MaxScore)
	}
	if f.MinVolume != nil && *f.MinVolume < 0 {
		return fmt.Errorf("%w: min volume must be non-negative", domain.ErrInvalidFilter)
	}
	if f.MinLiquidity != nil && *f.MinLiquidity < 0 {
		return fmt.Errorf("%w: min liquidity must be non-negative", domain.ErrInvalidFilter)
	}
	if f.Type != "" {
		t, ok := ParseType(string(f.Type))
		if !ok {
			return fmt.Errorf("%w: unknown opportunity type %q", domain.ErrInvalidFilter, f.Type)
		}
		f.Type = t
	}
	return nil
}

// Match reports whether a row satisfies the filters.
func (f Filters) Match(r Row) bool {
	if f.TokenSymbol != "" &&
		!strings.Contains(strings.ToLower(r.Symbol), strings.ToLower(f.TokenSymbol)) {
		return false
	}
	if f.MinScore != nil && r.Score < *f.MinScore {
		return false
	}
	if f.MinVolume != nil && r.Volume24h < *f.MinVolume {
		return false
	}
	if f.MinLiquidity != nil && r.Liquidity < *f.MinLiquidity {
		return false
	}
	if f.Type != "" && r.Type != f.Type {
		return false
	}
	return true
}

// Canonical renders the filters as a stable string, used for cache keys.
func (f Filters) Canonical() string {
	var b strings.Builder
	b.WriteString("symbol=")
	b.WriteString(strings.ToLower(f.TokenSymbol))
	writeFloat(&b, "score", f.MinScore)
	writeFloat(&b, "volume", f.MinVolume)
	writeFloat(&b, "liquidity", f.MinLiquidity)
	b.WriteString("&type=")
	b.WriteString(string(f.Type))
	return b.String()
}

func writeFloat(b *strings.Builder, name string, v *float64) {
	b.WriteString("&")
	b.WriteString(name)
	b.WriteString("=")
	if v != nil {
		b.WriteString(strconv.FormatFloat(*v, 'g', -1, 64))
	}
}
