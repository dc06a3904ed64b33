package chi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/oapi-codegen/runtime"

	domopp "github.com/kailas-cloud/liquiditick/internal/domain/opportunity"
)

// OpportunitiesParams are the query parameters of the opportunity routes.
type OpportunitiesParams struct {
	Refresh      *bool    `form:"refresh,omitempty"`
	TokenSymbol  *string  `form:"token_symbol,omitempty"`
	MinScore     *float64 `form:"min_score,omitempty"`
	MinVolume    *float64 `form:"min_volume,omitempty"`
	MinLiquidity *float64 `form:"min_liquidity,omitempty"`
	Type         *string  `form:"type,omitempty"`
}

// InvalidParamFormatError reports a query parameter that failed to bind.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error { return e.Err }

func bindOpportunitiesParams(r *http.Request) (OpportunitiesParams, error) {
	var params OpportunitiesParams
	q := r.URL.Query()

	bindings := []struct {
		name string
		dest any
	}{
		{"refresh", &params.Refresh},
		{"token_symbol", &params.TokenSymbol},
		{"min_score", &params.MinScore},
		{"min_volume", &params.MinVolume},
		{"min_liquidity", &params.MinLiquidity},
		{"type", &params.Type},
	}
	for _, b := range bindings {
		if err := runtime.BindQueryParameter("form", true, false, b.name, q, b.dest); err != nil {
			return OpportunitiesParams{}, &InvalidParamFormatError{ParamName: b.name, Err: err}
		}
	}
	return params, nil
}

// Filters converts the bound parameters. "all" and empty type mean no type filter.
func (p OpportunitiesParams) Filters() (domopp.Filters, error) {
	f := domopp.Filters{
		MinScore:     p.MinScore,
		MinVolume:    p.MinVolume,
		MinLiquidity: p.MinLiquidity,
	}
	if p.TokenSymbol != nil {
		f.TokenSymbol = *p.TokenSymbol
	}
	if p.Type != nil && !strings.EqualFold(*p.Type, "all") {
		f.Type = domopp.Type(*p.Type)
	}
	if err := f.Validate(); err != nil {
		return domopp.Filters{}, err //nolint:wrapcheck // domain validation error
	}
	return f, nil
}

// TriggeredByUser reports whether the request was an explicit refresh.
func (p OpportunitiesParams) TriggeredByUser() bool {
	return p.Refresh != nil && *p.Refresh
}
