package oppcache

import domopp "github.com/kailas-cloud/liquiditick/internal/domain/opportunity"

type rowDTO struct {
	Rank           int      `json:"rank"`
	Score          float64  `json:"score"`
	Symbol         string   `json:"symbol"`
	Name           string   `json:"name"`
	PriceUSD       float64  `json:"price_usd"`
	PriceChange1h  float64  `json:"price_change_1h"`
	PriceChange24h float64  `json:"price_change_24h"`
	Volume24h      float64  `json:"volume_24h"`
	Liquidity      float64  `json:"liquidity"`
	MarketCap      float64  `json:"market_cap"`
	DexID          string   `json:"dex_id"`
	ChainID        string   `json:"chain_id"`
	Type           string   `json:"type"`
	Signals        []string `json:"signals,omitempty"`
}

func rowsToDTOs(rows []domopp.Row) []rowDTO {
	out := make([]rowDTO, len(rows))
	for i, r := range rows {
		out[i] = rowDTO{
			Rank:           r.Rank,
			Score:          r.Score,
			Symbol:         r.Symbol,
			Name:           r.Name,
			PriceUSD:       r.PriceUSD,
			PriceChange1h:  r.PriceChange1h,
			PriceChange24h: r.PriceChange24h,
			Volume24h:      r.Volume24h,
			Liquidity:      r.Liquidity,
			MarketCap:      r.MarketCap,
			DexID:          r.DexID,
			ChainID:        r.ChainID,
			Type:           string(r.Type),
			Signals:        r.Signals,
		}
	}
	return out
}

func dtosToRows(dtos []rowDTO) []domopp.Row {
	out := make([]domopp.Row, len(dtos))
	for i, d := range dtos {
		out[i] = domopp.Row{
			Rank:           d.Rank,
			Score:          d.Score,
			Symbol:         d.Symbol,
			Name:           d.Name,
			PriceUSD:       d.PriceUSD,
			PriceChange1h:  d.PriceChange1h,
			PriceChange24h: d.PriceChange24h,
			Volume24h:      d.Volume24h,
			Liquidity:      d.Liquidity,
			MarketCap:      d.MarketCap,
			DexID:          d.DexID,
			ChainID:        d.ChainID,
			Type:           domopp.Type(d.Type),
			Signals:        d.Signals,
		}
	}
	return out
}
