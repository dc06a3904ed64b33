package opportunity

import (
	"encoding/json"
	"strings"

	domopp "github.com/kailas-cloud/liquiditick/internal/domain/opportunity"
)

// opportunityModel maps the scanner-owned opportunities table.
type opportunityModel struct {
	ID              uint    `gorm:"primaryKey"`
	Rank            int     `gorm:"column:rank"`
	Score           float64 `gorm:"column:score;index"`
	BaseTokenSymbol string  `gorm:"column:base_token_symbol;index"`
	BaseTokenName   string  `gorm:"column:base_token_name"`
	PriceUSD        float64 `gorm:"column:price_usd"`
	PriceChange1h   float64 `gorm:"column:price_change_1h"`
	PriceChange24h  float64 `gorm:"column:price_change_24h"`
	Volume24h       float64 `gorm:"column:volume_24h"`
	Liquidity       float64 `gorm:"column:liquidity"`
	MarketCap       float64 `gorm:"column:market_cap"`
	DexID           string  `gorm:"column:dex_id"`
	ChainID         string  `gorm:"column:chain_id"`
	OpportunityType string  `gorm:"column:opportunity_type"`
	Signals         string  `gorm:"column:signals"` // JSON array
}

func (opportunityModel) TableName() string { return "opportunities" }

// platformStatsModel maps the single-row platform_stats table.
type platformStatsModel struct {
	ID             uint    `gorm:"primaryKey"`
	WinRate        float64 `gorm:"column:win_rate"`
	AvgReturn      float64 `gorm:"column:avg_return"`
	Subscribers    int     `gorm:"column:subscribers"`
	MonthlyRevenue float64 `gorm:"column:monthly_revenue"`
}

func (platformStatsModel) TableName() string { return "platform_stats" }

func modelToRow(m opportunityModel) domopp.Row {
	return domopp.Row{
		Rank:           m.Rank,
		Score:          m.Score,
		Symbol:         m.BaseTokenSymbol,
		Name:           m.BaseTokenName,
		PriceUSD:       m.PriceUSD,
		PriceChange1h:  m.PriceChange1h,
		PriceChange24h: m.PriceChange24h,
		Volume24h:      m.Volume24h,
		Liquidity:      m.Liquidity,
		MarketCap:      m.MarketCap,
		DexID:          m.DexID,
		ChainID:        m.ChainID,
		Type:           domopp.Type(m.OpportunityType),
		Signals:        decodeSignals(m.Signals),
	}
}

func rowToModel(r domopp.Row) opportunityModel {
	signals, _ := json.Marshal(r.Signals)
	return opportunityModel{
		Rank:            r.Rank,
		Score:           r.Score,
		BaseTokenSymbol: r.Symbol,
		BaseTokenName:   r.Name,
		PriceUSD:        r.PriceUSD,
		PriceChange1h:   r.PriceChange1h,
		PriceChange24h:  r.PriceChange24h,
		Volume24h:       r.Volume24h,
		Liquidity:       r.Liquidity,
		MarketCap:       r.MarketCap,
		DexID:           r.DexID,
		ChainID:         r.ChainID,
		OpportunityType: string(r.Type),
		Signals:         string(signals),
	}
}

// decodeSignals accepts a JSON array or, from older scanner runs, a comma list.
func decodeSignals(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err == nil {
		return out
	}
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
