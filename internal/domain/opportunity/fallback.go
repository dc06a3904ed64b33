package opportunity

// Fallback returns the fixed demo rows shown while the source is offline.
// A fresh slice is returned on every call.
func Fallback() []Row {
	return []Row{
		{
			Rank:           1,
			Score:          9.2,
			Symbol:         "PEPE",
			Name:           "Pepe",
			PriceUSD:       0.00001234,
			PriceChange1h:  15.7,
			PriceChange24h: 87.3,
			Volume24h:      45_600_000,
			Liquidity:      2_890_000,
			MarketCap:      125_000_000,
			DexID:          "uniswapv3",
			ChainID:        "ethereum",
			Type:           TypeMomentum,
			Signals:        []string{"Whale Activity", "Volume Surge", "Momentum"},
		},
		{
			Rank:           2,
			Score:          8.7,
			Symbol:         "DOGE",
			Name:           "Dogecoin",
			PriceUSD:       0.08234,
			PriceChange1h:  5.2,
			PriceChange24h: 23.1,
			Volume24h:      12_300_000,
			Liquidity:      890_000,
			MarketCap:      95_000_000,
			DexID:          "uniswapv2",
			ChainID:        "ethereum",
			Type:           TypeMoonshot,
			Signals:        []string{"Trending", "High Volume"},
		},
	}
}

// FallbackTokens is the symbol list shown while the source is offline.
func FallbackTokens() []string {
	return []string{"PEPE", "DOGE", "SHIB", "BONK", "FLOKI"}
}

// FallbackStats are the platform figures shown while the source is offline.
func FallbackStats() Stats {
	return Stats{
		WinRate:        73.2,
		AvgReturn:      24.7,
		Subscribers:    247,
		MonthlyRevenue: 7161,
	}
}
