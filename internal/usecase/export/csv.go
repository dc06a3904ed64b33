// Package export renders opportunity rows as CSV.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	domopp "github.com/kailas-cloud/liquiditick/internal/domain/opportunity"
)

// Header is the fixed column order.
var Header = []string{
	"Rank", "Symbol", "Name", "Score", "Price", "Change 1h%", "Change 24h%",
	"Volume", "Liquidity", "Market Cap", "DEX", "Chain", "Type", "Signals",
}

// SignalSeparator joins a row's signals into one cell.
const SignalSeparator = " | "

const notAvailable = "N/A"

// CSVExporter writes at most domopp.PageSize rows.
type CSVExporter struct {
	filenamePrefix string
}

// NewCSVExporter creates an exporter. An empty prefix uses "liquiditick_opportunities".
func NewCSVExporter(filenamePrefix string) *CSVExporter {
	if filenamePrefix == "" {
		filenamePrefix = "liquiditick_opportunities"
	}
	return &CSVExporter{filenamePrefix: filenamePrefix}
}

// Render encodes rows with the header line first.
func (e *CSVExporter) Render(rows []domopp.Row) ([]byte, error) {
	if len(rows) > domopp.PageSize {
		rows = rows[:domopp.PageSize]
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(Header); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for i, r := range rows {
		if err := w.Write(record(r)); err != nil {
			return nil, fmt.Errorf("write csv row %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// Filename names the download for the UTC day of now.
func (e *CSVExporter) Filename(now time.Time) string {
	return e.filenamePrefix + "_" + now.UTC().Format("2006-01-02") + ".csv"
}

// ContentType is the MIME type of Render output.
func (e *CSVExporter) ContentType() string { return "text/csv; charset=utf-8" }

func record(r domopp.Row) []string {
	rank := notAvailable
	if r.Rank > 0 {
		rank = strconv.Itoa(r.Rank)
	}
	signals := notAvailable
	if len(r.Signals) > 0 {
		signals = strings.Join(r.Signals, SignalSeparator)
	}

	return []string{
		rank,
		orNA(r.Symbol),
		orNA(r.Name),
		num(r.Score),
		num(r.PriceUSD),
		num(r.PriceChange1h),
		num(r.PriceChange24h),
		num(r.Volume24h),
		num(r.Liquidity),
		num(r.MarketCap),
		orNA(r.DexID),
		orNA(r.ChainID),
		orNA(string(r.Type)),
		signals,
	}
}

func orNA(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
