// Package report summarises the current opportunity set for the daily digest.
package report

import (
	"time"

	"github.com/kailas-cloud/liquiditick/internal/domain/opportunity"
)

// TopN is how many rows the digest highlights.
const TopN = 5

// Summary aggregates one opportunity set.
type Summary struct {
	Date            string
	Total           int
	HighScoreCount  int
	ExplosiveCount  int
	AverageScore    float64
	TotalVolume     float64
	Top             []opportunity.Row
	Narrative       string
	NarrativeSource string // "model" or "template"
	GeneratedAt     time.Time
}

// Summarize computes the aggregate figures. Rows are expected in score order.
func Summarize(rows []opportunity.Row) Summary {
	var s Summary
	s.Total = len(rows)

	var scoreSum float64
	for _, r := range rows {
		scoreSum += r.Score
		s.TotalVolume += r.Volume24h
		if r.Score >= opportunity.HighScore {
			s.HighScoreCount++
		}
		if r.Type == opportunity.TypeExplosive {
			s.ExplosiveCount++
		}
	}
	if s.Total > 0 {
		s.AverageScore = scoreSum / float64(s.Total)
	}

	n := min(TopN, len(rows))
	s.Top = append([]opportunity.Row(nil), rows[:n]...)
	return s
}
