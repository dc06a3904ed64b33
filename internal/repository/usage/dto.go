package usage

import (
	"fmt"
	"time"

	domusage "github.com/kailas-cloud/liquiditick/internal/domain/usage"
)

// recordDTO is the persisted JSON shape. lastReset is epoch milliseconds.
type recordDTO struct {
	Date      string `json:"date"`
	Count     int    `json:"count"`
	LastReset int64  `json:"lastReset"`
}

func recordToDTO(r domusage.Record) recordDTO {
	return recordDTO{
		Date:      r.Date,
		Count:     r.Count,
		LastReset: r.LastReset.UnixMilli(),
	}
}

func dtoToRecord(d recordDTO) (domusage.Record, error) {
	if d.Date == "" {
		return domusage.Record{}, fmt.Errorf("%w: missing date", ErrCorrupt)
	}
	if _, err := time.Parse(domusage.DayLayout, d.Date); err != nil {
		return domusage.Record{}, fmt.Errorf("%w: date %q", ErrCorrupt, d.Date)
	}
	if d.Count < 0 {
		return domusage.Record{}, fmt.Errorf("%w: negative count %d", ErrCorrupt, d.Count)
	}
	return domusage.Record{
		Date:      d.Date,
		Count:     d.Count,
		LastReset: time.UnixMilli(d.LastReset),
	}, nil
}
