// Package usage holds the freemium quota record and the upgrade prompt policy.
package usage

import "time"

// DayLayout formats the calendar day stored in a Record.
const DayLayout = "2006-01-02"

// Record is the persisted daily usage state of one installation.
// Invariant: 0 <= Count <= daily limit after any tracker operation.
type Record struct {
	Date      string    // calendar day, DayLayout in the tracker's location
	Count     int       // gated accesses consumed on Date
	LastReset time.Time // informational, never used to decide a reset
}

// Fresh returns a zero-count record for the day containing now.
func Fresh(now time.Time, loc *time.Location) Record {
	return Record{
		Date:      Day(now, loc),
		Count:     0,
		LastReset: now,
	}
}

// Day returns the calendar day identifier of t in loc.
func Day(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(DayLayout)
}

// IsFor reports whether the record belongs to the given day.
func (r Record) IsFor(day string) bool { return r.Date == day }

// Remaining returns max(0, limit - Count).
func (r Record) Remaining(limit int) int {
	if rem := limit - r.Count; rem > 0 {
		return rem
	}
	return 0
}
