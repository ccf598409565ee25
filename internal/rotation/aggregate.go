package rotation

import (
	"time"

	"github.com/ramunasnognys/offshore-mate-v3/pkg/dateutil"
)

// AnnualWindowDays is the rolling window used for the yearly on-duty total
const AnnualWindowDays = 365

// Counts tallies classifications over a date range.
// Undefined holds days before the anchor; they are in none of the other three.
type Counts struct {
	OnDuty    int
	OffDuty   int
	Transit   int
	Undefined int
}

// Scheduled returns the number of days on or after the anchor
func (c Counts) Scheduled() int {
	return c.OnDuty + c.OffDuty + c.Transit
}

// Total returns every day counted, including undefined ones
func (c Counts) Total() int {
	return c.Scheduled() + c.Undefined
}

// OnDutyShare returns the on-duty fraction of scheduled days (0 when none)
func (c Counts) OnDutyShare() float64 {
	if c.Scheduled() == 0 {
		return 0
	}
	return float64(c.OnDuty) / float64(c.Scheduled())
}

func (c *Counts) add(s Status) {
	switch s {
	case StatusOnDuty:
		c.OnDuty++
	case StatusOffDuty:
		c.OffDuty++
	case StatusTransit:
		c.Transit++
	default:
		c.Undefined++
	}
}

// CountInRange classifies every day in [start, end] once, in ascending order.
// An empty range (start after end) yields zero counts.
func CountInRange(cfg Config, start, end time.Time) Counts {
	var counts Counts
	table := NewPhaseTable(cfg)
	days := dateutil.DaysBetween(start, end)
	first := dateutil.Date(start)
	for i := 0; i <= days; i++ {
		counts.add(table.Classify(first.AddDate(0, 0, i)).Status)
	}
	return counts
}

// CountOnDutyInWindow counts on-duty days in the windowLengthDays days
// starting at the anchor.
func CountOnDutyInWindow(cfg Config, windowLengthDays int) int {
	if windowLengthDays <= 0 {
		return 0
	}
	end := cfg.Anchor.AddDate(0, 0, windowLengthDays-1)
	return CountInRange(cfg, cfg.Anchor, end).OnDuty
}

// AnnualOnDuty is the on-duty total over the first 365 days of the rotation
func AnnualOnDuty(cfg Config) int {
	return CountOnDutyInWindow(cfg, AnnualWindowDays)
}

// MonthlyCounts tallies every day of the calendar month
func MonthlyCounts(cfg Config, year int, month time.Month) Counts {
	first := dateutil.StartOfMonth(year, month)
	last := first.AddDate(0, 0, dateutil.DaysInMonth(year, month)-1)
	return CountInRange(cfg, first, last)
}
