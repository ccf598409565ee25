package calendar

import (
	"time"

	"github.com/ramunasnognys/offshore-mate-v3/internal/rotation"
	"github.com/ramunasnognys/offshore-mate-v3/pkg/dateutil"
)

// RotationCalendar implements Calendar on top of the rotation engine
type RotationCalendar struct {
	table *rotation.PhaseTable
	now   func() time.Time
}

// NewRotationCalendar creates a calendar for cfg. now decides which cell is
// flagged as today; nil means time.Now.
func NewRotationCalendar(cfg rotation.Config, now func() time.Time) *RotationCalendar {
	if now == nil {
		now = time.Now
	}
	return &RotationCalendar{
		table: rotation.NewPhaseTable(cfg),
		now:   now,
	}
}

// Config returns the rotation the calendar was built from
func (rc *RotationCalendar) Config() rotation.Config {
	return rc.table.Config()
}

// Today returns the current calendar day
func (rc *RotationCalendar) Today() time.Time {
	return dateutil.Date(rc.now())
}

// IsOnDuty checks if the given date is an on-duty day
func (rc *RotationCalendar) IsOnDuty(date time.Time) bool {
	return rc.table.Classify(date).Status == rotation.StatusOnDuty
}

// GetDayInfo returns the classification of a single day
func (rc *RotationCalendar) GetDayInfo(date time.Time) DayInfo {
	d := dateutil.Date(date)
	info := DayInfo{
		Date:           d,
		Classification: rc.table.Classify(d),
		InMonth:        true,
		IsToday:        dateutil.IsSameDay(d, rc.Today()),
	}
	info.Segment = rc.segment(d, nil)
	return info
}

// GetMonthInfo returns the full month grid. On-duty runs are shaped using
// neighbours even when they fall in the adjacent month.
func (rc *RotationCalendar) GetMonthInfo(year int, month time.Month) *MonthInfo {
	return rc.buildMonth(year, month, false)
}

// GetYearInfo returns the compact grids used by the year overview, where
// runs are clipped at month edges.
func (rc *RotationCalendar) GetYearInfo(year int) *YearInfo {
	info := &YearInfo{
		Year:         year,
		AnnualOnDuty: rotation.AnnualOnDuty(rc.Config()),
	}
	for i := 0; i < 12; i++ {
		m := rc.buildMonth(year, time.Month(i+1), true)
		info.Months[i] = *m
		info.Counts.OnDuty += m.Counts.OnDuty
		info.Counts.OffDuty += m.Counts.OffDuty
		info.Counts.Transit += m.Counts.Transit
		info.Counts.Undefined += m.Counts.Undefined
	}
	return info
}

func (rc *RotationCalendar) buildMonth(year int, month time.Month, compact bool) *MonthInfo {
	first := dateutil.StartOfMonth(year, month)
	gridStart := dateutil.StartOfWeek(first)
	today := rc.Today()

	info := &MonthInfo{
		Year:   year,
		Month:  month,
		Counts: rotation.MonthlyCounts(rc.Config(), year, month),
	}

	var clip *time.Month
	if compact {
		clip = &month
	}

	for i := 0; i < GridCells; i++ {
		d := gridStart.AddDate(0, 0, i)
		cell := DayInfo{
			Date:           d,
			Classification: rc.table.Classify(d),
			InMonth:        d.Month() == month,
		}
		if cell.InMonth {
			cell.IsToday = dateutil.IsSameDay(d, today)
			cell.Segment = rc.segment(d, clip)
		}
		info.Grid[i] = cell
	}
	return info
}

// segment shapes an on-duty day against its neighbours. With clip set,
// neighbours outside that month count as not on duty.
func (rc *RotationCalendar) segment(d time.Time, clip *time.Month) Segment {
	if !rc.IsOnDuty(d) {
		return SegmentNone
	}

	onDuty := func(n time.Time) bool {
		if clip != nil && n.Month() != *clip {
			return false
		}
		return rc.IsOnDuty(n)
	}
	prev := onDuty(d.AddDate(0, 0, -1))
	next := onDuty(d.AddDate(0, 0, 1))

	switch {
	case !prev && next:
		return SegmentStart
	case prev && !next:
		return SegmentEnd
	case !prev && !next:
		return SegmentSingle
	default:
		return SegmentMiddle
	}
}
