package calendar

import (
	"time"

	"github.com/ramunasnognys/offshore-mate-v3/internal/rotation"
)

// GridCells is the fixed size of a month grid: six Monday-first weeks
const GridCells = 42

// Segment describes where an on-duty day sits inside its visible run
type Segment int

const (
	SegmentNone Segment = iota
	SegmentStart
	SegmentMiddle
	SegmentEnd
	SegmentSingle
)

func (s Segment) String() string {
	switch s {
	case SegmentStart:
		return "start"
	case SegmentMiddle:
		return "middle"
	case SegmentEnd:
		return "end"
	case SegmentSingle:
		return "single"
	default:
		return "none"
	}
}

// DayInfo represents one calendar cell
type DayInfo struct {
	Date           time.Time
	Classification rotation.Classification
	InMonth        bool
	IsToday        bool
	Segment        Segment
}

// Status is a shorthand for Classification.Status
func (d DayInfo) Status() rotation.Status {
	return d.Classification.Status
}

// MonthInfo represents calendar information for a month
type MonthInfo struct {
	Year   int
	Month  time.Month
	Counts rotation.Counts
	Grid   [GridCells]DayInfo
}

// Days returns the cells that belong to the month itself
func (m *MonthInfo) Days() []DayInfo {
	days := make([]DayInfo, 0, 31)
	for _, cell := range m.Grid {
		if cell.InMonth {
			days = append(days, cell)
		}
	}
	return days
}

// Weeks splits the grid into rows of seven
func (m *MonthInfo) Weeks() [][]DayInfo {
	weeks := make([][]DayInfo, 0, GridCells/7)
	for i := 0; i < GridCells; i += 7 {
		weeks = append(weeks, m.Grid[i:i+7])
	}
	return weeks
}

// YearInfo holds twelve compact month grids plus the rolling annual total
type YearInfo struct {
	Year         int
	Months       [12]MonthInfo
	Counts       rotation.Counts
	AnnualOnDuty int
}

// Calendar interface for querying a rotation by day, month and year
type Calendar interface {
	// IsOnDuty checks if the given date is an on-duty day
	IsOnDuty(date time.Time) bool

	// GetDayInfo returns the classification of a single day
	GetDayInfo(date time.Time) DayInfo

	// GetMonthInfo returns the full month grid
	GetMonthInfo(year int, month time.Month) *MonthInfo

	// GetYearInfo returns all twelve months in the compact form
	GetYearInfo(year int) *YearInfo
}
