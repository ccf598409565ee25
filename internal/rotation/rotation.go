// Package rotation classifies calendar days under a repeating on/off rotation.
//
// Everything here is a pure function of (date, Config). A Config is a value:
// it is built once from an anchor date and a pattern and never changes, so
// any number of goroutines may classify concurrently.
package rotation

import (
	"fmt"
	"time"

	"github.com/ramunasnognys/offshore-mate-v3/pkg/dateutil"
)

// Status is the classification of a single day
type Status int

const (
	// StatusUndefined is returned for days before the anchor
	StatusUndefined Status = iota
	StatusOnDuty
	StatusOffDuty
	StatusTransit
)

func (s Status) String() string {
	switch s {
	case StatusOnDuty:
		return "on-duty"
	case StatusOffDuty:
		return "off-duty"
	case StatusTransit:
		return "transit"
	default:
		return "undefined"
	}
}

// Classification is the engine's answer for one date
type Classification struct {
	Date              time.Time
	Status            Status
	DayInCycle        int // -1 when undefined
	IsFirstDayOfBlock bool
	IsLastDayOfBlock  bool
}

// Defined reports whether the date is on or after the anchor
func (c Classification) Defined() bool {
	return c.Status != StatusUndefined
}

// Config is an anchor date plus a cycle pattern.
// The anchor is day 0 of the first on-duty block.
type Config struct {
	Anchor  time.Time
	Pattern CyclePattern
}

// NewConfig parses the pattern string and normalizes the anchor to its
// calendar day. A malformed pattern returns an *InvalidPatternError.
func NewConfig(anchor time.Time, pattern string) (Config, error) {
	p, err := ParsePattern(pattern)
	if err != nil {
		return Config{}, err
	}
	return NewConfigFromPattern(anchor, p)
}

// NewConfigFromPattern validates an already-split pattern
func NewConfigFromPattern(anchor time.Time, p CyclePattern) (Config, error) {
	p, err := NewCyclePattern(p.OnDays, p.OffDays)
	if err != nil {
		return Config{}, err
	}
	return Config{Anchor: dateutil.Date(anchor), Pattern: p}, nil
}

// ParseConfig builds a Config from the persisted string forms
func ParseConfig(startDate, pattern string) (Config, error) {
	anchor, err := dateutil.ParseDate(startDate)
	if err != nil {
		return Config{}, fmt.Errorf("invalid start date: %w", err)
	}
	return NewConfig(anchor, pattern)
}

// String renders "<pattern> from <anchor>"
func (c Config) String() string {
	return fmt.Sprintf("%s from %s", c.Pattern, dateutil.FormatDate(c.Anchor))
}

// Classify returns the classification of date under c.
// Time of day and location are ignored beyond picking the calendar day.
func (c Config) Classify(date time.Time) Classification {
	return Classify(date, c)
}

// IsOnDuty is a shorthand for Classify(date).Status == StatusOnDuty
func (c Config) IsOnDuty(date time.Time) bool {
	return Classify(date, c).Status == StatusOnDuty
}

// Classify returns the classification of date under cfg.
//
// Off-duty days are refined to transit when the next day opens an on-duty
// block or the previous day closed one. On-duty days are never refined.
func Classify(date time.Time, cfg Config) Classification {
	day := dateutil.Date(date)
	base := classifyBase(day, cfg)
	if base.Status != StatusOffDuty {
		return base
	}

	next := classifyBase(day.AddDate(0, 0, 1), cfg)
	if next.Status == StatusOnDuty && next.IsFirstDayOfBlock {
		base.Status = StatusTransit
		return base
	}

	prev := classifyBase(day.AddDate(0, 0, -1), cfg)
	if prev.Status == StatusOnDuty && prev.IsLastDayOfBlock {
		base.Status = StatusTransit
	}
	return base
}

// classifyBase applies the on/off split without the transit refinement
func classifyBase(day time.Time, cfg Config) Classification {
	diff := dateutil.DaysBetween(cfg.Anchor, day)
	if diff < 0 {
		return Classification{Date: day, Status: StatusUndefined, DayInCycle: -1}
	}
	return phaseClassification(day, diff%cfg.Pattern.CycleLength(), cfg.Pattern)
}

func phaseClassification(day time.Time, dayInCycle int, p CyclePattern) Classification {
	c := Classification{Date: day, DayInCycle: dayInCycle}
	if dayInCycle < p.OnDays {
		c.Status = StatusOnDuty
		c.IsFirstDayOfBlock = dayInCycle == 0
		c.IsLastDayOfBlock = dayInCycle == p.OnDays-1
		return c
	}
	c.Status = StatusOffDuty
	return c
}
