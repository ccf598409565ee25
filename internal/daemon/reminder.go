package daemon

import (
	"fmt"
	"time"

	"github.com/ramunasnognys/offshore-mate-v3/internal/rotation"
	"github.com/ramunasnognys/offshore-mate-v3/pkg/dateutil"
)

// ReminderKind says why tomorrow deserves a message
type ReminderKind int

const (
	ReminderNone ReminderKind = iota
	ReminderTravel
	ReminderHitchStart
	ReminderCrossover
)

func (k ReminderKind) String() string {
	switch k {
	case ReminderTravel:
		return "travel"
	case ReminderHitchStart:
		return "hitch-start"
	case ReminderCrossover:
		return "crossover"
	default:
		return "none"
	}
}

// Reminder is one evening message about the next day
type Reminder struct {
	Kind     ReminderKind
	Date     time.Time // the day the reminder is about
	Schedule string
	Text     string
}

// ReminderFor decides whether the day after today needs a reminder.
// Travel days, the first day of a hitch and crossover days do.
func ReminderFor(cfg rotation.Config, today time.Time) (Reminder, bool) {
	day := dateutil.Date(today)
	next := cfg.Classify(dateutil.AddDays(day, 1))
	r := Reminder{Date: next.Date, Schedule: cfg.String()}
	when := next.Date.Format("Mon 2 Jan")

	switch {
	case next.Status == rotation.StatusTransit:
		r.Kind = ReminderTravel
		prev := cfg.Classify(day)
		after := cfg.Classify(dateutil.AddDays(day, 2))
		switch {
		case prev.IsLastDayOfBlock && after.IsFirstDayOfBlock:
			r.Text = fmt.Sprintf("Tomorrow (%s) is a travel day: home and straight back out.", when)
		case prev.IsLastDayOfBlock:
			r.Text = fmt.Sprintf("Tomorrow (%s) is a travel day: heading home.", when)
		default:
			r.Text = fmt.Sprintf("Tomorrow (%s) is a travel day: heading offshore.", when)
		}
	case next.IsFirstDayOfBlock:
		r.Kind = ReminderHitchStart
		r.Text = fmt.Sprintf("Hitch starts tomorrow (%s): %d days on.", when, cfg.Pattern.OnDays)
	case next.IsLastDayOfBlock:
		r.Kind = ReminderCrossover
		r.Text = fmt.Sprintf("Crossover tomorrow (%s): last day of the hitch.", when)
	default:
		return Reminder{}, false
	}
	return r, true
}
