package rotation

import (
	"time"

	"github.com/ramunasnognys/offshore-mate-v3/pkg/dateutil"
)

// PhaseTable caches one classification per day of the cycle.
// Classification only depends on (date - anchor) mod cycle length, so the
// table answers any date with a single lookup. Read-only after construction.
type PhaseTable struct {
	cfg    Config
	phases []Classification
}

// NewPhaseTable precomputes every phase of cfg's cycle
func NewPhaseTable(cfg Config) *PhaseTable {
	n := cfg.Pattern.CycleLength()
	phases := make([]Classification, n)
	for i := 0; i < n; i++ {
		// Any date at least one day past the anchor sits in a full neighbourhood
		phases[i] = Classify(cfg.Anchor.AddDate(0, 0, n+i), cfg)
		phases[i].Date = time.Time{}
	}
	return &PhaseTable{cfg: cfg, phases: phases}
}

// Config returns the configuration the table was built from
func (t *PhaseTable) Config() Config {
	return t.cfg
}

// Classify returns the same result as rotation.Classify(date, t.Config())
func (t *PhaseTable) Classify(date time.Time) Classification {
	day := dateutil.Date(date)
	diff := dateutil.DaysBetween(t.cfg.Anchor, day)
	if diff < 0 {
		return Classification{Date: day, Status: StatusUndefined, DayInCycle: -1}
	}
	c := t.phases[diff%len(t.phases)]
	c.Date = day
	return c
}
