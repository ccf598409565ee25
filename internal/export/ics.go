// Package export writes the on-duty block series in calendar formats.
package export

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/ramunasnognys/offshore-mate-v3/internal/rotation"
)

const (
	DefaultCycles  = 50
	DefaultSummary = "Offshore Rotation"
	DefaultDomain  = "offshoremate.app"

	prodID = "-//OffshoreMate//App//EN"
)

// ICSOptions controls WriteICS. Zero values fall back to the defaults above.
type ICSOptions struct {
	Cycles  int
	Summary string
	Domain  string
	Now     func() time.Time
}

func (o ICSOptions) withDefaults() ICSOptions {
	if o.Cycles <= 0 {
		o.Cycles = DefaultCycles
	}
	if o.Summary == "" {
		o.Summary = DefaultSummary
	}
	if o.Domain == "" {
		o.Domain = DefaultDomain
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// NewCalendar builds one all-day VEVENT per on-duty block. DTEND is
// exclusive, which is how iCalendar expresses all-day ranges.
func NewCalendar(cfg rotation.Config, opts ICSOptions) *ics.Calendar {
	opts = opts.withDefaults()
	stamp := opts.Now()
	summary := strings.ReplaceAll(opts.Summary, "\r\n", "\n")

	cal := ics.NewCalendar()
	cal.SetProductId(prodID)
	cal.SetCalscale("GREGORIAN")
	for _, b := range rotation.OnDutyBlocks(cfg, opts.Cycles) {
		event := cal.AddEvent(strconv.FormatInt(b.Start.UnixMilli(), 10) + "@" + opts.Domain)
		event.SetDtStampTime(stamp)
		event.SetAllDayStartAt(b.Start)
		event.SetAllDayEndAt(b.End)
		event.SetSummary(summary)
		event.SetTimeTransparency(ics.TransparencyOpaque)
	}
	return cal
}

// WriteICS serializes NewCalendar with CRLF line endings and 75-octet
// folding. Returns the number of events written.
func WriteICS(w io.Writer, cfg rotation.Config, opts ICSOptions) (int, error) {
	cal := NewCalendar(cfg, opts)

	bw := bufio.NewWriter(w)
	if err := cal.SerializeTo(bw, ics.WithNewLineWindows); err != nil {
		return 0, fmt.Errorf("failed to write calendar: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return 0, fmt.Errorf("failed to write calendar: %w", err)
	}
	return len(cal.Events()), nil
}
