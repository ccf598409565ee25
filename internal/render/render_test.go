package render

import (
	"strings"
	"testing"
	"time"

	"github.com/ramunasnognys/offshore-mate-v3/internal/calendar"
	"github.com/ramunasnognys/offshore-mate-v3/internal/rotation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCalendar(t *testing.T, start, pattern string) *calendar.RotationCalendar {
	t.Helper()
	cfg, err := rotation.ParseConfig(start, pattern)
	require.NoError(t, err)
	now := func() time.Time { return time.Date(2024, 5, 15, 9, 0, 0, 0, time.UTC) }
	return calendar.NewRotationCalendar(cfg, now)
}

func TestMonth_Markers(t *testing.T) {
	cal := testCalendar(t, "2024-05-01", "3/2")
	out := Month(cal.GetMonthInfo(2024, time.May))

	assert.Contains(t, out, "May")
	assert.Contains(t, out, "2024")
	// 1-3 on duty, 4 and 5 transit, 6-8 on duty
	assert.Contains(t, out, "[ 1")
	assert.Contains(t, out, "  3]")
	assert.Contains(t, out, "< 4>")
	assert.Contains(t, out, "< 5>")
	assert.Contains(t, out, "[ 6")
}

func TestMonth_SixWeeks(t *testing.T) {
	cal := testCalendar(t, "2024-01-01", "14/14")
	out := Month(cal.GetMonthInfo(2024, time.February))
	lines := strings.Split(out, "\n")
	// title, blank, weekday header, six weeks
	assert.Len(t, lines, 9)
}

func TestYear(t *testing.T) {
	cal := testCalendar(t, "2024-01-01", "14/14")
	out := Year(cal.GetYearInfo(2024))
	for _, m := range []string{"January", "June", "December"} {
		assert.Contains(t, out, m)
	}
	assert.Contains(t, out, "work days (1yr) 183")
}

func TestSummary(t *testing.T) {
	cal := testCalendar(t, "2024-01-01", "14/14")
	m := cal.GetMonthInfo(2024, time.January)
	out := Summary(cal.Config(), m, 183)

	assert.Contains(t, out, "14/14")
	assert.Contains(t, out, "January 1, 2024")
	assert.Contains(t, out, "Work days (1yr): 183")
}

func TestSummary_BeforeStart(t *testing.T) {
	cal := testCalendar(t, "2024-01-10", "14/14")
	out := Summary(cal.Config(), cal.GetMonthInfo(2024, time.January), 183)
	assert.Contains(t, out, "before start")
}

func TestDay(t *testing.T) {
	cal := testCalendar(t, "2024-01-01", "14/14")
	tests := []struct {
		date time.Time
		want string
	}{
		{time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "Mon 2024-01-01  on-duty (day 1 of cycle), first day of hitch"},
		{time.Date(2024, 1, 14, 0, 0, 0, 0, time.UTC), "Sun 2024-01-14  on-duty (day 14 of cycle), crossover day"},
		{time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), "Mon 2024-01-15  transit (day 15 of cycle)"},
		{time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC), "Sat 2024-01-20  off-duty (day 20 of cycle)"},
		{time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC), "Sun 2023-12-31  undefined (before the rotation starts)"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := Day(cal.GetDayInfo(tt.date))
			if got != tt.want {
				t.Errorf("Day(%v) = %q, want %q", tt.date, got, tt.want)
			}
		})
	}
}

func TestMonthTitle(t *testing.T) {
	assert.Equal(t, "March 2025", MonthTitle(2025, time.March))
}
