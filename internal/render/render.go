// Package render draws calendars for the terminal with lipgloss.
//
// Every cell carries a plain-text marker as well as a color, so the output
// stays readable when piped or when the terminal has no color support:
//
//	[ 1  2  3]   on-duty run
//	< 4>         transit
//	  5          off-duty
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"github.com/ramunasnognys/offshore-mate-v3/internal/calendar"
	"github.com/ramunasnognys/offshore-mate-v3/internal/rotation"
	"github.com/ramunasnognys/offshore-mate-v3/pkg/dateutil"
)

const cellWidth = 4

var weekdayHeader = []string{"M", "T", "W", "T", "F", "S", "S"}

// Styles holds the lipgloss style of every cell kind
type Styles struct {
	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Weekday   lipgloss.Style
	OnDuty    lipgloss.Style
	Transit   lipgloss.Style
	OffDuty   lipgloss.Style
	Undefined lipgloss.Style
	Other     lipgloss.Style
	Today     lipgloss.Style
	Box       lipgloss.Style
	Label     lipgloss.Style
}

// DefaultStyles returns the built-in palette
func DefaultStyles() Styles {
	return Styles{
		Title:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F97316")),
		Subtitle:  lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")),
		Weekday:   lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")),
		OnDuty:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#111111")).Background(lipgloss.Color("#F97316")),
		Transit:   lipgloss.NewStyle().Foreground(lipgloss.Color("#38BDF8")),
		OffDuty:   lipgloss.NewStyle().Foreground(lipgloss.Color("#DDDDDD")),
		Undefined: lipgloss.NewStyle().Foreground(lipgloss.Color("#555555")),
		Other:     lipgloss.NewStyle().Foreground(lipgloss.Color("#444444")),
		Today:     lipgloss.NewStyle().Underline(true),
		Box:       lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#444444")).Padding(0, 1),
		Label:     lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA")),
	}
}

var defaultStyles = DefaultStyles()

// Month renders a full month grid with the default styles
func Month(m *calendar.MonthInfo) string {
	return defaultStyles.Month(m)
}

// Year renders twelve compact months with the default styles
func Year(y *calendar.YearInfo) string {
	return defaultStyles.Year(y)
}

// Summary renders the month statistics with the default styles
func Summary(cfg rotation.Config, m *calendar.MonthInfo, annualOnDuty int) string {
	return defaultStyles.Summary(cfg, m, annualOnDuty)
}

// Month renders a full month grid. Days of the neighbouring months are dimmed.
func (s Styles) Month(m *calendar.MonthInfo) string {
	title := s.Title.Render(m.Month.String()) + " " + s.Subtitle.Render(fmt.Sprint(m.Year))
	return lipgloss.JoinVertical(lipgloss.Left, title, "", s.grid(m, true))
}

// Year renders the year overview, three months per row
func (s Styles) Year(y *calendar.YearInfo) string {
	rows := make([]string, 0, 4)
	for r := 0; r < 4; r++ {
		boxes := make([]string, 0, 3)
		for c := 0; c < 3; c++ {
			m := &y.Months[r*3+c]
			body := lipgloss.JoinVertical(lipgloss.Left, s.Title.Render(m.Month.String()), s.grid(m, false))
			boxes = append(boxes, s.Box.Render(body))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, boxes...))
	}

	header := s.Title.Render(fmt.Sprint(y.Year)) + "  " + s.Subtitle.Render(fmt.Sprintf(
		"on-duty %d · transit %d · off-duty %d · work days (1yr) %d",
		y.Counts.OnDuty, y.Counts.Transit, y.Counts.OffDuty, y.AnnualOnDuty))
	return lipgloss.JoinVertical(lipgloss.Left, append([]string{header}, rows...)...)
}

// Summary renders the sidebar statistics for a month
func (s Styles) Summary(cfg rotation.Config, m *calendar.MonthInfo, annualOnDuty int) string {
	bar := progress.New(progress.WithWidth(24), progress.WithoutPercentage(),
		progress.WithSolidFill("#F97316"))

	lines := []string{
		s.Title.Render("Rotation Details"),
		s.Label.Render("Pattern:    ") + cfg.Pattern.String(),
		s.Label.Render("Start date: ") + cfg.Anchor.Format("January 2, 2006"),
		"",
		s.Title.Render(fmt.Sprintf("%s %d", m.Month, m.Year)),
		s.OnDuty.Render(" on-duty ") + fmt.Sprintf("  %d", m.Counts.OnDuty),
		s.Transit.Render(" transit ") + fmt.Sprintf("  %d", m.Counts.Transit),
		s.OffDuty.Render(" off-duty") + fmt.Sprintf("  %d", m.Counts.OffDuty),
	}
	if m.Counts.Undefined > 0 {
		lines = append(lines, s.Undefined.Render(" before start")+fmt.Sprintf("  %d", m.Counts.Undefined))
	}
	share := m.Counts.OnDutyShare()
	lines = append(lines,
		bar.ViewAs(share)+fmt.Sprintf(" %.0f%%", share*100),
		"",
		s.Label.Render("Work days (1yr): ")+fmt.Sprint(annualOnDuty),
	)
	return s.Box.Render(strings.Join(lines, "\n"))
}

// Legend explains the cell markers
func (s Styles) Legend() string {
	return strings.Join([]string{
		s.OnDuty.Render("[ 1]") + " on-duty",
		s.Transit.Render("< 2>") + " transit",
		s.OffDuty.Render("  3 ") + " off-duty",
	}, "   ")
}

// Day renders a one-line description of a single day
func Day(d calendar.DayInfo) string {
	c := d.Classification
	line := fmt.Sprintf("%s  %s", d.Date.Format("Mon 2006-01-02"), c.Status)
	if !c.Defined() {
		return line + " (before the rotation starts)"
	}
	line += fmt.Sprintf(" (day %d of cycle)", c.DayInCycle+1)
	switch {
	case c.IsFirstDayOfBlock && c.IsLastDayOfBlock:
		line += ", single-day hitch"
	case c.IsFirstDayOfBlock:
		line += ", first day of hitch"
	case c.IsLastDayOfBlock:
		line += ", crossover day"
	}
	return line
}

func (s Styles) grid(m *calendar.MonthInfo, showOther bool) string {
	var sb strings.Builder
	for _, wd := range weekdayHeader {
		sb.WriteString(s.Weekday.Render(fmt.Sprintf(" %-2s ", wd)))
	}
	for _, week := range m.Weeks() {
		sb.WriteString("\n")
		for _, d := range week {
			sb.WriteString(s.cell(d, showOther))
		}
	}
	return sb.String()
}

func (s Styles) cell(d calendar.DayInfo, showOther bool) string {
	if !d.InMonth {
		if !showOther {
			return strings.Repeat(" ", cellWidth)
		}
		return s.Other.Render(fmt.Sprintf(" %2d ", d.Date.Day()))
	}

	var text string
	var style lipgloss.Style
	switch d.Status() {
	case rotation.StatusOnDuty:
		style = s.OnDuty
		text = onDutyCell(d.Date.Day(), d.Segment)
	case rotation.StatusTransit:
		style = s.Transit
		text = fmt.Sprintf("<%2d>", d.Date.Day())
	case rotation.StatusOffDuty:
		style = s.OffDuty
		text = fmt.Sprintf(" %2d ", d.Date.Day())
	default:
		style = s.Undefined
		text = fmt.Sprintf(" %2d ", d.Date.Day())
	}
	if d.IsToday {
		style = style.Inherit(s.Today)
	}
	return style.Render(text)
}

func onDutyCell(day int, seg calendar.Segment) string {
	switch seg {
	case calendar.SegmentStart:
		return fmt.Sprintf("[%2d ", day)
	case calendar.SegmentEnd:
		return fmt.Sprintf(" %2d]", day)
	case calendar.SegmentSingle:
		return fmt.Sprintf("[%2d]", day)
	default:
		return fmt.Sprintf(" %2d ", day)
	}
}

// MonthTitle formats a month for headers and prompts
func MonthTitle(year int, month time.Month) string {
	return dateutil.StartOfMonth(year, month).Format("January 2006")
}
