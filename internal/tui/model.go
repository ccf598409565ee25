// Package tui is the interactive month and year browser.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/ramunasnognys/offshore-mate-v3/internal/calendar"
	"github.com/ramunasnognys/offshore-mate-v3/internal/rotation"
	"github.com/ramunasnognys/offshore-mate-v3/internal/render"
	"github.com/ramunasnognys/offshore-mate-v3/pkg/dateutil"
)

type viewMode int

const (
	viewMonth viewMode = iota
	viewYear
)

// Source is what the browser needs from a calendar
type Source interface {
	calendar.Calendar
	Config() rotation.Config
	Today() time.Time
}

// Model is the bubbletea model of the browser
type Model struct {
	cal    Source
	styles render.Styles
	keys   keyMap
	help   help.Model

	mode  viewMode
	year  int
	month time.Month
	width int
}

// New creates a browser positioned on the month containing start
func New(cal Source, start time.Time) Model {
	d := dateutil.Date(start)
	return Model{
		cal:    cal,
		styles: render.DefaultStyles(),
		keys:   defaultKeyMap(),
		help:   help.New(),
		mode:   viewMonth,
		year:   d.Year(),
		month:  d.Month(),
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Prev):
			if m.mode == viewYear {
				m.year--
			} else {
				m.shiftMonth(-1)
			}
		case key.Matches(msg, m.keys.Next):
			if m.mode == viewYear {
				m.year++
			} else {
				m.shiftMonth(1)
			}
		case key.Matches(msg, m.keys.Up):
			m.year--
		case key.Matches(msg, m.keys.Down):
			m.year++
		case key.Matches(msg, m.keys.Toggle):
			if m.mode == viewMonth {
				m.mode = viewYear
			} else {
				m.mode = viewMonth
			}
		case key.Matches(msg, m.keys.Today):
			today := m.cal.Today()
			m.year, m.month = today.Year(), today.Month()
		}
	}
	return m, nil
}

func (m *Model) shiftMonth(delta int) {
	d := dateutil.StartOfMonth(m.year, m.month).AddDate(0, delta, 0)
	m.year, m.month = d.Year(), d.Month()
}

// View implements tea.Model
func (m Model) View() string {
	var body string
	if m.mode == viewYear {
		body = m.styles.Year(m.cal.GetYearInfo(m.year))
	} else {
		info := m.cal.GetMonthInfo(m.year, m.month)
		annual := rotation.AnnualOnDuty(m.cal.Config())
		body = lipgloss.JoinHorizontal(lipgloss.Top,
			m.styles.Box.Render(m.styles.Month(info)),
			" ",
			m.styles.Summary(m.cal.Config(), info, annual),
		)
	}

	today := render.Day(m.cal.GetDayInfo(m.cal.Today()))
	return lipgloss.JoinVertical(lipgloss.Left,
		body,
		m.styles.Legend(),
		m.styles.Label.Render("Today: ")+today,
		"",
		m.help.View(m.keys),
	)
}

// Run starts the browser on the alternate screen and blocks until it exits
func Run(cal Source, start time.Time) error {
	_, err := tea.NewProgram(New(cal, start), tea.WithAltScreen()).Run()
	return err
}
