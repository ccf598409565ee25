package daemon

import (
	"fmt"
	"strings"
	"time"

	"github.com/ramunasnognys/offshore-mate-v3/internal/render"
	"github.com/ramunasnognys/offshore-mate-v3/pkg/dateutil"
	"go.uber.org/zap"
	"gopkg.in/telebot.v3"
)

// NewTelegramBot creates a long-polling bot. It does not start polling.
func NewTelegramBot(token string, logger *zap.Logger) (*telebot.Bot, error) {
	pref := telebot.Settings{
		Token:  token,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c telebot.Context) { // Global error handler
			fields := []zap.Field{zap.Error(err)}
			if c != nil && c.Chat() != nil {
				fields = append(fields, zap.Int64("chat_id", c.Chat().ID), zap.String("text", c.Text()))
			}
			logger.Error("Telegram handler failed", fields...)
		},
	}
	bot, err := telebot.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("could not create Telegram bot: %w", err)
	}
	return bot, nil
}

// RegisterCommands answers /today, /tomorrow and /month from the daemon's active rotation
func RegisterCommands(bot *telebot.Bot, d *Daemon, logger *zap.Logger) {
	reply := func(command string, text func() string) telebot.HandlerFunc {
		return func(c telebot.Context) error {
			logger.Info("Processing command",
				zap.String("command", command),
				zap.Int64("chat_id", c.Chat().ID))
			return c.Send(text())
		}
	}

	bot.Handle("/start", reply("/start", func() string {
		return "Rotation bot ready. Commands: /today, /tomorrow, /month"
	}))
	bot.Handle("/today", reply("/today", func() string {
		return d.DayText(0)
	}))
	bot.Handle("/tomorrow", reply("/tomorrow", func() string {
		return d.DayText(1)
	}))
	bot.Handle("/month", reply("/month", d.MonthText))
}

// DayText describes the day offset days from today
func (d *Daemon) DayText(offset int) string {
	cal := d.Calendar()
	day := dateutil.AddDays(cal.Today(), offset)
	return render.Day(cal.GetDayInfo(day))
}

// MonthText summarizes the current month
func (d *Daemon) MonthText() string {
	cal := d.Calendar()
	today := cal.Today()
	m := cal.GetMonthInfo(today.Year(), today.Month())

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (%s)\n", render.MonthTitle(m.Year, m.Month), cal.Config())
	fmt.Fprintf(&sb, "on-duty: %d\ntransit: %d\noff-duty: %d\n", m.Counts.OnDuty, m.Counts.Transit, m.Counts.OffDuty)
	if m.Counts.Undefined > 0 {
		fmt.Fprintf(&sb, "before start: %d\n", m.Counts.Undefined)
	}

	blocks := 0
	for _, day := range m.Days() {
		if day.Classification.IsFirstDayOfBlock {
			if blocks == 0 {
				sb.WriteString("hitches starting:")
			}
			fmt.Fprintf(&sb, " %d", day.Date.Day())
			blocks++
		}
	}
	if blocks > 0 {
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}
