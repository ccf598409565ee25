package daemon

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/telebot.v3"
)

// Notifier delivers reminders
type Notifier interface {
	Name() string
	Notify(ctx context.Context, r Reminder) error
}

// LogNotifier writes reminders to the log
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Name() string { return "log" }

func (n *LogNotifier) Notify(ctx context.Context, r Reminder) error {
	n.logger.Info("Rotation reminder",
		zap.String("kind", r.Kind.String()),
		zap.String("date", r.Date.Format("2006-01-02")),
		zap.String("schedule", r.Schedule),
		zap.String("text", r.Text))
	return nil
}

// messageSender is the part of *telebot.Bot used for notifications
type messageSender interface {
	Send(to telebot.Recipient, what interface{}, opts ...interface{}) (*telebot.Message, error)
}

// TelegramNotifier sends reminders to one Telegram chat
type TelegramNotifier struct {
	bot    messageSender
	chatID int64
}

func NewTelegramNotifier(bot *telebot.Bot, chatID int64) *TelegramNotifier {
	return &TelegramNotifier{bot: bot, chatID: chatID}
}

func (n *TelegramNotifier) Name() string { return "telegram" }

func (n *TelegramNotifier) Notify(ctx context.Context, r Reminder) error {
	if _, err := n.bot.Send(telebot.ChatID(n.chatID), r.Text); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}
