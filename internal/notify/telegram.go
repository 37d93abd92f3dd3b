// Package notify pushes daily plan summaries to users who linked a
// Telegram chat. It is strictly one-way: no commands, no state.
package notify

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/vttlabs/lifeos/internal/repository"
	"github.com/vttlabs/lifeos/internal/service"
)

// TelegramNotifier sends rendered daily summaries.
type TelegramNotifier struct {
	api       *tgbotapi.BotAPI
	users     *repository.UserRepository
	reminders *service.ReminderService
	logger    *zap.Logger
}

func NewTelegramNotifier(token string, users *repository.UserRepository, reminders *service.ReminderService, logger *zap.Logger) (*TelegramNotifier, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &TelegramNotifier{api: api, users: users, reminders: reminders, logger: logger}, nil
}

// SendDailySummaries pushes a summary to every user with a linked
// chat. Per-user failures are logged and skipped, not fatal.
func (n *TelegramNotifier) SendDailySummaries(ctx context.Context) error {
	users, err := n.users.ListWithTelegram(ctx)
	if err != nil {
		return err
	}
	now := time.Now()
	for _, user := range users {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		text, err := n.reminders.DailySummary(ctx, user, now)
		if err != nil {
			n.logger.Warn("build summary failed",
				zap.String("user", user.ID), zap.Error(err))
			continue
		}
		if err := n.send(user.TelegramChatID, text); err != nil {
			n.logger.Warn("send summary failed",
				zap.String("user", user.ID), zap.Error(err))
		}
	}
	return nil
}

func (n *TelegramNotifier) send(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err := n.api.Send(msg)
	return err
}
