// Package telegram sends Bot API notifications to the distributor chat.
package telegram

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

const (
	maxRetries = 3
	baseDelay  = time.Second
)

// Notifier delivers a message to a chat. Implementations must be safe for
// concurrent use.
type Notifier interface {
	Notify(ctx context.Context, chatID int64, text string) error
}

type botNotifier struct {
	bot    *tgbotapi.BotAPI
	logger *logrus.Logger
}

// NewBotNotifier authenticates against the Bot API with the given token.
func NewBotNotifier(token string, logger *logrus.Logger) (Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, errors.Wrap(err, "telegram login")
	}
	logger.WithField("bot", bot.Self.UserName).Info("telegram bot authorized")
	return &botNotifier{bot: bot, logger: logger}, nil
}

func (n *botNotifier) Notify(ctx context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
		if _, err := n.bot.Send(msg); err != nil {
			lastErr = err
			n.logger.WithError(err).WithField("chat_id", chatID).Warn("telegram send failed")
			continue
		}
		return nil
	}
	return errors.Wrap(lastErr, "telegram send")
}

type nopNotifier struct{}

// NewNopNotifier is used when no bot token is configured; sends succeed
// silently so order placement never depends on Telegram availability.
func NewNopNotifier() Notifier { return nopNotifier{} }

func (nopNotifier) Notify(context.Context, int64, string) error { return nil }
