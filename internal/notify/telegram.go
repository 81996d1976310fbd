package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram sends messages through the Bot API.
type Telegram struct {
	api *tgbotapi.BotAPI
}

// NewTelegram authorizes the bot with the given token.
func NewTelegram(token string) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("bot init: %w", err)
	}
	return &Telegram{api: api}, nil
}

func (t *Telegram) Send(ctx context.Context, tgID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(tgID, text)
	if _, err := t.api.Send(msg); err != nil {
		return fmt.Errorf("telegram send to %d: %w", tgID, err)
	}
	return nil
}
