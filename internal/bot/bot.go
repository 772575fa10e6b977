package bot

import (
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// ErrNoToken is returned by Init when no bot token is configured.
var ErrNoToken = errors.New("TELEGRAM_BOT_TOKEN not configured")

// Sender is the part of the Telegram client the bot uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Init connects to Telegram with the given token.
func Init(token string, logger *zap.Logger) (*tgbotapi.BotAPI, error) {
	if token == "" {
		return nil, ErrNoToken
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		if err.Error() == "Unauthorized" {
			return nil, errors.New("telegram token is invalid or expired; get a new one from @BotFather")
		}
		return nil, fmt.Errorf("connect to telegram: %w", err)
	}

	api.Debug = false
	logger.Info("telegram bot authorized", zap.String("username", api.Self.UserName))
	return api, nil
}

// authorized reports whether chatID may run restricted commands. A zero
// allowedChatID leaves the bot open.
func authorized(allowedChatID, chatID int64) bool {
	return allowedChatID == 0 || chatID == allowedChatID
}
