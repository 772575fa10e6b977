package bot

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"price-tracker/internal/monitor"
)

// Notifier delivers price drops as Telegram messages. The alert's recipient
// is used as the chat id when it parses as one; otherwise the message goes
// to the configured default chat.
type Notifier struct {
	sender        Sender
	defaultChatID int64
	logger        *zap.Logger
}

// NewNotifier creates a Notifier.
func NewNotifier(sender Sender, defaultChatID int64, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{sender: sender, defaultChatID: defaultChatID, logger: logger}
}

// OnPriceDrop sends the drop to the recipient chat.
func (n *Notifier) OnPriceDrop(_ context.Context, drop monitor.PriceDrop) error {
	chatID, err := n.chatFor(drop.Recipient)
	if err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(chatID, formatDrop(drop))
	msg.DisableWebPagePreview = true
	if _, err := n.sender.Send(msg); err != nil {
		return fmt.Errorf("send telegram message to %d: %w", chatID, err)
	}

	n.logger.Info("price drop notification sent",
		zap.String("alert_id", drop.AlertID),
		zap.Int64("chat_id", chatID),
	)
	return nil
}

func (n *Notifier) chatFor(recipient string) (int64, error) {
	if id, err := strconv.ParseInt(recipient, 10, 64); err == nil && id != 0 {
		return id, nil
	}
	if n.defaultChatID == 0 {
		return 0, fmt.Errorf("no telegram chat for recipient %q", recipient)
	}
	return n.defaultChatID, nil
}

func formatDrop(drop monitor.PriceDrop) string {
	return fmt.Sprintf(
		"🎉 Price drop on %s!\n\n"+
			"Current price: %s\n"+
			"Your target: %s\n\n"+
			"Link: %s",
		drop.Platform,
		formatPrice(drop.CurrentPrice),
		formatPrice(drop.TargetPrice),
		drop.URL,
	)
}

func formatPrice(price float64) string {
	return "₹" + humanize.FormatFloat("#,###.##", price)
}
