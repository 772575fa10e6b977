package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"price-tracker/internal/alerts"
	"price-tracker/internal/database"
	"price-tracker/internal/models"
	"price-tracker/internal/monitor"
	"price-tracker/internal/scraper"
)

// AlertService is what the commands need from the alert service.
type AlertService interface {
	Create(ctx context.Context, rawURL string, targetPrice float64, recipient string) (*models.Alert, error)
	List(ctx context.Context) ([]models.Alert, error)
	Deactivate(ctx context.Context, id string) error
}

// Sweeper runs an on-demand sweep.
type Sweeper interface {
	RunSweepNow(ctx context.Context) (models.Summary, error)
}

const helpText = `🤖 <b>Price tracker</b>

<b>/add &lt;url&gt; &lt;target&gt;</b> - track a product
Example: /add https://www.myntra.com/tshirts/123456 799

<b>/list</b> - list tracked products

<b>/remove &lt;id&gt;</b> - stop tracking a product

<b>/check</b> - check every product now

<b>/help</b> - show this message

Supported stores: Myntra, Flipkart, Ajio, Tata CLiQ.`

// Handler dispatches chat commands.
type Handler struct {
	sender        Sender
	alerts        AlertService
	sweeper       Sweeper
	allowedChatID int64
	logger        *zap.Logger

	checks sync.WaitGroup
}

// NewHandler creates a Handler. When allowedChatID is non-zero only that
// chat may run commands other than /start and /help.
func NewHandler(sender Sender, service AlertService, sweeper Sweeper, allowedChatID int64, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		sender:        sender,
		alerts:        service,
		sweeper:       sweeper,
		allowedChatID: allowedChatID,
		logger:        logger,
	}
}

// Run consumes updates until ctx is done.
func (h *Handler) Run(ctx context.Context, api *tgbotapi.BotAPI) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := api.GetUpdatesChan(u)
	defer api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message != nil {
				h.HandleMessage(ctx, update.Message)
			}
		}
	}
}

// Wait blocks until every /check started so far has sent its summary.
func (h *Handler) Wait() {
	h.checks.Wait()
}

// HandleMessage runs one chat command.
func (h *Handler) HandleMessage(ctx context.Context, message *tgbotapi.Message) {
	parts := strings.Fields(message.Text)
	if len(parts) == 0 {
		return
	}

	command := strings.ToLower(parts[0])
	// strip @botname
	if idx := strings.Index(command, "@"); idx > 0 {
		command = command[:idx]
	}
	chatID := message.Chat.ID

	isPublic := command == "/start" || command == "/help"
	if !isPublic && !authorized(h.allowedChatID, chatID) {
		h.reply(chatID, "You are not authorized to use this bot.")
		return
	}

	switch command {
	case "/start", "/help":
		h.replyHTML(chatID, helpText)
	case "/add":
		h.handleAdd(ctx, chatID, parts[1:])
	case "/list":
		h.handleList(ctx, chatID)
	case "/remove":
		h.handleRemove(ctx, chatID, parts[1:])
	case "/check":
		h.handleCheck(ctx, chatID)
	default:
		h.reply(chatID, "Unknown command. Use /help to see what I can do.")
	}
}

func (h *Handler) handleAdd(ctx context.Context, chatID int64, args []string) {
	if len(args) < 2 {
		h.reply(chatID, "❌ Usage: /add <url> <target price>\n\nExample: /add https://www.flipkart.com/item/p/itm123 1999")
		return
	}

	target, err := strconv.ParseFloat(strings.ReplaceAll(args[1], ",", ""), 64)
	if err != nil {
		h.reply(chatID, "❌ Target price must be a number.")
		return
	}

	alert, err := h.alerts.Create(ctx, args[0], target, strconv.FormatInt(chatID, 10))
	switch {
	case errors.Is(err, alerts.ErrInvalidURL):
		h.reply(chatID, "❌ That does not look like a product link.")
		return
	case errors.Is(err, scraper.ErrUnsupportedPlatform):
		h.reply(chatID, "❌ Store not supported. Supported stores: Myntra, Flipkart, Ajio, Tata CLiQ.")
		return
	case errors.Is(err, alerts.ErrInvalidTargetPrice):
		h.reply(chatID, "❌ Target price must be a positive number.")
		return
	case err != nil:
		h.logger.Error("could not create alert", zap.Error(err))
		h.reply(chatID, "❌ Could not save the alert, try again later.")
		return
	}

	h.reply(chatID, fmt.Sprintf(
		"✅ Tracking %s product\n\nID: %s\nTarget: %s\nLink: %s",
		alert.Platform, alert.ID, formatPrice(alert.TargetPrice), alert.URL,
	))
}

func (h *Handler) handleList(ctx context.Context, chatID int64) {
	list, err := h.alerts.List(ctx)
	if err != nil {
		h.logger.Error("could not list alerts", zap.Error(err))
		h.reply(chatID, "❌ Could not list alerts.")
		return
	}
	if len(list) == 0 {
		h.reply(chatID, "📋 Nothing is being tracked yet.")
		return
	}

	var b strings.Builder
	b.WriteString("📋 <b>Tracked products</b>\n\n")
	for _, a := range list {
		fmt.Fprintf(&b, "🆔 <code>%s</code> (%s)\n", a.ID, a.Platform)
		if a.LastPrice != nil {
			fmt.Fprintf(&b, "💰 Last price: %s\n", formatPrice(*a.LastPrice))
		} else {
			b.WriteString("💰 Last price: not checked yet\n")
		}
		fmt.Fprintf(&b, "🎯 Target: %s", formatPrice(a.TargetPrice))
		if a.LastPrice != nil && *a.LastPrice <= a.TargetPrice {
			b.WriteString(" ✅")
		}
		b.WriteString("\n")
		if a.LastChecked != nil {
			fmt.Fprintf(&b, "🕐 Checked: %s\n", a.LastChecked.Format("02/01/2006 15:04"))
		}
		fmt.Fprintf(&b, "🔗 %s\n\n", escapeHTML(a.URL))
	}
	h.replyHTML(chatID, b.String())
}

func (h *Handler) handleRemove(ctx context.Context, chatID int64, args []string) {
	if len(args) < 1 {
		h.reply(chatID, "❌ Usage: /remove <id>")
		return
	}

	err := h.alerts.Deactivate(ctx, args[0])
	switch {
	case errors.Is(err, database.ErrNotFound):
		h.reply(chatID, "❌ No alert with that id.")
	case err != nil:
		h.logger.Error("could not deactivate alert", zap.String("alert_id", args[0]), zap.Error(err))
		h.reply(chatID, "❌ Could not remove the alert.")
	default:
		h.reply(chatID, "✅ Alert removed.")
	}
}

// handleCheck runs the sweep in the background so other commands keep being
// served while it works through the alerts.
func (h *Handler) handleCheck(ctx context.Context, chatID int64) {
	h.reply(chatID, "⏳ Checking prices...")

	h.checks.Add(1)
	go func() {
		defer h.checks.Done()

		summary, err := h.sweeper.RunSweepNow(ctx)
		switch {
		case errors.Is(err, monitor.ErrSweepInProgress):
			h.reply(chatID, "⏳ A check is already running, try again in a few minutes.")
			return
		case err != nil:
			h.logger.Error("manual sweep failed", zap.Error(err))
			h.reply(chatID, "❌ Check failed.")
			return
		}

		h.reply(chatID, fmt.Sprintf(
			"📊 Checked %d products: %d at or below target, %d failed, %d skipped.",
			summary.Checked, summary.Drops, summary.Failed, summary.Skipped,
		))
	}()
}

func (h *Handler) reply(chatID int64, text string) {
	if _, err := h.sender.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		h.logger.Warn("could not send telegram reply", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// replyHTML falls back to plain text when Telegram rejects the markup.
func (h *Handler) replyHTML(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := h.sender.Send(msg); err != nil {
		h.logger.Warn("html reply rejected, retrying as plain text", zap.Error(err))
		msg.ParseMode = ""
		if _, err := h.sender.Send(msg); err != nil {
			h.logger.Warn("could not send telegram reply", zap.Int64("chat_id", chatID), zap.Error(err))
		}
	}
}

func escapeHTML(text string) string {
	text = strings.ReplaceAll(text, "&", "&amp;")
	text = strings.ReplaceAll(text, "<", "&lt;")
	text = strings.ReplaceAll(text, ">", "&gt;")
	return text
}
