package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"price-tracker/internal/apperrors"
	"price-tracker/internal/models"
	"price-tracker/internal/tracker"
)

// escapeHTML escapes the characters Telegram's HTML mode treats as markup
func escapeHTML(text string) string {
	text = strings.ReplaceAll(text, "&", "&amp;")
	text = strings.ReplaceAll(text, "<", "&lt;")
	text = strings.ReplaceAll(text, ">", "&gt;")
	return text
}

func formatPrice(value float64, currency string) string {
	if currency == "" {
		currency = "₴"
	}
	return fmt.Sprintf("%.2f %s", value, currency)
}

func priceLine(p models.TrackedProduct) string {
	switch p.Status {
	case models.StatusFree:
		return "💰 <b>Free</b>"
	case models.StatusSale:
		line := fmt.Sprintf("💰 <b>%s</b> (was %s)", formatPrice(p.EffectivePrice(), p.Currency), formatPrice(p.Price, p.Currency))
		if p.SalePercent != nil && *p.SalePercent > 0 {
			line += fmt.Sprintf(" 🎉 <b>-%d%%</b>", *p.SalePercent)
		}
		return line
	default:
		return fmt.Sprintf("💰 <b>%s</b>", formatPrice(p.Price, p.Currency))
	}
}

// errorText is what the user sees for a failed command
func errorText(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return "❌ " + appErr.Message
	}
	return "❌ Something went wrong, please try again later."
}

// userID identifies the sender the same way the Mini App does, by Telegram user id
func userID(message *tgbotapi.Message) string {
	if message.From != nil {
		return strconv.FormatInt(message.From.ID, 10)
	}
	return strconv.FormatInt(message.Chat.ID, 10)
}

// HandleMessage dispatches one chat command
func (b *Bot) HandleMessage(ctx context.Context, message *tgbotapi.Message) {
	parts := strings.Fields(message.Text)
	if len(parts) == 0 {
		return
	}

	command := strings.ToLower(parts[0])
	if idx := strings.Index(command, "@"); idx > 0 {
		command = command[:idx]
	}
	args := parts[1:]

	logrus.WithFields(logrus.Fields{
		"command": command,
		"user_id": userID(message),
	}).Debug("Bot command received")

	switch command {
	case "/start", "/help":
		b.handleHelp(message.Chat.ID)
	case "/add":
		b.handleAdd(ctx, message, args, false)
	case "/forceadd":
		b.handleAdd(ctx, message, args, true)
	case "/list":
		b.handleList(ctx, message, args)
	case "/remove":
		b.handleRemove(ctx, message, args)
	case "/check":
		b.handleCheck(ctx, message, args)
	default:
		b.sendText(message.Chat.ID, "Unknown command. Use /help to see what I can do.")
	}
}

func (b *Bot) handleHelp(chatID int64) {
	helpText := `🤖 <b>Price Tracker</b>

I watch Steam, Comfy and Rozetka product pages and tell you when they go on sale.

<b>/add &lt;URL&gt;</b> - Track a product
<b>/forceadd &lt;URL&gt;</b> - Track a product even if it is already on sale
<b>/list</b> [steam|comfy|rozetka|sale] - Show tracked products
<b>/remove &lt;id&gt;</b> - Stop tracking a product
<b>/check &lt;id&gt;</b> - Check the price right now
<b>/help</b> - Show this message`

	if err := b.sendHTML(chatID, helpText); err != nil {
		logrus.WithError(err).Warn("Failed to send help")
	}
}

func (b *Bot) handleAdd(ctx context.Context, message *tgbotapi.Message, args []string, force bool) {
	command := "/add"
	if force {
		command = "/forceadd"
	}
	if len(args) < 1 {
		b.sendText(message.Chat.ID, fmt.Sprintf("❌ Usage: %s <URL>\n\nExample: %s https://store.steampowered.com/app/570/", command, command))
		return
	}
	url := args[0]

	var res *tracker.AddResult
	var err error
	if force {
		res, err = b.service.ForceAdd(ctx, userID(message), url)
	} else {
		res, err = b.service.Add(ctx, userID(message), url)
	}
	if err != nil {
		b.sendText(message.Chat.ID, errorText(err))
		return
	}

	if res.SaleNotice != nil {
		d := res.SaleNotice.SaleDetails
		text := fmt.Sprintf("🎉 <b>%s</b>\n\n📦 %s\n💰 %s instead of %s (-%d%%)\n\nSend /forceadd %s to track it anyway.",
			escapeHTML(res.SaleNotice.Message),
			escapeHTML(d.ProductName),
			formatPrice(d.SalePrice, ""),
			formatPrice(d.OriginalPrice, ""),
			d.SalePercent,
			url,
		)
		if err := b.sendHTML(message.Chat.ID, text); err != nil {
			logrus.WithError(err).Warn("Failed to send sale notice")
		}
		return
	}

	header := "🔄 <b>Product updated</b>"
	if res.Created {
		header = "✅ <b>Product added</b>"
	}
	if err := b.sendHTML(message.Chat.ID, header+"\n\n"+productCard(*res.Product)); err != nil {
		logrus.WithError(err).Warn("Failed to send add confirmation")
	}
}

func productCard(p models.TrackedProduct) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🆔 <b>%s</b> · %s\n", escapeHTML(p.NativeID), p.Platform.DisplayName()))
	sb.WriteString(fmt.Sprintf("📦 %s\n", escapeHTML(p.ProductName)))
	if p.Category != "" {
		sb.WriteString(fmt.Sprintf("🏷 %s\n", escapeHTML(p.Category)))
	}
	sb.WriteString(priceLine(p) + "\n")
	sb.WriteString(fmt.Sprintf("🔗 %s", p.URL))
	return sb.String()
}

func listOptions(args []string) tracker.ListOptions {
	opts := tracker.ListOptions{}
	for _, arg := range args {
		switch strings.ToLower(arg) {
		case "sale":
			opts.SaleOnly = true
		case string(models.PlatformSteam), string(models.PlatformComfy), string(models.PlatformRozetka):
			opts.Platform = models.Platform(strings.ToLower(arg))
		}
	}
	return opts
}

func (b *Bot) handleList(ctx context.Context, message *tgbotapi.Message, args []string) {
	products, err := b.service.List(ctx, userID(message), listOptions(args))
	if err != nil {
		b.sendText(message.Chat.ID, errorText(err))
		return
	}

	if len(products) == 0 {
		b.sendText(message.Chat.ID, "📋 You are not tracking any products yet. Use /add <URL> to start.")
		return
	}

	var response strings.Builder
	response.WriteString("📋 <b>Tracked products:</b>\n\n")
	for _, p := range products {
		response.WriteString(productCard(p))
		response.WriteString("\n\n")
	}

	if err := b.sendHTML(message.Chat.ID, strings.TrimRight(response.String(), "\n")); err != nil {
		logrus.WithError(err).Warn("Failed to send product list")
	}
}

func (b *Bot) handleRemove(ctx context.Context, message *tgbotapi.Message, args []string) {
	if len(args) < 1 {
		b.sendText(message.Chat.ID, "❌ Usage: /remove <id>\n\nThe id is shown by /list.")
		return
	}

	if err := b.service.Remove(ctx, userID(message), args[0]); err != nil {
		b.sendText(message.Chat.ID, errorText(err))
		return
	}
	b.sendText(message.Chat.ID, "✅ Product removed.")
}

func (b *Bot) handleCheck(ctx context.Context, message *tgbotapi.Message, args []string) {
	if len(args) < 1 {
		b.sendText(message.Chat.ID, "❌ Usage: /check <id>\n\nThe id is shown by /list.")
		return
	}

	sentMessageID := 0
	if sent, err := b.api.Send(tgbotapi.NewMessage(message.Chat.ID, "⏳ Checking price...")); err == nil {
		sentMessageID = sent.MessageID
	}

	product, err := b.service.Refresh(ctx, userID(message), args[0])
	if err != nil {
		b.reply(message.Chat.ID, sentMessageID, errorText(err), "")
		return
	}

	b.reply(message.Chat.ID, sentMessageID, "📊 <b>Current price</b>\n\n"+productCard(*product), tgbotapi.ModeHTML)
}

// reply edits the placeholder message when there is one and falls back to a new message
func (b *Bot) reply(chatID int64, messageID int, text, parseMode string) {
	if messageID != 0 {
		edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
		edit.ParseMode = parseMode
		_, err := b.api.Send(edit)
		if err == nil {
			return
		}
		logrus.WithError(err).Warn("Failed to edit message, sending a new one")
	}

	if parseMode == tgbotapi.ModeHTML {
		if err := b.sendHTML(chatID, text); err != nil {
			logrus.WithError(err).Warn("Failed to send reply")
		}
		return
	}
	b.sendText(chatID, text)
}
