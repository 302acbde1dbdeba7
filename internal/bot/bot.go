package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"price-tracker/internal/models"
	"price-tracker/internal/tracker"
)

// Sender is the part of tgbotapi.BotAPI the handlers need
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Tracker is the tracking service behind the commands
type Tracker interface {
	Add(ctx context.Context, userID, url string) (*tracker.AddResult, error)
	ForceAdd(ctx context.Context, userID, url string) (*tracker.AddResult, error)
	Remove(ctx context.Context, userID, identifier string) error
	List(ctx context.Context, userID string, opts tracker.ListOptions) ([]models.TrackedProduct, error)
	Refresh(ctx context.Context, userID, identifier string) (*models.TrackedProduct, error)
}

// Init connects to Telegram with token
func Init(token string) (*tgbotapi.BotAPI, error) {
	if token == "" {
		return nil, errors.New("BOT_TOKEN is not set")
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		if err.Error() == "Unauthorized" {
			return nil, errors.New("telegram token is invalid or revoked, ask @BotFather for a new one")
		}
		return nil, fmt.Errorf("failed to connect to Telegram: %w", err)
	}

	api.Debug = false
	logrus.WithField("username", api.Self.UserName).Info("Bot authorized")
	return api, nil
}

// Bot answers chat commands and delivers sale notifications
type Bot struct {
	api     Sender
	service Tracker
}

func New(api Sender, service Tracker) *Bot {
	return &Bot{api: api, service: service}
}

// Run long-polls api for updates until ctx is cancelled
func (b *Bot) Run(ctx context.Context, api *tgbotapi.BotAPI) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil || update.Message.Text == "" {
				continue
			}
			b.HandleMessage(ctx, update.Message)
		}
	}
}

// NotifySale sends the owner of a tracked product a sale alert. Telegram user ids double as
// private chat ids.
func (b *Bot) NotifySale(userID string, previous models.TrackedProduct, current *models.TrackedProduct) error {
	chatID, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return fmt.Errorf("user id %q is not a Telegram chat id: %w", userID, err)
	}

	text := fmt.Sprintf("🎉 <b>Sale detected!</b>\n\n📦 %s\n%s\n💸 Was: %s\n🔗 %s",
		escapeHTML(current.ProductName),
		priceLine(*current),
		formatPrice(previous.EffectivePrice(), previous.Currency),
		current.URL,
	)
	return b.sendHTML(chatID, text)
}

// sendHTML sends text as HTML and retries as plain text if Telegram rejects the markup
func (b *Bot) sendHTML(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := b.api.Send(msg); err != nil {
		logrus.WithError(err).Warn("Failed to send HTML message, retrying as plain text")
		msg.ParseMode = ""
		_, err = b.api.Send(msg)
		return err
	}
	return nil
}

func (b *Bot) sendText(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		logrus.WithError(err).WithField("chat_id", chatID).Warn("Failed to send message")
	}
}
