// Package telegram sends a Telegram ping to users who receive a message
// while they have no live connection.
package telegram

import (
	"context"
	"time"
	"unicode/utf8"

	"marketzone/backend/internal/localization"
	"marketzone/backend/internal/logger"
	"marketzone/backend/internal/models"
	"marketzone/backend/internal/ratelimit"
	"marketzone/backend/internal/storage"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const previewLength = 120

// Sender is the part of *tgbotapi.BotAPI the notifier needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// NewBotAPI authorizes the bot token.
func NewBotAPI(token string) (*tgbotapi.BotAPI, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	bot.Debug = false
	logger.Info().Str("bot", bot.Self.UserName).Msg("telegram bot authorized")
	return bot, nil
}

// Notifier implements chathub.OfflineNotifier.
type Notifier struct {
	Bot       Sender
	Users     storage.UserDirectory
	Products  storage.ProductDirectory
	Localizer *localization.Localizer

	cooldown *ratelimit.KeyedLimiter
}

// NewNotifier sends at most one ping per sender/receiver pair per cooldown.
func NewNotifier(bot Sender, users storage.UserDirectory, products storage.ProductDirectory, l *localization.Localizer, cooldown time.Duration) *Notifier {
	return &Notifier{
		Bot:       bot,
		Users:     users,
		Products:  products,
		Localizer: l,
		cooldown:  ratelimit.Every(cooldown),
	}
}

// Cooldown exposes the limiter so the server can prune it.
func (n *Notifier) Cooldown() *ratelimit.KeyedLimiter { return n.cooldown }

func (n *Notifier) NotifyOffline(ctx context.Context, msg models.Message) {
	receiver, err := n.Users.GetUser(ctx, msg.ReceiverID)
	if err != nil {
		logger.Warn().Err(err).Str("user_id", msg.ReceiverID).Msg("notifier: receiver lookup failed")
		return
	}
	if receiver.TelegramChatID == nil {
		return
	}
	if !n.cooldown.Allow(msg.SenderID + ":" + msg.ReceiverID) {
		return
	}

	chatID := *receiver.TelegramChatID
	text := n.compose(ctx, receiver.Language, msg)

	var out tgbotapi.Chattable
	if msg.MessageType == models.MessageTypeImage {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(msg.Content))
		photo.Caption = text
		out = photo
	} else {
		out = tgbotapi.NewMessage(chatID, text)
	}

	if _, err := n.Bot.Send(out); err != nil {
		logger.Error().Err(err).Int64("chat_id", chatID).Msg("notifier: telegram send failed")
		return
	}
	logger.Debug().Uint("message_id", msg.ID).Msg("offline notification sent")
}

func (n *Notifier) compose(ctx context.Context, lang string, msg models.Message) string {
	senderName := n.Localizer.GetString(lang, "unknown_sender")
	if sender, err := n.Users.GetUser(ctx, msg.SenderID); err == nil && sender.DisplayName() != "" {
		senderName = sender.DisplayName()
	}

	body := preview(msg.Content)
	switch msg.MessageType {
	case models.MessageTypeImage:
		body = n.Localizer.GetString(lang, "attachment_image")
	case models.MessageTypeFile:
		body = n.Localizer.GetString(lang, "attachment_file")
	}

	if msg.ProductID != nil && n.Products != nil {
		if p, err := n.Products.GetProduct(ctx, *msg.ProductID); err == nil && p != nil {
			return n.Localizer.Format(lang, "new_message_listing", senderName, p.Title, body)
		}
	}
	return n.Localizer.Format(lang, "new_message", senderName, body)
}

func preview(s string) string {
	if utf8.RuneCountInString(s) <= previewLength {
		return s
	}
	r := []rune(s)
	return string(r[:previewLength]) + "…"
}
