package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender is the part of the bot API the publisher needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Publisher struct {
	sender    Sender
	channelID string
	limit     int
}

func NewPublisher(sender Sender, channelID string) *Publisher {
	return &Publisher{sender: sender, channelID: channelID, limit: MaxMessageLength}
}

// NewBotPublisher authenticates the bot token against Telegram.
func NewBotPublisher(token, channelID string) (*Publisher, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	slog.Info("Telegram bot authorized", "username", bot.Self.UserName)

	return NewPublisher(bot, channelID), nil
}

// Publish formats text as MarkdownV2 and sends it in as many messages as the
// length limit requires. Blank chunks are skipped. A paragraph too long for
// one message goes out as plain text, since cutting it can break a span.
func (p *Publisher) Publish(ctx context.Context, text string) error {
	chunks := splitChunks(ToMarkdownV2(text), p.limit)

	for i, c := range chunks {
		if strings.TrimSpace(c.text) == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		msg := p.message(c.text)
		msg.ParseMode = tgbotapi.ModeMarkdownV2
		if c.partial {
			msg = p.message(plainText(c.text))
			msg.ParseMode = ""
		}

		if _, err := p.sender.Send(msg); err != nil {
			return fmt.Errorf("send chunk %d/%d: %w", i+1, len(chunks), err)
		}
	}

	return nil
}

func (p *Publisher) message(text string) tgbotapi.MessageConfig {
	if id, err := strconv.ParseInt(p.channelID, 10, 64); err == nil {
		return tgbotapi.NewMessage(id, text)
	}

	username := p.channelID
	if !strings.HasPrefix(username, "@") {
		username = "@" + username
	}
	return tgbotapi.NewMessageToChannel(username, text)
}
