package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender posts messages through the Telegram Bot API.
type Sender interface {
	// SendToChannel posts the text to the configured relay channel.
	SendToChannel(ctx context.Context, text string) error
	// Send posts the text to an arbitrary chat, used for webhook
	// confirmations back to the operator.
	Send(ctx context.Context, chatID int64, text string) error
}

// Client wraps the Bot API with the relay's channel destination.
type Client struct {
	log     *slog.Logger
	api     *tgbotapi.BotAPI
	channel string // numeric chat id or @username
}

// NewClient authorizes the bot and returns a Client posting to the
// given channel.
func NewClient(log *slog.Logger, token, channel string, timeout time.Duration) (*Client, error) {
	api, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, &http.Client{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Telegram bot: %w", err)
	}
	log.Info("Authorized on account", "account", api.Self.UserName)

	return &Client{log: log, api: api, channel: channel}, nil
}

// SendToChannel posts the text to the configured relay channel.
func (c *Client) SendToChannel(ctx context.Context, text string) error {
	const opn = "telegram.SendToChannel"

	var msg tgbotapi.MessageConfig
	if chatID, err := strconv.ParseInt(c.channel, 10, 64); err == nil {
		msg = tgbotapi.NewMessage(chatID, text)
	} else {
		msg = tgbotapi.NewMessageToChannel(c.channel, text)
	}

	if err := c.send(ctx, msg); err != nil {
		return fmt.Errorf("%s: %w", opn, err)
	}

	return nil
}

// Send posts the text to the given chat.
func (c *Client) Send(ctx context.Context, chatID int64, text string) error {
	const opn = "telegram.Send"

	if err := c.send(ctx, tgbotapi.NewMessage(chatID, text)); err != nil {
		return fmt.Errorf("%s: %w", opn, err)
	}

	return nil
}

// send applies the relay's message options and delivers. The Bot API
// client has no context plumbing, so cancellation is only honored
// between calls; the HTTP client timeout bounds each call.
func (c *Client) send(ctx context.Context, msg tgbotapi.MessageConfig) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context done before send: %w", err)
	}

	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = false

	if _, err := c.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}
