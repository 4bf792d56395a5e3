package channel

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"channelpost-bot/internal/buttons"
	"channelpost-bot/pkg/telegoapi"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	"go.uber.org/ratelimit"
)

var (
	// ErrMessageNotFound is returned when the target message no longer exists.
	// Deletion paths treat it as success.
	ErrMessageNotFound = errors.New("message not found")
	// ErrInvalidChatID is returned for a channel id that is neither numeric nor @username.
	ErrInvalidChatID = errors.New("invalid chat id")
)

// Client is the rate-limited, timeout-bounded gateway to the chat platform.
type Client struct {
	bot     telegoapi.BotAPI
	limiter ratelimit.Limiter
	timeout time.Duration
}

// NewClient creates a Client. All outgoing calls share limiter.
func NewClient(bot telegoapi.BotAPI, limiter ratelimit.Limiter, timeout time.Duration) *Client {
	if limiter == nil {
		limiter = ratelimit.NewUnlimited()
	}
	return &Client{bot: bot, limiter: limiter, timeout: timeout}
}

// ChatID normalizes a configured channel id: "-100123" becomes a numeric id,
// "name" or "@name" becomes a username.
func ChatID(raw string) (telego.ChatID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return telego.ChatID{}, ErrInvalidChatID
	}
	if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return tu.ID(id), nil
	}
	if strings.ContainsAny(raw, " \t\n") {
		return telego.ChatID{}, fmt.Errorf("%w: %q", ErrInvalidChatID, raw)
	}
	if !strings.HasPrefix(raw, "@") {
		raw = "@" + raw
	}
	return tu.Username(raw), nil
}

// Keyboard builds an inline keyboard with one link button per row, or nil when empty.
func Keyboard(btns []buttons.Button) *telego.InlineKeyboardMarkup {
	if len(btns) == 0 {
		return nil
	}
	rows := make([][]telego.InlineKeyboardButton, 0, len(btns))
	for _, b := range btns {
		rows = append(rows, tu.InlineKeyboardRow(tu.InlineKeyboardButton(b.Label).WithURL(b.URL)))
	}
	return tu.InlineKeyboard(rows...)
}

func (c *Client) call(ctx context.Context) (context.Context, context.CancelFunc) {
	c.limiter.Take()
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

// SendText sends a text message with optional link buttons and returns its id.
func (c *Client) SendText(ctx context.Context, channel, text string, btns []buttons.Button) (int, error) {
	chatID, err := ChatID(channel)
	if err != nil {
		return 0, err
	}
	params := tu.Message(chatID, text)
	if kb := Keyboard(btns); kb != nil {
		params = params.WithReplyMarkup(kb)
	}

	ctx, cancel := c.call(ctx)
	defer cancel()
	msg, err := c.bot.SendMessage(ctx, params)
	if err != nil {
		return 0, fmt.Errorf("failed to send text message: %w", err)
	}
	return msg.MessageID, nil
}

// SendPhoto sends a photo by file reference with a caption and optional buttons.
func (c *Client) SendPhoto(ctx context.Context, channel, photoRef, caption string, btns []buttons.Button) (int, error) {
	chatID, err := ChatID(channel)
	if err != nil {
		return 0, err
	}
	params := tu.Photo(chatID, tu.FileFromID(photoRef)).WithCaption(caption)
	if kb := Keyboard(btns); kb != nil {
		params = params.WithReplyMarkup(kb)
	}

	ctx, cancel := c.call(ctx)
	defer cancel()
	msg, err := c.bot.SendPhoto(ctx, params)
	if err != nil {
		return 0, fmt.Errorf("failed to send photo message: %w", err)
	}
	return msg.MessageID, nil
}

// EditText replaces a text message's text and buttons. An unchanged message is not an error.
func (c *Client) EditText(ctx context.Context, channel string, messageID int, text string, btns []buttons.Button) error {
	chatID, err := ChatID(channel)
	if err != nil {
		return err
	}
	params := &telego.EditMessageTextParams{
		ChatID:      chatID,
		MessageID:   messageID,
		Text:        text,
		ReplyMarkup: Keyboard(btns),
	}

	ctx, cancel := c.call(ctx)
	defer cancel()
	if _, err := c.bot.EditMessageText(ctx, params); err != nil {
		return classify(err, "failed to edit message text")
	}
	return nil
}

// EditCaption replaces a photo message's caption and buttons. An unchanged message is not an error.
func (c *Client) EditCaption(ctx context.Context, channel string, messageID int, caption string, btns []buttons.Button) error {
	chatID, err := ChatID(channel)
	if err != nil {
		return err
	}
	params := &telego.EditMessageCaptionParams{
		ChatID:      chatID,
		MessageID:   messageID,
		Caption:     caption,
		ReplyMarkup: Keyboard(btns),
	}

	ctx, cancel := c.call(ctx)
	defer cancel()
	if _, err := c.bot.EditMessageCaption(ctx, params); err != nil {
		return classify(err, "failed to edit message caption")
	}
	return nil
}

// Delete removes a message. A message that is already gone yields ErrMessageNotFound.
func (c *Client) Delete(ctx context.Context, channel string, messageID int) error {
	chatID, err := ChatID(channel)
	if err != nil {
		return err
	}

	ctx, cancel := c.call(ctx)
	defer cancel()
	if err := c.bot.DeleteMessage(ctx, &telego.DeleteMessageParams{ChatID: chatID, MessageID: messageID}); err != nil {
		return classify(err, "failed to delete message")
	}
	return nil
}

// UserInfo looks up a private chat to snapshot a user's handle and display name.
func (c *Client) UserInfo(ctx context.Context, userID int64) (username, name string, err error) {
	ctx, cancel := c.call(ctx)
	defer cancel()
	chat, err := c.bot.GetChat(ctx, &telego.GetChatParams{ChatID: tu.ID(userID)})
	if err != nil {
		return "", "", fmt.Errorf("failed to get chat %d: %w", userID, err)
	}
	name = strings.TrimSpace(chat.FirstName + " " + chat.LastName)
	return chat.Username, name, nil
}

// classify maps platform errors to typed results. "Not modified" means the
// message already has the requested content and is reported as success.
func classify(err error, action string) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "message is not modified"):
		return nil
	case strings.Contains(msg, "message to delete not found"),
		strings.Contains(msg, "message to edit not found"),
		strings.Contains(msg, "message_id_invalid"):
		return fmt.Errorf("%s: %w", action, ErrMessageNotFound)
	default:
		return fmt.Errorf("%s: %w", action, err)
	}
}
