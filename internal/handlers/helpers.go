package handlers

import (
	"context"
	"strconv"
	"strings"
	"unicode/utf8"

	"channelpost-bot/internal/locales"
	telegoapi "channelpost-bot/pkg/telegoapi"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	"github.com/nicksnyder/go-i18n/v2/i18n"
)

// menuItems are the reply-keyboard entries and the commands they run.
var menuItems = []struct{ Label, Command string }{
	{"MenuNewPost", "newpost"},
	{"MenuJobs", "jobs"},
	{"MenuPosts", "posts"},
	{"MenuAdmins", "admins"},
	{"MenuHelp", "help"},
	{"MenuCancel", "cancel"},
}

// getLocalizer picks the user's language, falling back to the default.
func (h *MessageHandler) getLocalizer(user *telego.User) *i18n.Localizer {
	if user != nil && user.LanguageCode != "" {
		return locales.NewLocalizer(user.LanguageCode)
	}
	return locales.NewLocalizer()
}

func msg(loc *i18n.Localizer, id string, data map[string]interface{}) string {
	return locales.GetMessage(loc, id, data)
}

// send delivers text to a private chat. markup may be nil.
func (h *MessageHandler) send(ctx context.Context, bot telegoapi.BotAPI, chatID int64, text string, markup telego.ReplyMarkup) error {
	params := tu.Message(tu.ID(chatID), text)
	if markup != nil {
		params = params.WithReplyMarkup(markup)
	}
	if _, err := bot.SendMessage(ctx, params); err != nil {
		h.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send message")
		return err
	}
	return nil
}

// sendError shows a generic error to the operator and returns the original
// error so the update loop reports it.
func (h *MessageHandler) sendError(ctx context.Context, bot telegoapi.BotAPI, chatID int64, loc *i18n.Localizer, originalErr error) error {
	h.logger.Error().Err(originalErr).Int64("chat_id", chatID).Msg("Handler error")
	_ = h.send(ctx, bot, chatID, msg(loc, "MsgErrorGeneral", nil), nil)
	return originalErr
}

// sendFailure shows a remote failure verbatim; the operator decides whether to retry.
func (h *MessageHandler) sendFailure(ctx context.Context, bot telegoapi.BotAPI, chatID int64, loc *i18n.Localizer, err error, markup telego.ReplyMarkup) {
	h.logger.Warn().Err(err).Int64("chat_id", chatID).Msg("Operation failed")
	_ = h.send(ctx, bot, chatID, msg(loc, "MsgActionFailed", map[string]interface{}{"Error": err.Error()}), markup)
}

func (h *MessageHandler) menuKeyboard(loc *i18n.Localizer, isOwner bool) *telego.ReplyKeyboardMarkup {
	label := func(id string) telego.KeyboardButton { return tu.KeyboardButton(msg(loc, id, nil)) }
	rows := [][]telego.KeyboardButton{
		tu.KeyboardRow(label("MenuNewPost")),
		tu.KeyboardRow(label("MenuJobs"), label("MenuPosts")),
	}
	if isOwner {
		rows = append(rows, tu.KeyboardRow(label("MenuAdmins")))
	}
	rows = append(rows, tu.KeyboardRow(label("MenuHelp"), label("MenuCancel")))
	return tu.Keyboard(rows...).WithResizeKeyboard()
}

// menuCommand maps a pressed menu label to its command.
func menuCommand(loc *i18n.Localizer, text string) (string, bool) {
	text = strings.TrimSpace(text)
	for _, item := range menuItems {
		if text == msg(loc, item.Label, nil) {
			return item.Command, true
		}
	}
	return "", false
}

// parseCommand splits "/cmd@bot args" into its name and arguments.
func parseCommand(text string) (string, string) {
	if !strings.HasPrefix(text, "/") {
		return "", ""
	}
	name, args, _ := strings.Cut(text[1:], " ")
	name, _, _ = strings.Cut(name, "@")
	return strings.ToLower(name), strings.TrimSpace(args)
}

// previewLine shortens text to a single line of at most previewRunes runes.
func previewLine(text string) string {
	line := strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(line) <= previewRunes {
		return line
	}
	return string([]rune(line)[:previewRunes-1]) + "…"
}

func chatRef(chatID int64) string {
	return strconv.FormatInt(chatID, 10)
}

// callbackChatID returns the chat the pressed keyboard lives in.
func callbackChatID(query telego.CallbackQuery) int64 {
	if m, ok := query.Message.(*telego.Message); ok && m != nil {
		return m.Chat.ID
	}
	return query.From.ID
}
