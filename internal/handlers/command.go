package handlers

import (
	"context"
	"fmt"
	"strings"

	"channelpost-bot/internal/drafts"
	"channelpost-bot/internal/locales"
	"channelpost-bot/internal/schedule"
	telegoapi "channelpost-bot/pkg/telegoapi"

	"github.com/mymmrac/telego"
)

// HandleStart registers the command list and greets the user.
func (h *MessageHandler) HandleStart(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	loc := h.getLocalizer(message.From)
	if err := h.setupCommands(ctx, bot); err != nil {
		return h.sendError(ctx, bot, message.Chat.ID, loc, fmt.Errorf("failed to set up commands: %w", err))
	}

	isAdmin, err := h.admins.IsAdmin(ctx, message.From.ID)
	if err != nil {
		return h.sendError(ctx, bot, message.Chat.ID, loc, err)
	}
	if !isAdmin {
		return h.send(ctx, bot, message.Chat.ID, msg(loc, "MsgNotAdmin", map[string]interface{}{"UserID": message.From.ID}), nil)
	}
	return h.send(ctx, bot, message.Chat.ID, msg(loc, "MsgStart", nil), h.menuKeyboard(loc, h.admins.IsOwner(message.From.ID)))
}

// HandleMenu shows the reply-keyboard menu.
func (h *MessageHandler) HandleMenu(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	loc := h.getLocalizer(message.From)
	return h.send(ctx, bot, message.Chat.ID, msg(loc, "MsgMenu", nil), h.menuKeyboard(loc, h.admins.IsOwner(message.From.ID)))
}

// HandleHelp lists the commands available to the caller.
func (h *MessageHandler) HandleHelp(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	loc := h.getLocalizer(message.From)
	isOwner := h.admins.IsOwner(message.From.ID)

	var b strings.Builder
	b.WriteString(msg(loc, "MsgHelpHeader", nil))
	b.WriteString("\n")
	for _, cmd := range h.commands {
		if cmd.OwnerOnly && !isOwner {
			continue
		}
		fmt.Fprintf(&b, "/%s - %s\n", cmd.Command, msg(loc, cmd.Description, nil))
	}
	b.WriteString("\n")
	b.WriteString(msg(loc, "MsgHelpFooter", map[string]interface{}{"Limit": h.captionLimit}))
	return h.send(ctx, bot, message.Chat.ID, b.String(), nil)
}

// HandleMyID prints diagnostics about the caller and the bot's setup.
func (h *MessageHandler) HandleMyID(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	loc := h.getLocalizer(message.From)
	userID := message.From.ID

	isAdmin, err := h.admins.IsAdmin(ctx, userID)
	if err != nil {
		h.logger.Warn().Err(err).Int64("user_id", userID).Msg("Admin check failed during /myid")
	}

	db := msg(loc, "DBStatusUnknown", nil)
	if h.dbPing != nil {
		if err := h.dbPing(ctx); err != nil {
			db = msg(loc, "DBStatusError", map[string]interface{}{"Error": err.Error()})
		} else {
			db = msg(loc, "DBStatusOK", nil)
		}
	}

	return h.send(ctx, bot, message.Chat.ID, msg(loc, "MsgMyID", map[string]interface{}{
		"UserID":   userID,
		"IsAdmin":  isAdmin,
		"IsOwner":  h.admins.IsOwner(userID),
		"Timezone": h.location.String(),
		"Now":      schedule.Format(h.now(), h.location),
		"Channel":  h.channelID,
		"Version":  h.version,
		"DB":       db,
	}), nil)
}

// HandleCancel abandons the caller's session, if any.
func (h *MessageHandler) HandleCancel(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	loc := h.getLocalizer(message.From)
	keyboard := h.menuKeyboard(loc, h.admins.IsOwner(message.From.ID))
	if _, ok := h.sessions.Get(message.From.ID); !ok {
		return h.send(ctx, bot, message.Chat.ID, msg(loc, "MsgNothingToCancel", nil), keyboard)
	}
	h.sessions.Delete(message.From.ID)
	return h.send(ctx, bot, message.Chat.ID, msg(loc, "PromptCancelled", nil), keyboard)
}

// HandleNewPost starts composing a post, replacing any session in progress.
func (h *MessageHandler) HandleNewPost(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	sess := drafts.NewCreate()
	h.sessions.Put(message.From.ID, sess)
	h.logger.Debug().Int64("user_id", message.From.ID).Msg("Draft started")
	return h.prompt(ctx, bot, message.Chat.ID, h.getLocalizer(message.From), sess, drafts.PromptText)
}

// setupCommands registers the bot's commands with localized descriptions.
func (h *MessageHandler) setupCommands(ctx context.Context, bot telegoapi.BotAPI) error {
	loc := locales.NewLocalizer()
	commands := make([]telego.BotCommand, 0, len(h.commands))
	for _, cmd := range h.commands {
		commands = append(commands, telego.BotCommand{
			Command:     cmd.Command,
			Description: msg(loc, cmd.Description, nil),
		})
	}
	if err := bot.SetMyCommands(ctx, &telego.SetMyCommandsParams{Commands: commands}); err != nil {
		return fmt.Errorf("failed to set bot commands: %w", err)
	}
	h.logger.Debug().Int("count", len(commands)).Msg("Bot commands set")
	return nil
}
