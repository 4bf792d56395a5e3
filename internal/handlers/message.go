package handlers

import (
	"context"

	"channelpost-bot/internal/channel"
	"channelpost-bot/internal/drafts"
	telegoapi "channelpost-bot/pkg/telegoapi"

	"github.com/mymmrac/telego"
)

// HandleMessage routes a private message: commands and menu presses first,
// then input for the sender's active session.
func (h *MessageHandler) HandleMessage(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	if message.From == nil || message.Chat.Type != telego.ChatTypePrivate {
		return nil
	}
	loc := h.getLocalizer(message.From)
	userID := message.From.ID

	if !h.albums.First(userID, message.MediaGroupID) {
		h.logger.Debug().Int64("user_id", userID).Str("media_group_id", message.MediaGroupID).Msg("Skipping album message")
		return nil
	}

	command, _ := parseCommand(message.Text)
	if command == "" {
		command, _ = menuCommand(loc, message.Text)
	}

	if !publicCommands[command] {
		isAdmin, err := h.admins.IsAdmin(ctx, userID)
		if err != nil {
			return h.sendError(ctx, bot, message.Chat.ID, loc, err)
		}
		if !isAdmin {
			h.logger.Info().Int64("user_id", userID).Msg("Rejected message from non-admin")
			return h.send(ctx, bot, message.Chat.ID, msg(loc, "MsgNotAdmin", map[string]interface{}{"UserID": userID}), nil)
		}
	}

	if command != "" {
		return h.runCommand(ctx, bot, message, command)
	}

	sess, ok := h.sessions.Get(userID)
	if !ok {
		return h.send(ctx, bot, message.Chat.ID, msg(loc, "MsgUseMenu", nil), h.menuKeyboard(loc, h.admins.IsOwner(userID)))
	}
	return h.step(ctx, bot, message.Chat.ID, message.From, sess, inputFromMessage(message))
}

func (h *MessageHandler) runCommand(ctx context.Context, bot telegoapi.BotAPI, message telego.Message, command string) error {
	loc := h.getLocalizer(message.From)
	for _, cmd := range h.commands {
		if cmd.Command != command {
			continue
		}
		if cmd.OwnerOnly && !h.admins.IsOwner(message.From.ID) {
			return h.send(ctx, bot, message.Chat.ID, msg(loc, "MsgOwnerOnly", nil), nil)
		}
		h.logger.Debug().Str("command", command).Int64("user_id", message.From.ID).Msg("Executing command")
		return cmd.Handler(ctx, bot, message)
	}
	return h.send(ctx, bot, message.Chat.ID, msg(loc, "MsgErrorUnknownCommand", nil), nil)
}

// inputFromMessage classifies a message for the composer.
func inputFromMessage(m telego.Message) drafts.Input {
	if ref, ok := channel.PhotoRef(&m); ok {
		return drafts.PhotoInput(ref)
	}
	if m.Text != "" {
		return drafts.TextInput(m.Text)
	}
	return drafts.Input{Kind: drafts.InputUnsupported}
}
