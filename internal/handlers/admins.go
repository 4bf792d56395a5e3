package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"channelpost-bot/internal/auth"
	"channelpost-bot/internal/database"
	telegoapi "channelpost-bot/pkg/telegoapi"

	"github.com/mymmrac/telego"
)

// HandleAdmins lists the admin set.
func (h *MessageHandler) HandleAdmins(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	loc := h.getLocalizer(message.From)
	admins, err := h.admins.List(ctx)
	if err != nil {
		return h.sendError(ctx, bot, message.Chat.ID, loc, fmt.Errorf("list admins: %w", err))
	}

	var b strings.Builder
	b.WriteString(msg(loc, "MsgAdminsHeader", map[string]interface{}{"Count": len(admins)}))
	b.WriteString("\n")
	for _, a := range admins {
		b.WriteString("• " + a.Display() + "\n")
	}
	b.WriteString("\n")
	b.WriteString(msg(loc, "MsgAdminsFooter", nil))
	return h.send(ctx, bot, message.Chat.ID, b.String(), nil)
}

// HandleAddAdmin grants admin rights: /addadmin <user id>.
func (h *MessageHandler) HandleAddAdmin(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	loc := h.getLocalizer(message.From)
	userID, ok := commandUserID(message.Text)
	if !ok {
		return h.send(ctx, bot, message.Chat.ID, msg(loc, "MsgAdminUsage", map[string]interface{}{"Command": "addadmin"}), nil)
	}

	admin, err := h.admins.Add(ctx, message.From.ID, userID)
	switch {
	case errors.Is(err, auth.ErrOwnerOnly):
		return h.send(ctx, bot, message.Chat.ID, msg(loc, "MsgOwnerOnly", nil), nil)
	case err != nil:
		h.sendFailure(ctx, bot, message.Chat.ID, loc, err, nil)
		return nil
	}
	return h.send(ctx, bot, message.Chat.ID, msg(loc, "MsgAdminAdded", map[string]interface{}{"Admin": admin.Display()}), nil)
}

// HandleDelAdmin revokes admin rights: /deladmin <user id>.
func (h *MessageHandler) HandleDelAdmin(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	loc := h.getLocalizer(message.From)
	userID, ok := commandUserID(message.Text)
	if !ok {
		return h.send(ctx, bot, message.Chat.ID, msg(loc, "MsgAdminUsage", map[string]interface{}{"Command": "deladmin"}), nil)
	}

	err := h.admins.Remove(ctx, message.From.ID, userID)
	switch {
	case errors.Is(err, auth.ErrOwnerOnly):
		return h.send(ctx, bot, message.Chat.ID, msg(loc, "MsgOwnerOnly", nil), nil)
	case errors.Is(err, auth.ErrOwnerImmutable):
		return h.send(ctx, bot, message.Chat.ID, msg(loc, "MsgOwnerImmutable", nil), nil)
	case errors.Is(err, database.ErrNotFound):
		return h.send(ctx, bot, message.Chat.ID, msg(loc, "MsgNotFound", nil), nil)
	case err != nil:
		h.sendFailure(ctx, bot, message.Chat.ID, loc, err, nil)
		return nil
	}
	return h.send(ctx, bot, message.Chat.ID, msg(loc, "MsgAdminRemoved", map[string]interface{}{"UserID": userID}), nil)
}

func commandUserID(text string) (int64, bool) {
	_, args := parseCommand(text)
	id, err := strconv.ParseInt(args, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}
