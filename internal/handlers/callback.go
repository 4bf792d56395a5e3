package handlers

import (
	"context"
	"strings"

	"channelpost-bot/internal/drafts"
	telegoapi "channelpost-bot/pkg/telegoapi"

	"github.com/mymmrac/telego"
)

// HandleCallbackQuery acknowledges the press and routes it to the draft
// session or to a job/post action.
func (h *MessageHandler) HandleCallbackQuery(ctx context.Context, bot telegoapi.BotAPI, query telego.CallbackQuery) error {
	if err := bot.AnswerCallbackQuery(ctx, &telego.AnswerCallbackQueryParams{CallbackQueryID: query.ID}); err != nil {
		h.logger.Warn().Err(err).Str("query_id", query.ID).Msg("Failed to answer callback query")
	}

	user := query.From
	loc := h.getLocalizer(&user)
	chatID := callbackChatID(query)

	isAdmin, err := h.admins.IsAdmin(ctx, user.ID)
	if err != nil {
		return h.sendError(ctx, bot, chatID, loc, err)
	}
	if !isAdmin {
		return h.send(ctx, bot, chatID, msg(loc, "MsgNotAdmin", map[string]interface{}{"UserID": user.ID}), nil)
	}

	if in, ok := draftInput(query.Data); ok {
		sess, ok := h.sessions.Get(user.ID)
		if !ok {
			id := "MsgSessionExpired"
			if in.Kind == drafts.InputAction && in.Action == drafts.ActionCancel {
				id = "MsgNothingToCancel"
			}
			return h.send(ctx, bot, chatID, msg(loc, id, nil), h.menuKeyboard(loc, h.admins.IsOwner(user.ID)))
		}
		return h.step(ctx, bot, chatID, &user, sess, in)
	}

	if kind, action, id, ok := parseEntityData(query.Data); ok {
		if kind == kindJob {
			return h.handleJobAction(ctx, bot, chatID, &user, action, id)
		}
		return h.handlePostAction(ctx, bot, chatID, &user, action, id)
	}

	h.logger.Warn().Str("data", query.Data).Int64("user_id", user.ID).Msg("Callback query not handled")
	return nil
}

// draftInput decodes callbacks that drive a draft session.
func draftInput(data string) (drafts.Input, bool) {
	switch data {
	case cbDraftPublishNow:
		return drafts.ActionInput(drafts.ActionPublishNow), true
	case cbDraftSchedule:
		return drafts.ActionInput(drafts.ActionSchedule), true
	case cbDraftCancel:
		return drafts.ActionInput(drafts.ActionCancel), true
	case cbLongSplit:
		return drafts.ActionInput(drafts.ActionSplit), true
	case cbLongNoPhoto:
		return drafts.ActionInput(drafts.ActionDropPhoto), true
	case cbEditApply:
		return drafts.ActionInput(drafts.ActionApply), true
	}
	if code, ok := strings.CutPrefix(data, cbTimePrefix); ok && code != "" {
		return drafts.PickInput(code), true
	}
	return drafts.Input{}, false
}
