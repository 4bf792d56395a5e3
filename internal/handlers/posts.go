package handlers

import (
	"context"
	"errors"
	"fmt"

	"channelpost-bot/internal/database"
	"channelpost-bot/internal/drafts"
	"channelpost-bot/internal/schedule"
	telegoapi "channelpost-bot/pkg/telegoapi"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	"github.com/nicksnyder/go-i18n/v2/i18n"
)

// HandlePosts lists the most recent published posts.
func (h *MessageHandler) HandlePosts(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	loc := h.getLocalizer(message.From)
	chatID := message.Chat.ID

	posts, err := h.posts.ListRecentPosts(ctx, postListLimit)
	if err != nil {
		return h.sendError(ctx, bot, chatID, loc, fmt.Errorf("list posts: %w", err))
	}
	if len(posts) == 0 {
		return h.send(ctx, bot, chatID, msg(loc, "MsgPostsEmpty", nil), nil)
	}

	rows := make([][]telego.InlineKeyboardButton, 0, len(posts))
	for _, post := range posts {
		label := msg(loc, "BtnPostItem", map[string]interface{}{
			"Time":     schedule.Format(post.CreatedAt, h.location),
			"HasPhoto": post.PhotoRef != "",
			"Preview":  previewLine(post.Text),
		})
		rows = append(rows, tu.InlineKeyboardRow(
			tu.InlineKeyboardButton(label).WithCallbackData(entityData(kindPost, actEdit, post.ID)),
			tu.InlineKeyboardButton(msg(loc, "BtnDeleteShort", nil)).WithCallbackData(entityData(kindPost, actDel, post.ID)),
		))
	}
	return h.send(ctx, bot, chatID, msg(loc, "MsgPostsHeader", map[string]interface{}{"Count": len(posts)}), tu.InlineKeyboard(rows...))
}

func (h *MessageHandler) handlePostAction(ctx context.Context, bot telegoapi.BotAPI, chatID int64, user *telego.User, action, id string) error {
	loc := h.getLocalizer(user)

	switch action {
	case actEdit:
		post, err := h.posts.GetPost(ctx, id)
		if errors.Is(err, database.ErrNotFound) {
			return h.send(ctx, bot, chatID, msg(loc, "MsgNotFound", nil), nil)
		}
		if err != nil {
			return h.sendError(ctx, bot, chatID, loc, fmt.Errorf("get post %s: %w", id, err))
		}
		sess := drafts.NewEditPost(post.ID, drafts.Draft{
			Text:      post.Text,
			Buttons:   post.Buttons,
			PhotoRef:  post.PhotoRef,
			SplitMode: post.Split(),
		})
		h.sessions.Put(user.ID, sess)
		return h.prompt(ctx, bot, chatID, loc, sess, drafts.PromptText)
	case actDel:
		keyboard := tu.InlineKeyboard(tu.InlineKeyboardRow(
			tu.InlineKeyboardButton(msg(loc, "BtnConfirmDelete", nil)).WithCallbackData(entityData(kindPost, actDelYes, id)),
			tu.InlineKeyboardButton(msg(loc, "BtnKeep", nil)).WithCallbackData(entityData(kindPost, actDelNo, id)),
		))
		return h.send(ctx, bot, chatID, msg(loc, "MsgConfirmDeletePost", map[string]interface{}{"PostID": id}), keyboard)
	case actDelYes:
		err := h.mutator.DeletePost(ctx, id)
		if errors.Is(err, database.ErrNotFound) {
			return h.send(ctx, bot, chatID, msg(loc, "MsgNotFound", nil), nil)
		}
		if err != nil {
			h.sendFailure(ctx, bot, chatID, loc, err, nil)
			return nil
		}
		return h.send(ctx, bot, chatID, msg(loc, "MsgPostDeleted", map[string]interface{}{"PostID": id}), nil)
	case actDelNo:
		return h.send(ctx, bot, chatID, msg(loc, "MsgDeleteCancelled", nil), nil)
	default:
		h.logger.Warn().Str("action", action).Msg("Unknown post action")
		return nil
	}
}

// postKeyboard holds the management controls attached after publish or edit.
func (h *MessageHandler) postKeyboard(loc *i18n.Localizer, id string) *telego.InlineKeyboardMarkup {
	return tu.InlineKeyboard(tu.InlineKeyboardRow(
		tu.InlineKeyboardButton(msg(loc, "BtnEdit", nil)).WithCallbackData(entityData(kindPost, actEdit, id)),
		tu.InlineKeyboardButton(msg(loc, "BtnDelete", nil)).WithCallbackData(entityData(kindPost, actDel, id)),
	))
}
