package handlers

import (
	"context"
	"errors"
	"fmt"

	"channelpost-bot/internal/channel"
	"channelpost-bot/internal/database"
	"channelpost-bot/internal/database/models"
	"channelpost-bot/internal/drafts"
	"channelpost-bot/internal/render"
	"channelpost-bot/internal/schedule"
	telegoapi "channelpost-bot/pkg/telegoapi"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	"github.com/nicksnyder/go-i18n/v2/i18n"
)

// HandleJobs lists scheduled jobs by run time.
func (h *MessageHandler) HandleJobs(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error {
	loc := h.getLocalizer(message.From)
	chatID := message.Chat.ID

	jobs, err := h.jobs.ListJobs(ctx, jobListLimit)
	if err != nil {
		return h.sendError(ctx, bot, chatID, loc, fmt.Errorf("list jobs: %w", err))
	}
	if len(jobs) == 0 {
		return h.send(ctx, bot, chatID, msg(loc, "MsgJobsEmpty", nil), nil)
	}

	rows := make([][]telego.InlineKeyboardButton, 0, len(jobs))
	for _, job := range jobs {
		label := msg(loc, "BtnJobItem", map[string]interface{}{
			"Time":     schedule.Format(job.RunAt, h.location),
			"HasPhoto": job.PhotoRef != "",
			"Preview":  previewLine(job.Text),
		})
		rows = append(rows, tu.InlineKeyboardRow(
			tu.InlineKeyboardButton(label).WithCallbackData(entityData(kindJob, actView, job.ID)),
		))
	}
	return h.send(ctx, bot, chatID, msg(loc, "MsgJobsHeader", map[string]interface{}{"Count": len(jobs)}), tu.InlineKeyboard(rows...))
}

func (h *MessageHandler) handleJobAction(ctx context.Context, bot telegoapi.BotAPI, chatID int64, user *telego.User, action, id string) error {
	loc := h.getLocalizer(user)

	switch action {
	case actDelNo:
		return h.send(ctx, bot, chatID, msg(loc, "MsgDeleteCancelled", nil), nil)
	case actDelYes:
		err := h.jobs.DeleteJob(ctx, id)
		if errors.Is(err, database.ErrNotFound) {
			return h.send(ctx, bot, chatID, msg(loc, "MsgNotFound", nil), nil)
		}
		if err != nil {
			h.sendFailure(ctx, bot, chatID, loc, err, nil)
			return nil
		}
		h.logger.Info().Str("job_id", id).Int64("user_id", user.ID).Msg("Job deleted")
		return h.send(ctx, bot, chatID, msg(loc, "MsgJobDeleted", map[string]interface{}{"JobID": id}), nil)
	}

	job, err := h.jobs.GetJob(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return h.send(ctx, bot, chatID, msg(loc, "MsgNotFound", nil), nil)
	}
	if err != nil {
		return h.sendError(ctx, bot, chatID, loc, fmt.Errorf("get job %s: %w", id, err))
	}

	switch action {
	case actView:
		return h.showJob(ctx, bot, chatID, loc, job)
	case actEdit:
		sess := drafts.NewEditJob(job.ID, drafts.Draft{
			Text:      job.Text,
			Buttons:   job.Buttons,
			PhotoRef:  job.PhotoRef,
			SplitMode: job.SplitMode(h.captionLimit),
		})
		h.sessions.Put(user.ID, sess)
		return h.prompt(ctx, bot, chatID, loc, sess, drafts.PromptText)
	case actMove:
		sess := drafts.NewMoveJob(job.ID)
		h.sessions.Put(user.ID, sess)
		return h.prompt(ctx, bot, chatID, loc, sess, drafts.PromptScheduleChoice)
	case actDel:
		keyboard := tu.InlineKeyboard(tu.InlineKeyboardRow(
			tu.InlineKeyboardButton(msg(loc, "BtnConfirmDelete", nil)).WithCallbackData(entityData(kindJob, actDelYes, job.ID)),
			tu.InlineKeyboardButton(msg(loc, "BtnKeep", nil)).WithCallbackData(entityData(kindJob, actDelNo, job.ID)),
		))
		return h.send(ctx, bot, chatID, msg(loc, "MsgConfirmDeleteJob", map[string]interface{}{
			"JobID": job.ID,
			"Time":  schedule.Format(job.RunAt, h.location),
		}), keyboard)
	default:
		h.logger.Warn().Str("action", action).Msg("Unknown job action")
		return nil
	}
}

// showJob renders the job exactly as the scheduler will publish it.
func (h *MessageHandler) showJob(ctx context.Context, bot telegoapi.BotAPI, chatID int64, loc *i18n.Localizer, job *models.Job) error {
	plan, err := render.Build(job.Content(), job.SplitMode(h.captionLimit), h.captionLimit)
	if err != nil {
		return h.sendError(ctx, bot, chatID, loc, fmt.Errorf("render job %s: %w", job.ID, err))
	}
	if _, _, err := channel.SendPlan(ctx, h.preview, chatRef(chatID), plan); err != nil {
		h.sendFailure(ctx, bot, chatID, loc, err, nil)
	}
	return h.send(ctx, bot, chatID, msg(loc, "MsgJobView", map[string]interface{}{
		"JobID":  job.ID,
		"Time":   schedule.Format(job.RunAt, h.location),
		"Layout": msg(loc, "Layout_"+plan.Layout.String(), nil),
	}), h.jobKeyboard(loc, job.ID))
}

func (h *MessageHandler) jobKeyboard(loc *i18n.Localizer, id string) *telego.InlineKeyboardMarkup {
	return tu.InlineKeyboard(
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton(msg(loc, "BtnView", nil)).WithCallbackData(entityData(kindJob, actView, id)),
			tu.InlineKeyboardButton(msg(loc, "BtnEdit", nil)).WithCallbackData(entityData(kindJob, actEdit, id)),
			tu.InlineKeyboardButton(msg(loc, "BtnMove", nil)).WithCallbackData(entityData(kindJob, actMove, id)),
		),
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton(msg(loc, "BtnDelete", nil)).WithCallbackData(entityData(kindJob, actDel, id)),
		),
	)
}
