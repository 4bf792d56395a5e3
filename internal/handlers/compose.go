package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"
	"unicode/utf8"

	"channelpost-bot/internal/buttons"
	"channelpost-bot/internal/channel"
	"channelpost-bot/internal/database"
	"channelpost-bot/internal/database/models"
	"channelpost-bot/internal/drafts"
	"channelpost-bot/internal/mutator"
	"channelpost-bot/internal/publisher"
	"channelpost-bot/internal/render"
	"channelpost-bot/internal/schedule"
	telegoapi "channelpost-bot/pkg/telegoapi"

	"github.com/google/uuid"
	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	"github.com/nicksnyder/go-i18n/v2/i18n"
)

// step feeds one input to the user's session and acts on the result. The
// session is cleared on cancel. Before a commit the session is taken out of the
// store so a second press of the same button finds nothing to commit; a failed
// commit puts it back for a retry.
func (h *MessageHandler) step(ctx context.Context, bot telegoapi.BotAPI, chatID int64, user *telego.User, sess drafts.Session, in drafts.Input) error {
	loc := h.getLocalizer(user)
	next, res := h.composer.Step(sess, in)

	h.logger.Debug().
		Int64("user_id", user.ID).
		Str("flow", sess.Flow.String()).
		Str("from", sess.State().String()).
		Str("to", next.State().String()).
		Msg("Draft step")

	switch {
	case res.Done:
		h.sessions.Delete(user.ID)
		return h.send(ctx, bot, chatID, msg(loc, "PromptCancelled", nil), h.menuKeyboard(loc, h.admins.IsOwner(user.ID)))
	case res.Commit != nil:
		claimed, ok := h.sessions.Take(user.ID)
		if !ok || claimed.State() != sess.State() {
			if ok {
				h.sessions.Restore(user.ID, claimed)
			}
			return h.send(ctx, bot, chatID, msg(loc, "MsgSessionExpired", nil), h.menuKeyboard(loc, h.admins.IsOwner(user.ID)))
		}
		return h.commit(ctx, bot, chatID, user, next, *res.Commit)
	default:
		h.sessions.Put(user.ID, next)
		return h.prompt(ctx, bot, chatID, loc, next, res.Prompt)
	}
}

// prompt asks the operator for whatever the session waits on next.
func (h *MessageHandler) prompt(ctx context.Context, bot telegoapi.BotAPI, chatID int64, loc *i18n.Localizer, sess drafts.Session, p drafts.Prompt) error {
	edit := sess.Flow.IsEdit()
	cancel := h.cancelKeyboard(loc)

	switch p {
	case drafts.PromptText:
		if edit {
			return h.send(ctx, bot, chatID, msg(loc, "PromptEditText", map[string]interface{}{"Current": sess.Original.Text}), cancel)
		}
		return h.send(ctx, bot, chatID, msg(loc, "PromptText", nil), cancel)
	case drafts.PromptTextRequired:
		return h.send(ctx, bot, chatID, msg(loc, "PromptTextRequired", nil), cancel)
	case drafts.PromptButtons:
		if edit {
			current := buttons.Format(sess.Original.Buttons)
			if current == "" {
				current = msg(loc, "ValueNone", nil)
			}
			return h.send(ctx, bot, chatID, msg(loc, "PromptEditButtons", map[string]interface{}{"Current": current}), cancel)
		}
		return h.send(ctx, bot, chatID, msg(loc, "PromptButtons", nil), cancel)
	case drafts.PromptPhoto, drafts.PromptPhotoRequired:
		id := "PromptPhoto"
		if p == drafts.PromptPhotoRequired {
			id = "PromptPhotoRequired"
		}
		if edit {
			id = "PromptEditPhoto"
		}
		return h.send(ctx, bot, chatID, msg(loc, id, map[string]interface{}{"HasPhoto": sess.Original.PhotoRef != ""}), cancel)
	case drafts.PromptLongCaptionChoice:
		text := msg(loc, "PromptLongCaptionChoice", map[string]interface{}{
			"Length": utf8.RuneCountInString(sess.Draft().Text),
			"Limit":  h.captionLimit,
		})
		keyboard := tu.InlineKeyboard(
			tu.InlineKeyboardRow(tu.InlineKeyboardButton(msg(loc, "BtnSplit", nil)).WithCallbackData(cbLongSplit)),
			tu.InlineKeyboardRow(tu.InlineKeyboardButton(msg(loc, "BtnDropPhoto", nil)).WithCallbackData(cbLongNoPhoto)),
			tu.InlineKeyboardRow(tu.InlineKeyboardButton(msg(loc, "BtnCancel", nil)).WithCallbackData(cbDraftCancel)),
		)
		return h.send(ctx, bot, chatID, text, keyboard)
	case drafts.PromptPreview:
		return h.showPreview(ctx, bot, chatID, loc, sess)
	case drafts.PromptScheduleChoice:
		return h.send(ctx, bot, chatID, msg(loc, "PromptScheduleChoice", map[string]interface{}{"Timezone": h.location.String()}), h.scheduleKeyboard(loc))
	case drafts.PromptManualDateTime:
		return h.send(ctx, bot, chatID, msg(loc, "PromptManualDateTime", map[string]interface{}{
			"Timezone": h.location.String(),
			"Example":  schedule.Format(h.now().Add(schedule.MinLead+time.Hour), h.location),
		}), cancel)
	case drafts.PromptBadDateTime:
		return h.send(ctx, bot, chatID, msg(loc, "PromptBadDateTime", nil), cancel)
	case drafts.PromptTooSoon:
		return h.send(ctx, bot, chatID, msg(loc, "PromptTooSoon", nil), h.scheduleKeyboard(loc))
	default:
		return nil
	}
}

// showPreview sends exactly what will be published, then the controls.
func (h *MessageHandler) showPreview(ctx context.Context, bot telegoapi.BotAPI, chatID int64, loc *i18n.Localizer, sess drafts.Session) error {
	d := sess.Draft()
	plan, err := render.Build(d.Content(), d.SplitMode, h.captionLimit)
	if err != nil {
		return h.sendError(ctx, bot, chatID, loc, fmt.Errorf("build preview: %w", err))
	}
	if _, _, err := channel.SendPlan(ctx, h.preview, chatRef(chatID), plan); err != nil {
		h.sendFailure(ctx, bot, chatID, loc, err, h.cancelKeyboard(loc))
		return nil
	}
	return h.send(ctx, bot, chatID, msg(loc, "PromptPreview", map[string]interface{}{
		"Layout": msg(loc, "Layout_"+plan.Layout.String(), nil),
	}), h.previewKeyboard(loc, sess.Flow))
}

func (h *MessageHandler) previewKeyboard(loc *i18n.Localizer, flow drafts.Flow) *telego.InlineKeyboardMarkup {
	cancel := tu.InlineKeyboardButton(msg(loc, "BtnCancel", nil)).WithCallbackData(cbDraftCancel)
	if flow.IsEdit() {
		return tu.InlineKeyboard(
			tu.InlineKeyboardRow(tu.InlineKeyboardButton(msg(loc, "BtnApply", nil)).WithCallbackData(cbEditApply)),
			tu.InlineKeyboardRow(cancel),
		)
	}
	return tu.InlineKeyboard(
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton(msg(loc, "BtnPublishNow", nil)).WithCallbackData(cbDraftPublishNow),
			tu.InlineKeyboardButton(msg(loc, "BtnSchedule", nil)).WithCallbackData(cbDraftSchedule),
		),
		tu.InlineKeyboardRow(cancel),
	)
}

func (h *MessageHandler) cancelKeyboard(loc *i18n.Localizer) *telego.InlineKeyboardMarkup {
	return tu.InlineKeyboard(tu.InlineKeyboardRow(
		tu.InlineKeyboardButton(msg(loc, "BtnCancel", nil)).WithCallbackData(cbDraftCancel),
	))
}

// scheduleKeyboard offers today's and tomorrow's quick picks plus manual entry.
func (h *MessageHandler) scheduleKeyboard(loc *i18n.Localizer) *telego.InlineKeyboardMarkup {
	var today, tomorrow []telego.InlineKeyboardButton
	for _, p := range schedule.QuickPicks(h.now(), h.location) {
		label := "BtnToday"
		if p.Day == schedule.Tomorrow {
			label = "BtnTomorrow"
		}
		btn := tu.InlineKeyboardButton(msg(loc, label, map[string]interface{}{
			"Time": fmt.Sprintf("%02d:00", p.Hour),
		})).WithCallbackData(cbTimePrefix + p.Code)
		if p.Day == schedule.Tomorrow {
			tomorrow = append(tomorrow, btn)
		} else {
			today = append(today, btn)
		}
	}
	return tu.InlineKeyboard(
		tu.InlineKeyboardRow(today...),
		tu.InlineKeyboardRow(tomorrow...),
		tu.InlineKeyboardRow(tu.InlineKeyboardButton(msg(loc, "BtnManual", nil)).WithCallbackData(cbTimePrefix+schedule.ManualCode)),
		tu.InlineKeyboardRow(tu.InlineKeyboardButton(msg(loc, "BtnCancel", nil)).WithCallbackData(cbDraftCancel)),
	)
}

// commit performs the side effect a finished flow asked for. sess has already
// been taken out of the store.
func (h *MessageHandler) commit(ctx context.Context, bot telegoapi.BotAPI, chatID int64, user *telego.User, sess drafts.Session, c drafts.Commit) error {
	loc := h.getLocalizer(user)
	content := c.Draft.Content()
	log := h.logger.With().Int64("user_id", user.ID).Str("flow", sess.Flow.String()).Logger()

	var (
		err      error
		done     string
		data     map[string]interface{}
		keyboard telego.ReplyMarkup
	)
	switch c.Kind {
	case drafts.CommitPublishNow:
		var postID string
		postID, err = h.publisher.Publish(ctx, publisher.Request{
			ChannelID: h.channelID,
			Content:   content,
			SplitMode: c.Draft.SplitMode,
			CreatedBy: user.ID,
		})
		done, data, keyboard = "MsgPublished", map[string]interface{}{"PostID": postID}, h.postKeyboard(loc, postID)

	case drafts.CommitSchedule:
		job := &models.Job{
			ID:        newJobID(h.now()),
			ChannelID: h.channelID,
			Text:      content.Text,
			Buttons:   content.Buttons,
			PhotoRef:  content.PhotoRef,
			RunAt:     c.RunAt,
			CreatedBy: user.ID,
			CreatedAt: h.now(),
		}
		err = h.jobs.CreateJob(ctx, job)
		done = "MsgScheduled"
		data = map[string]interface{}{"JobID": job.ID, "Time": schedule.Format(c.RunAt, h.location)}
		keyboard = h.jobKeyboard(loc, job.ID)

	case drafts.CommitApplyPostEdit:
		err = h.mutator.ApplyEdit(ctx, c.TargetID, mutator.Edit{Content: content, SplitMode: c.Draft.SplitMode})
		done, data, keyboard = "MsgPostUpdated", map[string]interface{}{"PostID": c.TargetID}, h.postKeyboard(loc, c.TargetID)

	case drafts.CommitApplyJobEdit:
		err = h.jobs.UpdateJobContent(ctx, c.TargetID, content)
		done, data, keyboard = "MsgJobUpdated", map[string]interface{}{"JobID": c.TargetID}, h.jobKeyboard(loc, c.TargetID)

	case drafts.CommitMoveJob:
		err = h.jobs.MoveJob(ctx, c.TargetID, c.RunAt)
		done = "MsgJobMoved"
		data = map[string]interface{}{"JobID": c.TargetID, "Time": schedule.Format(c.RunAt, h.location)}
		keyboard = h.jobKeyboard(loc, c.TargetID)

	default:
		return fmt.Errorf("unknown commit kind %d", c.Kind)
	}

	switch {
	case errors.Is(err, database.ErrNotFound):
		return h.send(ctx, bot, chatID, msg(loc, "MsgNotFound", nil), h.menuKeyboard(loc, h.admins.IsOwner(user.ID)))
	case err != nil:
		if !h.sessions.Restore(user.ID, sess) {
			log.Warn().Err(err).Msg("Commit failed, newer session kept")
			h.sendFailure(ctx, bot, chatID, loc, err, nil)
			return nil
		}
		log.Warn().Err(err).Msg("Commit failed, session kept for retry")
		var retry telego.ReplyMarkup = h.previewKeyboard(loc, sess.Flow)
		if st := sess.State(); st == drafts.StateAwaitingScheduleChoice || st == drafts.StateAwaitingManualDateTime {
			retry = h.scheduleKeyboard(loc)
		}
		h.sendFailure(ctx, bot, chatID, loc, err, retry)
		return nil
	}

	log.Info().Interface("result", data).Msg("Draft committed")
	return h.send(ctx, bot, chatID, msg(loc, done, data), keyboard)
}

// newJobID returns a time-ordered id: base36 milliseconds plus a random suffix.
func newJobID(now time.Time) string {
	return strconv.FormatInt(now.UnixMilli(), 36) + "-" + uuid.NewString()[:8]
}
