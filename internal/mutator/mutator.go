package mutator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"channelpost-bot/internal/buttons"
	"channelpost-bot/internal/channel"
	"channelpost-bot/internal/database"
	"channelpost-bot/internal/database/models"
	"channelpost-bot/internal/render"

	"github.com/rs/zerolog"
)

// Channel is what the mutator needs from the chat platform.
type Channel interface {
	channel.Sender
	EditText(ctx context.Context, channel string, messageID int, text string, btns []buttons.Button) error
	EditCaption(ctx context.Context, channel string, messageID int, caption string, btns []buttons.Button) error
}

// Edit is the desired new state of a published post.
type Edit struct {
	Content   render.Content
	SplitMode bool
}

// Mutator reconciles edits against the messages that are live in the channel.
type Mutator struct {
	ch           Channel
	posts        database.PostRepository
	captionLimit int
	now          func() time.Time
	logger       zerolog.Logger
}

// New creates a Mutator.
func New(ch Channel, posts database.PostRepository, captionLimit int, logger zerolog.Logger) *Mutator {
	return &Mutator{
		ch:           ch,
		posts:        posts,
		captionLimit: captionLimit,
		now:          time.Now,
		logger:       logger.With().Str("component", "mutator").Logger(),
	}
}

// ApplyEdit updates a published post. A change of photo or of split mode
// replaces the live messages; anything else is edited in place and keeps the
// message ids.
func (m *Mutator) ApplyEdit(ctx context.Context, postID string, edit Edit) error {
	post, err := m.posts.GetPost(ctx, postID)
	if err != nil {
		return err
	}

	split := edit.SplitMode && edit.Content.HasPhoto()
	plan, err := render.Build(edit.Content, split, m.captionLimit)
	if err != nil {
		return err
	}

	if edit.Content.PhotoRef != post.PhotoRef || split != post.Split() {
		return m.replace(ctx, post, edit.Content, plan)
	}
	return m.editInPlace(ctx, post, edit.Content, plan)
}

func (m *Mutator) replace(ctx context.Context, post *models.Post, content render.Content, plan render.Plan) error {
	m.deleteQuietly(ctx, post.ChannelID, post.MessageID)
	m.deleteQuietly(ctx, post.ChannelID, post.TextMessageID)

	primaryID, textID, err := channel.SendPlan(ctx, m.ch, post.ChannelID, plan)
	if err != nil {
		return fmt.Errorf("failed to send replacement for post %s: %w", post.ID, err)
	}

	post.MessageID = primaryID
	post.TextMessageID = textID
	m.setContent(post, content, plan)
	if err := m.posts.SavePost(ctx, post); err != nil {
		return fmt.Errorf("failed to save replaced post %s: %w", post.ID, err)
	}

	m.logger.Info().
		Str("post_id", post.ID).
		Str("layout", plan.Layout.String()).
		Int("message_id", primaryID).
		Int("text_message_id", textID).
		Msg("Replaced post messages")
	return nil
}

func (m *Mutator) editInPlace(ctx context.Context, post *models.Post, content render.Content, plan render.Plan) error {
	var err error
	switch plan.Layout {
	case render.LayoutText:
		err = m.ch.EditText(ctx, post.ChannelID, post.MessageID, plan.Primary.Text, plan.Primary.Buttons)
	case render.LayoutPhoto:
		err = m.ch.EditCaption(ctx, post.ChannelID, post.MessageID, plan.Primary.Text, plan.Primary.Buttons)
	case render.LayoutSplit:
		if err = m.ch.EditCaption(ctx, post.ChannelID, post.MessageID, plan.Primary.Text, nil); err == nil {
			err = m.ch.EditText(ctx, post.ChannelID, post.TextMessageID, plan.Secondary.Text, plan.Secondary.Buttons)
		}
	}
	if err != nil {
		return fmt.Errorf("failed to edit post %s: %w", post.ID, err)
	}

	m.setContent(post, content, plan)
	if err := m.posts.SavePost(ctx, post); err != nil {
		return fmt.Errorf("failed to save edited post %s: %w", post.ID, err)
	}
	m.logger.Info().Str("post_id", post.ID).Msg("Edited post in place")
	return nil
}

func (m *Mutator) setContent(post *models.Post, content render.Content, plan render.Plan) {
	post.Text = content.Text
	post.Buttons = content.Buttons
	post.PhotoRef = ""
	if plan.Layout != render.LayoutText {
		post.PhotoRef = content.PhotoRef
	}
	post.UpdatedAt = m.now()
}

// DeletePost removes the post's live messages, best effort, and then its record.
func (m *Mutator) DeletePost(ctx context.Context, postID string) error {
	post, err := m.posts.GetPost(ctx, postID)
	if err != nil {
		return err
	}
	m.deleteQuietly(ctx, post.ChannelID, post.MessageID)
	m.deleteQuietly(ctx, post.ChannelID, post.TextMessageID)

	if err := m.posts.DeletePost(ctx, postID); err != nil {
		return err
	}
	m.logger.Info().Str("post_id", postID).Msg("Deleted post")
	return nil
}

// deleteQuietly removes a message. A message that is already gone is fine;
// other failures are logged and skipped.
func (m *Mutator) deleteQuietly(ctx context.Context, ch string, messageID int) {
	if messageID == 0 {
		return
	}
	err := m.ch.Delete(ctx, ch, messageID)
	if err == nil || errors.Is(err, channel.ErrMessageNotFound) {
		return
	}
	m.logger.Warn().Err(err).Int("message_id", messageID).Msg("Failed to delete message, continuing")
}
