package publisher

import (
	"context"
	"fmt"
	"time"

	"channelpost-bot/internal/channel"
	"channelpost-bot/internal/database"
	"channelpost-bot/internal/database/models"
	"channelpost-bot/internal/render"

	"github.com/rs/zerolog"
)

// Request is everything needed to publish one post.
type Request struct {
	ChannelID string
	Content   render.Content
	// SplitMode is the layout decision already taken upstream; it is not re-derived.
	SplitMode bool
	CreatedBy int64
}

// Publisher renders posts to the channel and records them.
type Publisher struct {
	sender       channel.Sender
	posts        database.PostRepository
	captionLimit int
	now          func() time.Time
	logger       zerolog.Logger
}

// New creates a Publisher.
func New(sender channel.Sender, posts database.PostRepository, captionLimit int, logger zerolog.Logger) *Publisher {
	return &Publisher{
		sender:       sender,
		posts:        posts,
		captionLimit: captionLimit,
		now:          time.Now,
		logger:       logger.With().Str("component", "publisher").Logger(),
	}
}

// Publish sends the post and stores a Post row with its message ids.
// Send errors are returned as is; retrying is up to the caller.
func (p *Publisher) Publish(ctx context.Context, req Request) (string, error) {
	plan, err := render.Build(req.Content, req.SplitMode, p.captionLimit)
	if err != nil {
		return "", err
	}

	primaryID, textID, err := channel.SendPlan(ctx, p.sender, req.ChannelID, plan)
	if err != nil {
		return "", err
	}

	now := p.now()
	post := &models.Post{
		ID:            models.PostID(req.CreatedBy, primaryID),
		ChannelID:     req.ChannelID,
		MessageID:     primaryID,
		TextMessageID: textID,
		Text:          req.Content.Text,
		Buttons:       req.Content.Buttons,
		CreatedBy:     req.CreatedBy,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if plan.Layout != render.LayoutText {
		post.PhotoRef = req.Content.PhotoRef
	}
	if err := p.posts.SavePost(ctx, post); err != nil {
		return "", fmt.Errorf("post %s is live but was not recorded: %w", post.ID, err)
	}

	p.logger.Info().
		Str("post_id", post.ID).
		Str("layout", plan.Layout.String()).
		Int("message_id", primaryID).
		Int("text_message_id", textID).
		Msg("Published post")
	return post.ID, nil
}
