package models

import (
	"fmt"
	"time"

	"channelpost-bot/internal/buttons"
	"channelpost-bot/internal/render"
)

// Post records what is live in the channel. TextMessageID is non-zero only
// when the post was rendered split.
type Post struct {
	ID            string           `bson:"_id"`
	ChannelID     string           `bson:"channel_id"`
	MessageID     int              `bson:"message_id"`
	TextMessageID int              `bson:"text_message_id,omitempty"`
	Text          string           `bson:"text"`
	Buttons       []buttons.Button `bson:"buttons"`
	PhotoRef      string           `bson:"photo_ref,omitempty"`
	CreatedBy     int64            `bson:"created_by"`
	CreatedAt     time.Time        `bson:"created_at"`
	UpdatedAt     time.Time        `bson:"updated_at,omitempty"`
}

// PostID derives the id of a post from its author and primary message id.
func PostID(createdBy int64, messageID int) string {
	return fmt.Sprintf("%d_%d", createdBy, messageID)
}

// Split reports whether the post is live as two messages.
func (p Post) Split() bool {
	return p.TextMessageID != 0
}

// Content returns the renderable part of the post.
func (p Post) Content() render.Content {
	return render.Content{Text: p.Text, Buttons: p.Buttons, PhotoRef: p.PhotoRef}
}
