package handlers

import (
	"context"

	"channelpost-bot/internal/mutator"
	"channelpost-bot/internal/publisher"
)

// Publisher publishes a post immediately.
type Publisher interface {
	Publish(ctx context.Context, req publisher.Request) (string, error)
}

// Mutator edits or deletes live posts.
type Mutator interface {
	ApplyEdit(ctx context.Context, postID string, edit mutator.Edit) error
	DeletePost(ctx context.Context, postID string) error
}
