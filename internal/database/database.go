package database

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a job, post or admin does not exist.
var ErrNotFound = errors.New("not found")

const (
	adminsCollectionName = "admins"
	jobsCollectionName   = "jobs"
	postsCollectionName  = "posts"
)

// withTimeout bounds a single storage call. A zero timeout leaves ctx as is.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
