package database

import (
	"context"
	"time"

	"channelpost-bot/internal/database/models"
	"channelpost-bot/internal/render"
)

// JobRepository stores scheduled posts.
type JobRepository interface {
	// CreateJob inserts a new job.
	CreateJob(ctx context.Context, job *models.Job) error
	// GetJob returns the job or ErrNotFound.
	GetJob(ctx context.Context, id string) (*models.Job, error)
	// ListDueJobs returns at most limit jobs with run_at <= now, oldest first.
	ListDueJobs(ctx context.Context, now time.Time, limit int) ([]models.Job, error)
	// ListJobs returns at most limit jobs ordered by run_at.
	ListJobs(ctx context.Context, limit int) ([]models.Job, error)
	// UpdateJobContent replaces text, buttons and photo. run_at is untouched.
	UpdateJobContent(ctx context.Context, id string, content render.Content) error
	// MoveJob changes only run_at.
	MoveJob(ctx context.Context, id string, runAt time.Time) error
	// DeleteJob removes the job or returns ErrNotFound.
	DeleteJob(ctx context.Context, id string) error
}

// PostRepository stores records of posts live in the channel.
type PostRepository interface {
	// SavePost inserts or fully overwrites the post with the same id.
	SavePost(ctx context.Context, post *models.Post) error
	// GetPost returns the post or ErrNotFound.
	GetPost(ctx context.Context, id string) (*models.Post, error)
	// ListRecentPosts returns at most limit posts, newest first.
	ListRecentPosts(ctx context.Context, limit int) ([]models.Post, error)
	// DeletePost removes the post or returns ErrNotFound.
	DeletePost(ctx context.Context, id string) error
}

// AdminRepository stores the admin set.
type AdminRepository interface {
	// EnsureOwner upserts the owner row and clears the owner label from any other row.
	EnsureOwner(ctx context.Context, ownerID int64) error
	// AddAdmin inserts or refreshes an admin row.
	AddAdmin(ctx context.Context, admin *models.Admin) error
	// SeedAdmin inserts an admin row only if it does not exist yet.
	SeedAdmin(ctx context.Context, admin *models.Admin) error
	// IsAdmin reports whether the user has a row.
	IsAdmin(ctx context.Context, userID int64) (bool, error)
	// ListAdmins returns every admin ordered by user id.
	ListAdmins(ctx context.Context) ([]models.Admin, error)
	// RemoveAdmin deletes the row or returns ErrNotFound.
	RemoveAdmin(ctx context.Context, userID int64) error
}
