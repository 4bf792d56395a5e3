// Package databasetest provides an in-memory implementation of the repositories for tests.
package databasetest

import (
	"context"
	"sort"
	"sync"
	"time"

	"channelpost-bot/internal/database"
	"channelpost-bot/internal/database/models"
	"channelpost-bot/internal/render"
)

// Store implements JobRepository, PostRepository and AdminRepository in memory.
// Setting one of the Err fields makes the matching calls fail with it.
type Store struct {
	mu     sync.Mutex
	jobs   map[string]models.Job
	posts  map[string]models.Post
	admins map[int64]models.Admin

	ListDueErr   error
	DeleteJobErr error
	SavePostErr  error
}

var (
	_ database.JobRepository   = (*Store)(nil)
	_ database.PostRepository  = (*Store)(nil)
	_ database.AdminRepository = (*Store)(nil)
)

// New returns an empty store.
func New() *Store {
	return &Store{
		jobs:   make(map[string]models.Job),
		posts:  make(map[string]models.Post),
		admins: make(map[int64]models.Admin),
	}
}

// CreateJob stores a copy of job.
func (s *Store) CreateJob(_ context.Context, job *models.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}
	s.jobs[job.ID] = *job
	return nil
}

// GetJob returns a copy of the job.
func (s *Store) GetJob(_ context.Context, id string) (*models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &job, nil
}

// ListDueJobs returns due jobs ordered by run time.
func (s *Store) ListDueJobs(_ context.Context, now time.Time, limit int) ([]models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ListDueErr != nil {
		return nil, s.ListDueErr
	}
	return s.sortedJobs(func(j models.Job) bool { return !j.RunAt.After(now) }, limit), nil
}

// ListJobs returns all jobs ordered by run time.
func (s *Store) ListJobs(_ context.Context, limit int) ([]models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedJobs(func(models.Job) bool { return true }, limit), nil
}

func (s *Store) sortedJobs(keep func(models.Job) bool, limit int) []models.Job {
	out := []models.Job{}
	for _, j := range s.jobs {
		if keep(j) {
			out = append(out, j)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].RunAt.Before(out[b].RunAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// UpdateJobContent replaces text, buttons and photo.
func (s *Store) UpdateJobContent(_ context.Context, id string, content render.Content) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return database.ErrNotFound
	}
	job.Text, job.Buttons, job.PhotoRef = content.Text, content.Buttons, content.PhotoRef
	s.jobs[id] = job
	return nil
}

// MoveJob changes run time.
func (s *Store) MoveJob(_ context.Context, id string, runAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return database.ErrNotFound
	}
	job.RunAt = runAt
	s.jobs[id] = job
	return nil
}

// DeleteJob removes a job.
func (s *Store) DeleteJob(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.DeleteJobErr != nil {
		return s.DeleteJobErr
	}
	if _, ok := s.jobs[id]; !ok {
		return database.ErrNotFound
	}
	delete(s.jobs, id)
	return nil
}

// Jobs returns the number of stored jobs.
func (s *Store) Jobs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// SavePost stores a copy of post.
func (s *Store) SavePost(_ context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SavePostErr != nil {
		return s.SavePostErr
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now()
	}
	s.posts[post.ID] = *post
	return nil
}

// GetPost returns a copy of the post.
func (s *Store) GetPost(_ context.Context, id string) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	post, ok := s.posts[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &post, nil
}

// ListRecentPosts returns posts newest first.
func (s *Store) ListRecentPosts(_ context.Context, limit int) ([]models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Post{}
	for _, p := range s.posts {
		out = append(out, p)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].CreatedAt.After(out[b].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// DeletePost removes a post record.
func (s *Store) DeletePost(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[id]; !ok {
		return database.ErrNotFound
	}
	delete(s.posts, id)
	return nil
}

// Posts returns the number of stored posts.
func (s *Store) Posts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.posts)
}

// EnsureOwner labels ownerID as the owner and clears the label elsewhere.
func (s *Store) EnsureOwner(_ context.Context, ownerID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, a := range s.admins {
		if id != ownerID && a.Name == models.OwnerName {
			a.Name = ""
			s.admins[id] = a
		}
	}
	owner, ok := s.admins[ownerID]
	if !ok {
		owner = models.Admin{UserID: ownerID, AddedAt: time.Now()}
	}
	owner.Name = models.OwnerName
	s.admins[ownerID] = owner
	return nil
}

// AddAdmin inserts or refreshes an admin.
func (s *Store) AddAdmin(_ context.Context, admin *models.Admin) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if admin.AddedAt.IsZero() {
		admin.AddedAt = time.Now()
	}
	existing, ok := s.admins[admin.UserID]
	if ok {
		existing.Username, existing.Name = admin.Username, admin.Name
		s.admins[admin.UserID] = existing
		return nil
	}
	s.admins[admin.UserID] = *admin
	return nil
}

// SeedAdmin inserts only when missing.
func (s *Store) SeedAdmin(_ context.Context, admin *models.Admin) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.admins[admin.UserID]; ok {
		return nil
	}
	if admin.AddedAt.IsZero() {
		admin.AddedAt = time.Now()
	}
	s.admins[admin.UserID] = *admin
	return nil
}

// IsAdmin reports membership.
func (s *Store) IsAdmin(_ context.Context, userID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.admins[userID]
	return ok, nil
}

// ListAdmins returns admins ordered by id.
func (s *Store) ListAdmins(_ context.Context) ([]models.Admin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Admin{}
	for _, a := range s.admins {
		out = append(out, a)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].UserID < out[b].UserID })
	return out, nil
}

// RemoveAdmin deletes an admin.
func (s *Store) RemoveAdmin(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.admins[userID]; !ok {
		return database.ErrNotFound
	}
	delete(s.admins, userID)
	return nil
}
