package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"channelpost-bot/internal/database/models"
	"channelpost-bot/internal/render"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoJobRepository implements JobRepository for MongoDB.
type MongoJobRepository struct {
	collection *mongo.Collection
	timeout    time.Duration
}

// NewMongoJobRepository creates a job repository. Every call is bounded by timeout.
func NewMongoJobRepository(db *mongo.Database, timeout time.Duration) *MongoJobRepository {
	return &MongoJobRepository{
		collection: db.Collection(jobsCollectionName),
		timeout:    timeout,
	}
}

// CreateJob inserts a new job.
func (r *MongoJobRepository) CreateJob(ctx context.Context, job *models.Job) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}
	if _, err := r.collection.InsertOne(ctx, job); err != nil {
		return fmt.Errorf("failed to insert job %s: %w", job.ID, err)
	}
	return nil
}

// GetJob returns the job with the given id.
func (r *MongoJobRepository) GetJob(ctx context.Context, id string) (*models.Job, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var job models.Job
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&job); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find job %s: %w", id, err)
	}
	return &job, nil
}

// ListDueJobs returns jobs whose run time has come, oldest first.
func (r *MongoJobRepository) ListDueJobs(ctx context.Context, now time.Time, limit int) ([]models.Job, error) {
	return r.find(ctx, bson.M{"run_at": bson.M{"$lte": now}}, limit)
}

// ListJobs returns scheduled jobs ordered by run time.
func (r *MongoJobRepository) ListJobs(ctx context.Context, limit int) ([]models.Job, error) {
	return r.find(ctx, bson.M{}, limit)
}

func (r *MongoJobRepository) find(ctx context.Context, filter bson.M, limit int) ([]models.Job, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	findOptions := options.Find().
		SetSort(bson.D{{Key: "run_at", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to find jobs: %w", err)
	}
	defer cursor.Close(ctx)

	jobs := []models.Job{}
	if err = cursor.All(ctx, &jobs); err != nil {
		return nil, fmt.Errorf("failed to decode jobs: %w", err)
	}
	return jobs, nil
}

// UpdateJobContent replaces the job's text, buttons and photo.
func (r *MongoJobRepository) UpdateJobContent(ctx context.Context, id string, content render.Content) error {
	set := bson.M{"text": content.Text, "buttons": content.Buttons}
	update := bson.M{"$set": set}
	if content.PhotoRef != "" {
		set["photo_ref"] = content.PhotoRef
	} else {
		update["$unset"] = bson.M{"photo_ref": ""}
	}
	return r.update(ctx, id, update)
}

// MoveJob changes the job's run time.
func (r *MongoJobRepository) MoveJob(ctx context.Context, id string, runAt time.Time) error {
	return r.update(ctx, id, bson.M{"$set": bson.M{"run_at": runAt}})
}

func (r *MongoJobRepository) update(ctx context.Context, id string, update bson.M) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update job %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteJob removes the job with the given id.
func (r *MongoJobRepository) DeleteJob(ctx context.Context, id string) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete job %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
