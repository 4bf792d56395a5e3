package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"channelpost-bot/internal/database/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoPostRepository implements PostRepository for MongoDB.
type MongoPostRepository struct {
	collection *mongo.Collection
	timeout    time.Duration
}

// NewMongoPostRepository creates a post repository. Every call is bounded by timeout.
func NewMongoPostRepository(db *mongo.Database, timeout time.Duration) *MongoPostRepository {
	return &MongoPostRepository{
		collection: db.Collection(postsCollectionName),
		timeout:    timeout,
	}
}

// SavePost writes the whole post document, replacing any previous version.
func (r *MongoPostRepository) SavePost(ctx context.Context, post *models.Post) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now()
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection.ReplaceOne(ctx, bson.M{"_id": post.ID}, post, opts); err != nil {
		return fmt.Errorf("failed to save post %s: %w", post.ID, err)
	}
	return nil
}

// GetPost returns the post with the given id.
func (r *MongoPostRepository) GetPost(ctx context.Context, id string) (*models.Post, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var post models.Post
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&post); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find post %s: %w", id, err)
	}
	return &post, nil
}

// ListRecentPosts returns the newest posts first.
func (r *MongoPostRepository) ListRecentPosts(ctx context.Context, limit int) ([]models.Post, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	findOptions := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to find posts: %w", err)
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, fmt.Errorf("failed to decode posts: %w", err)
	}
	return posts, nil
}

// DeletePost removes the post record.
func (r *MongoPostRepository) DeletePost(ctx context.Context, id string) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete post %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
