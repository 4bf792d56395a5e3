package database

import (
	"context"
	"fmt"
	"time"

	"channelpost-bot/internal/database/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoAdminRepository implements AdminRepository for MongoDB.
type MongoAdminRepository struct {
	collection *mongo.Collection
	timeout    time.Duration
}

// NewMongoAdminRepository creates an admin repository. Every call is bounded by timeout.
func NewMongoAdminRepository(db *mongo.Database, timeout time.Duration) *MongoAdminRepository {
	return &MongoAdminRepository{
		collection: db.Collection(adminsCollectionName),
		timeout:    timeout,
	}
}

// EnsureOwner reasserts the owner row. Running it twice changes nothing.
func (r *MongoAdminRepository) EnsureOwner(ctx context.Context, ownerID int64) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	stale := bson.M{"_id": bson.M{"$ne": ownerID}, "name": models.OwnerName}
	if _, err := r.collection.UpdateMany(ctx, stale, bson.M{"$unset": bson.M{"name": ""}}); err != nil {
		return fmt.Errorf("failed to clear stale owner label: %w", err)
	}

	update := bson.M{
		"$set":         bson.M{"name": models.OwnerName},
		"$setOnInsert": bson.M{"added_at": time.Now()},
	}
	opts := options.Update().SetUpsert(true)
	if _, err := r.collection.UpdateOne(ctx, bson.M{"_id": ownerID}, update, opts); err != nil {
		return fmt.Errorf("failed to upsert owner %d: %w", ownerID, err)
	}
	return nil
}

// AddAdmin inserts the admin or refreshes its username and name snapshot.
func (r *MongoAdminRepository) AddAdmin(ctx context.Context, admin *models.Admin) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	if admin.AddedAt.IsZero() {
		admin.AddedAt = time.Now()
	}
	update := bson.M{
		"$set": bson.M{
			"username": admin.Username,
			"name":     admin.Name,
		},
		"$setOnInsert": bson.M{
			"added_by": admin.AddedBy,
			"added_at": admin.AddedAt,
		},
	}
	opts := options.Update().SetUpsert(true)
	if _, err := r.collection.UpdateOne(ctx, bson.M{"_id": admin.UserID}, update, opts); err != nil {
		return fmt.Errorf("failed to add admin %d: %w", admin.UserID, err)
	}
	return nil
}

// SeedAdmin inserts the admin only when no row exists for that user.
func (r *MongoAdminRepository) SeedAdmin(ctx context.Context, admin *models.Admin) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	if admin.AddedAt.IsZero() {
		admin.AddedAt = time.Now()
	}
	update := bson.M{"$setOnInsert": bson.M{
		"username": admin.Username,
		"name":     admin.Name,
		"added_by": admin.AddedBy,
		"added_at": admin.AddedAt,
	}}
	opts := options.Update().SetUpsert(true)
	if _, err := r.collection.UpdateOne(ctx, bson.M{"_id": admin.UserID}, update, opts); err != nil {
		return fmt.Errorf("failed to seed admin %d: %w", admin.UserID, err)
	}
	return nil
}

// IsAdmin reports whether the user has an admin row.
func (r *MongoAdminRepository) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": userID}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check admin %d: %w", userID, err)
	}
	return count > 0, nil
}

// ListAdmins returns every admin ordered by user id.
func (r *MongoAdminRepository) ListAdmins(ctx context.Context) ([]models.Admin, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find admins: %w", err)
	}
	defer cursor.Close(ctx)

	admins := []models.Admin{}
	if err = cursor.All(ctx, &admins); err != nil {
		return nil, fmt.Errorf("failed to decode admins: %w", err)
	}
	return admins, nil
}

// RemoveAdmin deletes the admin row.
func (r *MongoAdminRepository) RemoveAdmin(ctx context.Context, userID int64) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": userID})
	if err != nil {
		return fmt.Errorf("failed to delete admin %d: %w", userID, err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
