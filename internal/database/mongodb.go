package database

import (
	"context"
	"fmt"

	"channelpost-bot/internal/config"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnectDB establishes a connection to MongoDB and pings it.
// It returns the client, the configured database and an error if connection fails.
func ConnectDB(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*mongo.Client, *mongo.Database, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	opts := options.Client().
		ApplyURI(cfg.MongoDBURI).
		SetServerAPIOptions(serverAPI).
		SetTimeout(cfg.StorageTimeout)

	connectCtx, cancel := withTimeout(ctx, cfg.StorageTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	var result bson.M
	if err := client.Database("admin").RunCommand(connectCtx, bson.D{{Key: "ping", Value: 1}}).Decode(&result); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	logger.Info().Str("database", cfg.MongoDBDatabase).Msg("Connected to MongoDB")

	return client, client.Database(cfg.MongoDBDatabase), nil
}

// EnsureIndexes creates the indexes the repositories rely on. It is idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string]mongo.IndexModel{
		jobsCollectionName: {
			Keys:    bson.D{{Key: "run_at", Value: 1}},
			Options: options.Index().SetName("run_at_1"),
		},
		postsCollectionName: {
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("created_at_-1"),
		},
	}
	for collection, model := range indexes {
		if _, err := db.Collection(collection).Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("failed to create index on %s: %w", collection, err)
		}
	}
	return nil
}
