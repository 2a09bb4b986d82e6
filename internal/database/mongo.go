package database

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"octofit/internal/config"

	"go.mongodb.org/mongo-driver/event"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoURI builds the connection URI for the configured MongoDB server.
func MongoURI(cfg *config.Config) string {
	u := url.URL{Scheme: "mongodb", Host: Address(cfg)}
	if cfg.DBUser != "" {
		u.User = url.UserPassword(cfg.DBUser, cfg.DBPassword)
	}
	return u.String()
}

// commandMonitor logs driver commands at debug level.
func commandMonitor(log *slog.Logger) *event.CommandMonitor {
	return &event.CommandMonitor{
		Started: func(ctx context.Context, e *event.CommandStartedEvent) {
			log.DebugContext(ctx, "mongo command",
				slog.String("command", e.CommandName),
				slog.String("database", e.DatabaseName),
				slog.Int64("request_id", e.RequestID),
			)
		},
		Failed: func(ctx context.Context, e *event.CommandFailedEvent) {
			log.DebugContext(ctx, "mongo command failed",
				slog.String("command", e.CommandName),
				slog.Duration("elapsed", e.Duration),
				slog.String("error", e.Failure),
			)
		},
	}
}

// OpenMongo connects to MongoDB and verifies the server answers a ping
// before returning the target database.
func OpenMongo(ctx context.Context, cfg *config.Config, log *slog.Logger) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.ConnectTimeout()
	opts := options.Client().
		ApplyURI(MongoURI(cfg)).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout).
		SetMonitor(commandMonitor(log))

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create mongo client: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to ping mongo at %s: %w", Address(cfg), err)
	}

	log.Info("Database connected successfully",
		slog.String("driver", cfg.DBDriver),
		slog.String("address", Address(cfg)),
		slog.String("database", cfg.DBName),
	)
	return client, client.Database(cfg.DBName), nil
}
