// Package cache clears OctoFit application cache entries made stale by a seeder run.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces every key the OctoFit application caches.
const KeyPrefix = "octofit:"

const scanBatch = 100

// Key builds a cache key under KeyPrefix, e.g. Key("leaderboard") or
// Key("user", id).
func Key(parts ...string) string {
	return KeyPrefix + strings.Join(parts, ":")
}

// Invalidator deletes cached application data after the store was reseeded.
type Invalidator struct {
	client *redis.Client
	logger *slog.Logger
}

// NewInvalidator creates an Invalidator for the given address or redis:// URL
// and checks the server answers.
func NewInvalidator(ctx context.Context, addr string, logger *slog.Logger) (*Invalidator, error) {
	var opts *redis.Options
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL %q: %w", addr, err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: addr}
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	logger.Info("Redis connected successfully", slog.String("address", opts.Addr))
	return &Invalidator{client: client, logger: logger}, nil
}

// NewInvalidatorWithClient wraps an existing client.
func NewInvalidatorWithClient(client *redis.Client, logger *slog.Logger) *Invalidator {
	return &Invalidator{client: client, logger: logger}
}

// Invalidate deletes every key under KeyPrefix and returns how many were removed.
func (i *Invalidator) Invalidate(ctx context.Context) (int64, error) {
	var deleted int64
	iter := i.client.Scan(ctx, 0, KeyPrefix+"*", scanBatch).Iterator()

	batch := make([]string, 0, scanBatch)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := i.client.Del(ctx, batch...).Result()
		if err != nil {
			return err
		}
		deleted += n
		batch = batch[:0]
		return nil
	}

	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == scanBatch {
			if err := flush(); err != nil {
				return deleted, fmt.Errorf("delete cached keys: %w", err)
			}
		}
	}
	if err := iter.Err(); err != nil {
		return deleted, fmt.Errorf("scan cached keys: %w", err)
	}
	if err := flush(); err != nil {
		return deleted, fmt.Errorf("delete cached keys: %w", err)
	}

	i.logger.InfoContext(ctx, "Application cache invalidated", slog.Int64("keys", deleted))
	return deleted, nil
}

// Close releases the Redis connection.
func (i *Invalidator) Close() error {
	return i.client.Close()
}
