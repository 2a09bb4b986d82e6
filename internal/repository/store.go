// Package repository implements the data access layer used by the seeder.
package repository

import (
	"context"
	"fmt"
	"log/slog"

	"octofit/internal/config"
	"octofit/internal/database"
	"octofit/internal/models"
)

// Store is the set of primitives the seeder needs from a backing store.
// Implementations are used by a single goroutine.
type Store interface {
	// Drop removes a collection and its contents. Dropping a collection that
	// does not exist succeeds.
	Drop(ctx context.Context, collection string) error
	InsertUsers(ctx context.Context, users []models.User) error
	InsertTeam(ctx context.Context, team *models.Team) error
	// AddTeamMembers records users as members of an already inserted team and
	// appends them to team.Members.
	AddTeamMembers(ctx context.Context, team *models.Team, users []models.User) error
	InsertActivities(ctx context.Context, activities []models.Activity) error
	InsertLeaderboard(ctx context.Context, entries []models.LeaderboardEntry) error
	InsertWorkouts(ctx context.Context, workouts []models.Workout) error
	Count(ctx context.Context, collection string) (int64, error)
	Close(ctx context.Context) error
}

// Open connects to the store selected by cfg.DBDriver.
func Open(ctx context.Context, cfg *config.Config, log *slog.Logger) (Store, error) {
	switch cfg.DBDriver {
	case config.DriverMongo:
		client, db, err := database.OpenMongo(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		return NewMongoStore(client, db), nil
	case config.DriverPostgres, config.DriverSQLite:
		db, err := database.OpenGorm(cfg, log)
		if err != nil {
			return nil, err
		}
		return NewGormStore(db), nil
	default:
		return nil, fmt.Errorf("unsupported driver %q", cfg.DBDriver)
	}
}

func unknownCollection(name string) error {
	return fmt.Errorf("unknown collection %q", name)
}
