package repository

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"octofit/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupSQLiteStore(t *testing.T) *GormStore {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "octofit.db")), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)
	store := NewGormStore(db)
	t.Cleanup(func() { _ = store.Close(context.Background()) })
	return store
}

// setupMockStore creates a GormStore backed by sqlmock for failure paths.
func setupMockStore(t *testing.T) (*GormStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return NewGormStore(gormDB), mock
}

func resetAll(t *testing.T, store Store) {
	t.Helper()
	for _, c := range models.Collections {
		require.NoError(t, store.Drop(context.Background(), c))
	}
}

func sampleUsers(n int) []models.User {
	users := make([]models.User, 0, n)
	for i := 0; i < n; i++ {
		users = append(users, models.User{
			ID:       models.NewID(),
			Username: "user" + string(rune('a'+i)),
			Email:    "user" + string(rune('a'+i)) + "@mhigh.edu",
			Password: "secret",
		})
	}
	return users
}

func TestGormStore_DropMissingCollectionSucceeds(t *testing.T) {
	store := setupSQLiteStore(t)
	ctx := context.Background()

	for _, c := range models.Collections {
		require.NoError(t, store.Drop(ctx, c), "drop %s", c)
		n, err := store.Count(ctx, c)
		require.NoError(t, err)
		assert.Zero(t, n)
	}
	assert.True(t, store.DB().Migrator().HasTable(teamMembersTable))
}

func TestGormStore_DropClearsRows(t *testing.T) {
	store := setupSQLiteStore(t)
	ctx := context.Background()
	resetAll(t, store)

	require.NoError(t, store.InsertUsers(ctx, sampleUsers(3)))
	n, err := store.Count(ctx, models.CollectionUsers)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	require.NoError(t, store.Drop(ctx, models.CollectionUsers))
	n, err = store.Count(ctx, models.CollectionUsers)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestGormStore_UnknownCollection(t *testing.T) {
	store := setupSQLiteStore(t)
	assert.ErrorContains(t, store.Drop(context.Background(), "posts"), `unknown collection "posts"`)
	_, err := store.Count(context.Background(), "posts")
	assert.Error(t, err)
}

func TestGormStore_InsertAndMembership(t *testing.T) {
	store := setupSQLiteStore(t)
	ctx := context.Background()
	resetAll(t, store)

	users := sampleUsers(5)
	require.NoError(t, store.InsertUsers(ctx, users))

	team := &models.Team{ID: models.NewID(), Name: "Blue Team"}
	require.NoError(t, store.InsertTeam(ctx, team))
	require.NoError(t, store.AddTeamMembers(ctx, team, users))
	assert.Len(t, team.Members, 5)

	var memberIDs []models.ID
	require.NoError(t, store.DB().Table(teamMembersTable).Where("team_id = ?", team.ID).Pluck("user_id", &memberIDs).Error)
	assert.ElementsMatch(t, []models.ID{users[0].ID, users[1].ID, users[2].ID, users[3].ID, users[4].ID}, memberIDs)

	n, err := store.Count(ctx, models.CollectionUsers)
	require.NoError(t, err)
	assert.EqualValues(t, 5, n, "adding members must not duplicate users")

	require.NoError(t, store.InsertActivities(ctx, []models.Activity{
		{ID: models.NewID(), UserID: users[0].ID, ActivityType: "Cycling", Duration: time.Hour},
	}))
	var activity models.Activity
	require.NoError(t, store.DB().First(&activity).Error)
	assert.Equal(t, time.Hour, activity.Duration)
	assert.Equal(t, users[0].ID, activity.UserID)

	require.NoError(t, store.InsertLeaderboard(ctx, []models.LeaderboardEntry{
		{ID: models.NewID(), UserID: users[1].ID, Score: 90},
	}))
	require.NoError(t, store.InsertWorkouts(ctx, []models.Workout{
		{ID: models.NewID(), Name: "Crossfit", Description: "Training for a crossfit competition"},
	}))

	for collection, want := range map[string]int64{
		models.CollectionTeams:       1,
		models.CollectionActivity:    1,
		models.CollectionLeaderboard: 1,
		models.CollectionWorkouts:    1,
	} {
		n, err := store.Count(ctx, collection)
		require.NoError(t, err)
		assert.Equal(t, want, n, collection)
	}
}

func TestGormStore_DropTeamsClearsMembership(t *testing.T) {
	store := setupSQLiteStore(t)
	ctx := context.Background()
	resetAll(t, store)

	users := sampleUsers(2)
	require.NoError(t, store.InsertUsers(ctx, users))
	team := &models.Team{ID: models.NewID(), Name: "Blue Team"}
	require.NoError(t, store.InsertTeam(ctx, team))
	require.NoError(t, store.AddTeamMembers(ctx, team, users))

	require.NoError(t, store.Drop(ctx, models.CollectionTeams))

	var rows int64
	require.NoError(t, store.DB().Table(teamMembersTable).Count(&rows).Error)
	assert.Zero(t, rows)
}

func TestGormStore_DropFailure(t *testing.T) {
	store, mock := setupMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`DROP TABLE IF EXISTS "users" CASCADE`)).
		WillReturnError(errors.New("permission denied for table users"))

	err := store.Drop(context.Background(), models.CollectionUsers)
	assert.ErrorContains(t, err, "drop users")
	assert.ErrorContains(t, err, "permission denied")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_InsertFailure(t *testing.T) {
	store, mock := setupMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "workouts"`)).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := store.InsertWorkouts(context.Background(), []models.Workout{
		{ID: models.NewID(), Name: "Crossfit", Description: "Training for a crossfit competition"},
	})
	assert.ErrorContains(t, err, "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}
