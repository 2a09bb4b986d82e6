package repository

import (
	"context"
	"fmt"

	"octofit/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const teamMembersTable = "team_members"

// teamMember mirrors the join table GORM creates for Team.Members.
type teamMember struct {
	TeamID models.ID `gorm:"primaryKey;size:24"`
	UserID models.ID `gorm:"primaryKey;size:24"`
}

func (teamMember) TableName() string { return teamMembersTable }

// gormTables maps each collection to what gets dropped and recreated for it.
// The membership join table belongs to teams.
var gormTables = map[string]struct {
	drop    []interface{}
	migrate []interface{}
}{
	models.CollectionUsers:       {drop: []interface{}{&models.User{}}, migrate: []interface{}{&models.User{}}},
	models.CollectionTeams:       {drop: []interface{}{&teamMember{}, &models.Team{}}, migrate: []interface{}{&models.Team{}}},
	models.CollectionActivity:    {drop: []interface{}{&models.Activity{}}, migrate: []interface{}{&models.Activity{}}},
	models.CollectionLeaderboard: {drop: []interface{}{&models.LeaderboardEntry{}}, migrate: []interface{}{&models.LeaderboardEntry{}}},
	models.CollectionWorkouts:    {drop: []interface{}{&models.Workout{}}, migrate: []interface{}{&models.Workout{}}},
}

// GormStore writes collections as tables of a SQL database.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore returns a Store backed by GORM.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// DB exposes the underlying connection.
func (s *GormStore) DB() *gorm.DB {
	return s.db
}

// Drop drops the collection's tables if present and recreates them empty, so
// the following insert has a schema to write into.
func (s *GormStore) Drop(ctx context.Context, collection string) error {
	tables, ok := gormTables[collection]
	if !ok {
		return unknownCollection(collection)
	}
	migrator := s.db.WithContext(ctx).Migrator()
	if err := migrator.DropTable(tables.drop...); err != nil {
		return fmt.Errorf("drop %s: %w", collection, err)
	}
	if err := migrator.AutoMigrate(tables.migrate...); err != nil {
		return fmt.Errorf("recreate %s: %w", collection, err)
	}
	return nil
}

func (s *GormStore) InsertUsers(ctx context.Context, users []models.User) error {
	return s.db.WithContext(ctx).Create(&users).Error
}

func (s *GormStore) InsertTeam(ctx context.Context, team *models.Team) error {
	return s.db.WithContext(ctx).Omit(clause.Associations).Create(team).Error
}

func (s *GormStore) AddTeamMembers(ctx context.Context, team *models.Team, users []models.User) error {
	members := make([]models.User, len(users))
	copy(members, users)
	return s.db.WithContext(ctx).Model(team).Association("Members").Append(&members)
}

func (s *GormStore) InsertActivities(ctx context.Context, activities []models.Activity) error {
	return s.db.WithContext(ctx).Create(&activities).Error
}

func (s *GormStore) InsertLeaderboard(ctx context.Context, entries []models.LeaderboardEntry) error {
	return s.db.WithContext(ctx).Create(&entries).Error
}

func (s *GormStore) InsertWorkouts(ctx context.Context, workouts []models.Workout) error {
	return s.db.WithContext(ctx).Create(&workouts).Error
}

func (s *GormStore) Count(ctx context.Context, collection string) (int64, error) {
	if _, ok := gormTables[collection]; !ok {
		return 0, unknownCollection(collection)
	}
	var n int64
	err := s.db.WithContext(ctx).Table(collection).Count(&n).Error
	return n, err
}

func (s *GormStore) Close(_ context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
