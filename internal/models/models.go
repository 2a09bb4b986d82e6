// Package models defines the OctoFit entities written by the seeder.
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Collection names as they appear in the store.
const (
	CollectionUsers       = "users"
	CollectionTeams       = "teams"
	CollectionActivity    = "activity"
	CollectionLeaderboard = "leaderboard"
	CollectionWorkouts    = "workouts"
)

// Collections lists every seeded collection in reset order.
var Collections = []string{
	CollectionUsers,
	CollectionTeams,
	CollectionActivity,
	CollectionLeaderboard,
	CollectionWorkouts,
}

// ID is the hex form of a BSON ObjectID. Document stores persist it as an
// ObjectID, SQL stores as a fixed-width string.
type ID string

// NewID generates a fresh identifier.
func NewID() ID {
	return ID(primitive.NewObjectID().Hex())
}

// ObjectID parses the identifier back into a BSON ObjectID.
func (id ID) ObjectID() (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(string(id))
}

func (id ID) String() string {
	return string(id)
}

// User is an OctoFit account.
type User struct {
	ID       ID     `gorm:"primaryKey;size:24" json:"id"`
	Username string `gorm:"uniqueIndex;size:150;not null" json:"username"`
	Email    string `gorm:"size:254;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`
}

// TableName pins the GORM table to the collection name.
func (User) TableName() string { return CollectionUsers }

// Team groups users. Membership is stored separately from the team row, so a
// freshly inserted team has no members until they are added.
type Team struct {
	ID      ID     `gorm:"primaryKey;size:24" json:"id"`
	Name    string `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Members []User `gorm:"many2many:team_members" json:"members,omitempty"`
}

// TableName pins the GORM table to the collection name.
func (Team) TableName() string { return CollectionTeams }

// MemberIDs returns the identifiers of the team's members.
func (t *Team) MemberIDs() []ID {
	ids := make([]ID, 0, len(t.Members))
	for _, m := range t.Members {
		ids = append(ids, m.ID)
	}
	return ids
}

// Activity is a logged workout session owned by a user.
type Activity struct {
	ID           ID            `gorm:"primaryKey;size:24" json:"id"`
	UserID       ID            `gorm:"size:24;not null;index" json:"user"`
	ActivityType string        `gorm:"size:100;not null" json:"activity_type"`
	Duration     time.Duration `gorm:"not null" json:"duration"`
}

// TableName pins the GORM table to the collection name.
func (Activity) TableName() string { return CollectionActivity }

// LeaderboardEntry is a user's score on the leaderboard.
type LeaderboardEntry struct {
	ID     ID  `gorm:"primaryKey;size:24" json:"id"`
	UserID ID  `gorm:"size:24;not null;index" json:"user"`
	Score  int `gorm:"not null" json:"score"`
}

// TableName pins the GORM table to the collection name.
func (LeaderboardEntry) TableName() string { return CollectionLeaderboard }

// Workout is a suggested training plan. It is not tied to any user.
type Workout struct {
	ID          ID     `gorm:"primaryKey;size:24" json:"id"`
	Name        string `gorm:"size:100;not null" json:"name"`
	Description string `gorm:"not null" json:"description"`
}

// TableName pins the GORM table to the collection name.
func (Workout) TableName() string { return CollectionWorkouts }
