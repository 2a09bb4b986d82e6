package repository

import (
	"context"
	"errors"
	"fmt"

	"octofit/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// namespaceNotFound is the server error code for a missing collection.
const namespaceNotFound = 26

type userDocument struct {
	ID       primitive.ObjectID `bson:"_id"`
	Username string             `bson:"username"`
	Email    string             `bson:"email"`
	Password string             `bson:"password"`
}

type teamDocument struct {
	ID      primitive.ObjectID   `bson:"_id"`
	Name    string               `bson:"name"`
	Members []primitive.ObjectID `bson:"members"`
}

type activityDocument struct {
	ID           primitive.ObjectID `bson:"_id"`
	User         primitive.ObjectID `bson:"user"`
	ActivityType string             `bson:"activity_type"`
	Duration     int64              `bson:"duration"`
}

type leaderboardDocument struct {
	ID    primitive.ObjectID `bson:"_id"`
	User  primitive.ObjectID `bson:"user"`
	Score int                `bson:"score"`
}

type workoutDocument struct {
	ID          primitive.ObjectID `bson:"_id"`
	Name        string             `bson:"name"`
	Description string             `bson:"description"`
}

// MongoStore writes collections into a MongoDB database.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongoStore returns a Store backed by the given database.
func NewMongoStore(client *mongo.Client, db *mongo.Database) *MongoStore {
	return &MongoStore{client: client, db: db}
}

// Database exposes the underlying database handle.
func (s *MongoStore) Database() *mongo.Database {
	return s.db
}

func isNamespaceNotFound(err error) bool {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Code == namespaceNotFound || cmdErr.Name == "NamespaceNotFound"
	}
	return false
}

func (s *MongoStore) Drop(ctx context.Context, collection string) error {
	if !knownCollection(collection) {
		return unknownCollection(collection)
	}
	if err := s.db.Collection(collection).Drop(ctx); err != nil && !isNamespaceNotFound(err) {
		return fmt.Errorf("drop %s: %w", collection, err)
	}
	return nil
}

func (s *MongoStore) insertMany(ctx context.Context, collection string, docs []interface{}) error {
	_, err := s.db.Collection(collection).InsertMany(ctx, docs)
	return err
}

func (s *MongoStore) InsertUsers(ctx context.Context, users []models.User) error {
	docs, err := userDocuments(users)
	if err != nil {
		return err
	}
	return s.insertMany(ctx, models.CollectionUsers, docs)
}

func (s *MongoStore) InsertTeam(ctx context.Context, team *models.Team) error {
	doc, err := newTeamDocument(team)
	if err != nil {
		return err
	}
	_, err = s.db.Collection(models.CollectionTeams).InsertOne(ctx, doc)
	return err
}

func (s *MongoStore) AddTeamMembers(ctx context.Context, team *models.Team, users []models.User) error {
	teamID, err := team.ID.ObjectID()
	if err != nil {
		return fmt.Errorf("team id %q: %w", team.ID, err)
	}
	memberIDs, err := objectIDs(users)
	if err != nil {
		return err
	}

	update := bson.D{{Key: "$addToSet", Value: bson.D{
		{Key: "members", Value: bson.D{{Key: "$each", Value: memberIDs}}},
	}}}
	res, err := s.db.Collection(models.CollectionTeams).UpdateByID(ctx, teamID, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("team %s not found", team.ID)
	}

	team.Members = append(team.Members, users...)
	return nil
}

func (s *MongoStore) InsertActivities(ctx context.Context, activities []models.Activity) error {
	docs, err := activityDocuments(activities)
	if err != nil {
		return err
	}
	return s.insertMany(ctx, models.CollectionActivity, docs)
}

func (s *MongoStore) InsertLeaderboard(ctx context.Context, entries []models.LeaderboardEntry) error {
	docs, err := leaderboardDocuments(entries)
	if err != nil {
		return err
	}
	return s.insertMany(ctx, models.CollectionLeaderboard, docs)
}

func (s *MongoStore) InsertWorkouts(ctx context.Context, workouts []models.Workout) error {
	docs, err := workoutDocuments(workouts)
	if err != nil {
		return err
	}
	return s.insertMany(ctx, models.CollectionWorkouts, docs)
}

func (s *MongoStore) Count(ctx context.Context, collection string) (int64, error) {
	if !knownCollection(collection) {
		return 0, unknownCollection(collection)
	}
	return s.db.Collection(collection).CountDocuments(ctx, bson.D{})
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func knownCollection(name string) bool {
	for _, c := range models.Collections {
		if c == name {
			return true
		}
	}
	return false
}

func objectID(id models.ID) (primitive.ObjectID, error) {
	oid, err := id.ObjectID()
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("id %q: %w", id, err)
	}
	return oid, nil
}

func objectIDs(users []models.User) ([]primitive.ObjectID, error) {
	ids := make([]primitive.ObjectID, 0, len(users))
	for _, u := range users {
		oid, err := objectID(u.ID)
		if err != nil {
			return nil, err
		}
		ids = append(ids, oid)
	}
	return ids, nil
}

func userDocuments(users []models.User) ([]interface{}, error) {
	docs := make([]interface{}, 0, len(users))
	for _, u := range users {
		oid, err := objectID(u.ID)
		if err != nil {
			return nil, err
		}
		docs = append(docs, userDocument{ID: oid, Username: u.Username, Email: u.Email, Password: u.Password})
	}
	return docs, nil
}

func newTeamDocument(team *models.Team) (teamDocument, error) {
	oid, err := objectID(team.ID)
	if err != nil {
		return teamDocument{}, err
	}
	members, err := objectIDs(team.Members)
	if err != nil {
		return teamDocument{}, err
	}
	return teamDocument{ID: oid, Name: team.Name, Members: members}, nil
}

func activityDocuments(activities []models.Activity) ([]interface{}, error) {
	docs := make([]interface{}, 0, len(activities))
	for _, a := range activities {
		oid, err := objectID(a.ID)
		if err != nil {
			return nil, err
		}
		user, err := objectID(a.UserID)
		if err != nil {
			return nil, err
		}
		docs = append(docs, activityDocument{ID: oid, User: user, ActivityType: a.ActivityType, Duration: int64(a.Duration)})
	}
	return docs, nil
}

func leaderboardDocuments(entries []models.LeaderboardEntry) ([]interface{}, error) {
	docs := make([]interface{}, 0, len(entries))
	for _, e := range entries {
		oid, err := objectID(e.ID)
		if err != nil {
			return nil, err
		}
		user, err := objectID(e.UserID)
		if err != nil {
			return nil, err
		}
		docs = append(docs, leaderboardDocument{ID: oid, User: user, Score: e.Score})
	}
	return docs, nil
}

func workoutDocuments(workouts []models.Workout) ([]interface{}, error) {
	docs := make([]interface{}, 0, len(workouts))
	for _, w := range workouts {
		oid, err := objectID(w.ID)
		if err != nil {
			return nil, err
		}
		docs = append(docs, workoutDocument{ID: oid, Name: w.Name, Description: w.Description})
	}
	return docs, nil
}
