//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"octofit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func setupMongoStore(t *testing.T) *MongoStore {
	t.Helper()
	ctx := context.Background()

	container, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)

	store := NewMongoStore(client, client.Database("octofit_test"))
	t.Cleanup(func() { _ = store.Close(context.Background()) })
	return store
}

func TestMongoStore_Integration(t *testing.T) {
	store := setupMongoStore(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	resetAll(t, store)

	users := sampleUsers(5)
	require.NoError(t, store.InsertUsers(ctx, users))

	team := &models.Team{ID: models.NewID(), Name: "Blue Team"}
	require.NoError(t, store.InsertTeam(ctx, team))
	require.NoError(t, store.AddTeamMembers(ctx, team, users))

	var stored struct {
		Members []primitive.ObjectID `bson:"members"`
	}
	teamID, err := team.ID.ObjectID()
	require.NoError(t, err)
	require.NoError(t, store.Database().Collection(models.CollectionTeams).
		FindOne(ctx, bson.D{{Key: "_id", Value: teamID}}).Decode(&stored))

	var got []string
	for _, m := range stored.Members {
		got = append(got, m.Hex())
	}
	var want []string
	for _, u := range users {
		want = append(want, u.ID.String())
	}
	assert.ElementsMatch(t, want, got)

	n, err := store.Count(ctx, models.CollectionUsers)
	require.NoError(t, err)
	assert.EqualValues(t, 5, n)

	require.NoError(t, store.Drop(ctx, models.CollectionUsers))
	require.NoError(t, store.Drop(ctx, models.CollectionUsers), "dropping a missing collection succeeds")
	n, err = store.Count(ctx, models.CollectionUsers)
	require.NoError(t, err)
	assert.Zero(t, n)
}
