// Package seed resets the OctoFit collections and repopulates them with
// fixed sample data.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"octofit/internal/models"
	"octofit/internal/observability"
	"octofit/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Opener connects to the store a run writes to.
type Opener func(ctx context.Context) (repository.Store, error)

// CacheInvalidator drops application cache entries made stale by a run.
type CacheInvalidator interface {
	Invalidate(ctx context.Context) (int64, error)
}

// Options configures a Seeder.
type Options struct {
	// Address names the store in connection errors and logs.
	Address string
	// HashPasswords stores bcrypt hashes instead of the fixture passwords.
	HashPasswords bool
	BcryptCost    int
	// Fixtures overrides the embedded sample data.
	Fixtures *Fixtures
	Metrics  *observability.SeedMetrics
	Cache    CacheInvalidator
}

// Report summarizes a successful run.
type Report struct {
	RunID                string
	Counts               map[string]int64
	Elapsed              time.Duration
	CacheKeysInvalidated int64
}

// Seeder runs the reset-and-populate pipeline.
type Seeder struct {
	open   Opener
	logger *slog.Logger
	opts   Options
}

// NewSeeder creates a Seeder. The logger is used for every message of every run.
func NewSeeder(open Opener, logger *slog.Logger, opts Options) *Seeder {
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	return &Seeder{open: open, logger: logger, opts: opts}
}

// runState is what the stages of one run share.
type runState struct {
	store    repository.Store
	fixtures *Fixtures
	users    []models.User
	team     *models.Team
}

type stage struct {
	name    string
	start   string
	done    string
	failure string
	run     func(ctx context.Context, sl *observability.StageLogger, st *runState) error
}

func (s *Seeder) stages() []stage {
	return []stage{
		{"reset", "Dropping existing collections...", "Dropped existing collections.", "Error dropping collections", s.reset},
		{StageUsers, "Creating users...", "Created users successfully.", "Error creating users", s.seedUsers},
		{StageTeams, "Creating teams...", "Created team successfully.", "Error creating teams", s.seedTeam},
		{StageActivities, "Creating activities...", "Created activities successfully.", "Error creating activities", s.seedActivities},
		{StageLeaderboard, "Creating leaderboard entries...", "Created leaderboard entries successfully.", "Error creating leaderboard entries", s.seedLeaderboard},
		{StageWorkouts, "Creating workouts...", "Created workouts successfully.", "Error creating workouts", s.seedWorkouts},
	}
}

// Run connects, drops the five collections and inserts the sample data. It
// stops at the first failing step and returns a *ConnectionError,
// *ResetError or *SeedError. Nothing is rolled back.
func (s *Seeder) Run(ctx context.Context) (*Report, error) {
	runID := uuid.NewString()
	ctx = observability.WithRunID(ctx, runID)
	span, ctx := observability.NewSpan(ctx, "seed.run")
	defer span.End()
	began := time.Now()

	fixtures, err := s.fixtures()
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	s.logger.InfoContext(ctx, "Connecting to store...",
		slog.String("address", s.opts.Address),
		slog.String("run_id", runID),
	)
	store, err := s.connect(ctx)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	defer func() {
		if err := store.Close(context.WithoutCancel(ctx)); err != nil {
			s.logger.WarnContext(ctx, "Failed to close store", slog.String("error", err.Error()))
		}
	}()

	st := &runState{store: store, fixtures: fixtures}
	for _, stg := range s.stages() {
		if err := s.runStage(ctx, stg, st); err != nil {
			span.SetError(err)
			return nil, err
		}
	}

	report := &Report{
		RunID:  runID,
		Counts: s.counts(ctx, store),
	}
	if s.opts.Cache != nil {
		n, err := s.opts.Cache.Invalidate(ctx)
		if err != nil {
			s.logger.WarnContext(ctx, "Failed to invalidate application cache",
				slog.String("run_id", runID),
				slog.String("error", err.Error()),
			)
		}
		report.CacheKeysInvalidated = n
	}
	report.Elapsed = time.Since(began)
	s.opts.Metrics.MarkSuccess(time.Now())

	s.logger.InfoContext(ctx, "Successfully populated the database with test data.",
		slog.String("run_id", runID),
		slog.Duration("elapsed", report.Elapsed),
	)
	return report, nil
}

func (s *Seeder) fixtures() (*Fixtures, error) {
	if s.opts.Fixtures == nil {
		return DefaultFixtures()
	}
	if err := s.opts.Fixtures.Validate(); err != nil {
		return nil, fmt.Errorf("invalid fixtures: %w", err)
	}
	return s.opts.Fixtures, nil
}

func (s *Seeder) connect(ctx context.Context) (repository.Store, error) {
	began := time.Now()
	store, err := s.open(ctx)
	s.opts.Metrics.ObserveStage("connect", time.Since(began), err)
	if err != nil {
		err = &ConnectionError{Address: s.opts.Address, Err: err}
		s.logger.ErrorContext(ctx, "Error connecting to store",
			slog.String("run_id", observability.ExtractRunID(ctx)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	return store, nil
}

func (s *Seeder) runStage(ctx context.Context, stg stage, st *runState) error {
	sl := observability.NewStageLogger(s.logger, stg.name)
	span, ctx := observability.NewSpan(ctx, "seed."+stg.name)
	defer span.End()

	sl.Start(ctx, stg.start)
	began := time.Now()
	err := stg.run(ctx, sl, st)
	s.opts.Metrics.ObserveStage(stg.name, time.Since(began), err)
	if err != nil {
		sl.Error(ctx, stg.failure, err)
		span.SetError(err)
		return err
	}
	sl.Step(ctx, stg.done)
	return nil
}

func (s *Seeder) reset(ctx context.Context, sl *observability.StageLogger, st *runState) error {
	for _, c := range models.Collections {
		if err := st.store.Drop(ctx, c); err != nil {
			return &ResetError{Collection: c, Err: err}
		}
		sl.Step(ctx, fmt.Sprintf("Dropped %s collection.", c), slog.String("collection", c))
	}
	return nil
}

func (s *Seeder) seedUsers(ctx context.Context, _ *observability.StageLogger, st *runState) error {
	users := make([]models.User, 0, len(st.fixtures.Users))
	for _, f := range st.fixtures.Users {
		password := f.Password
		if s.opts.HashPasswords {
			hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.opts.BcryptCost)
			if err != nil {
				return &SeedError{Stage: StageUsers, Err: fmt.Errorf("hash password for %s: %w", f.Username, err)}
			}
			password = string(hashed)
		}
		users = append(users, models.User{
			ID:       models.NewID(),
			Username: f.Username,
			Email:    f.Email,
			Password: password,
		})
	}

	if err := st.store.InsertUsers(ctx, users); err != nil {
		return &SeedError{Stage: StageUsers, Err: err}
	}
	s.opts.Metrics.AddDocuments(models.CollectionUsers, len(users))
	st.users = users
	return nil
}

func (s *Seeder) seedTeam(ctx context.Context, sl *observability.StageLogger, st *runState) error {
	team := &models.Team{ID: models.NewID(), Name: st.fixtures.Team}
	if err := st.store.InsertTeam(ctx, team); err != nil {
		return &SeedError{Stage: StageTeams, Err: err}
	}
	if err := st.store.AddTeamMembers(ctx, team, st.users); err != nil {
		return &SeedError{Stage: StageTeams, Err: fmt.Errorf("add members to %s: %w", team.Name, err)}
	}
	for _, u := range st.users {
		sl.Step(ctx, "Added user to team.", slog.String("username", u.Username), slog.String("team", team.Name))
	}
	s.opts.Metrics.AddDocuments(models.CollectionTeams, 1)
	st.team = team
	return nil
}

func (s *Seeder) seedActivities(ctx context.Context, _ *observability.StageLogger, st *runState) error {
	activities := make([]models.Activity, 0, len(st.fixtures.Activities))
	for _, f := range st.fixtures.Activities {
		activities = append(activities, models.Activity{
			ID:           models.NewID(),
			UserID:       st.users[f.User].ID,
			ActivityType: f.Type,
			Duration:     f.Duration,
		})
	}
	if err := st.store.InsertActivities(ctx, activities); err != nil {
		return &SeedError{Stage: StageActivities, Err: err}
	}
	s.opts.Metrics.AddDocuments(models.CollectionActivity, len(activities))
	return nil
}

func (s *Seeder) seedLeaderboard(ctx context.Context, _ *observability.StageLogger, st *runState) error {
	entries := make([]models.LeaderboardEntry, 0, len(st.fixtures.Leaderboard))
	for _, f := range st.fixtures.Leaderboard {
		entries = append(entries, models.LeaderboardEntry{
			ID:     models.NewID(),
			UserID: st.users[f.User].ID,
			Score:  f.Score,
		})
	}
	if err := st.store.InsertLeaderboard(ctx, entries); err != nil {
		return &SeedError{Stage: StageLeaderboard, Err: err}
	}
	s.opts.Metrics.AddDocuments(models.CollectionLeaderboard, len(entries))
	return nil
}

func (s *Seeder) seedWorkouts(ctx context.Context, _ *observability.StageLogger, st *runState) error {
	workouts := make([]models.Workout, 0, len(st.fixtures.Workouts))
	for _, f := range st.fixtures.Workouts {
		workouts = append(workouts, models.Workout{
			ID:          models.NewID(),
			Name:        f.Name,
			Description: f.Description,
		})
	}
	if err := st.store.InsertWorkouts(ctx, workouts); err != nil {
		return &SeedError{Stage: StageWorkouts, Err: err}
	}
	s.opts.Metrics.AddDocuments(models.CollectionWorkouts, len(workouts))
	return nil
}

// counts reads back collection sizes for the report. Failures are logged,
// not returned: the data is already written.
func (s *Seeder) counts(ctx context.Context, store repository.Store) map[string]int64 {
	counts := make(map[string]int64, len(models.Collections))
	for _, c := range models.Collections {
		n, err := store.Count(ctx, c)
		if err != nil {
			s.logger.WarnContext(ctx, "Failed to count collection",
				slog.String("collection", c),
				slog.String("error", err.Error()),
			)
			continue
		}
		counts[c] = n
		s.logger.InfoContext(ctx, "Collection populated",
			slog.String("collection", c),
			slog.Int64("documents", n),
			slog.String("run_id", observability.ExtractRunID(ctx)),
		)
	}
	return counts
}
