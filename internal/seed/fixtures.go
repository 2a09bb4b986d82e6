package seed

import (
	_ "embed"
	"errors"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed fixtures.yaml
var fixturesYAML []byte

// UserFixture is one sample account.
type UserFixture struct {
	Username string `yaml:"username"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

// ActivityFixture is one sample activity; User indexes Fixtures.Users.
type ActivityFixture struct {
	User     int           `yaml:"user"`
	Type     string        `yaml:"type"`
	Duration time.Duration `yaml:"duration"`
}

// LeaderboardFixture is one sample score; User indexes Fixtures.Users.
type LeaderboardFixture struct {
	User  int `yaml:"user"`
	Score int `yaml:"score"`
}

// WorkoutFixture is one sample workout.
type WorkoutFixture struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// Fixtures is the complete literal data set written by a run.
type Fixtures struct {
	Users       []UserFixture        `yaml:"users"`
	Team        string               `yaml:"team"`
	Activities  []ActivityFixture    `yaml:"activities"`
	Leaderboard []LeaderboardFixture `yaml:"leaderboard"`
	Workouts    []WorkoutFixture     `yaml:"workouts"`
}

// DefaultFixtures parses the embedded sample data.
func DefaultFixtures() (*Fixtures, error) {
	return ParseFixtures(fixturesYAML)
}

// ParseFixtures decodes and validates a fixture document.
func ParseFixtures(data []byte) (*Fixtures, error) {
	var f Fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("invalid fixtures: %w", err)
	}
	return &f, nil
}

// Validate checks that usernames are unique and every reference points at a
// declared user.
func (f *Fixtures) Validate() error {
	if len(f.Users) == 0 {
		return errors.New("no users")
	}
	if f.Team == "" {
		return errors.New("team name is empty")
	}

	seen := make(map[string]struct{}, len(f.Users))
	for i, u := range f.Users {
		if u.Username == "" {
			return fmt.Errorf("user %d has no username", i)
		}
		if _, dup := seen[u.Username]; dup {
			return fmt.Errorf("duplicate username %q", u.Username)
		}
		seen[u.Username] = struct{}{}
	}

	for i, a := range f.Activities {
		if a.User < 0 || a.User >= len(f.Users) {
			return fmt.Errorf("activity %d references user %d of %d", i, a.User, len(f.Users))
		}
		if a.Duration <= 0 {
			return fmt.Errorf("activity %d has non-positive duration", i)
		}
	}
	for i, e := range f.Leaderboard {
		if e.User < 0 || e.User >= len(f.Users) {
			return fmt.Errorf("leaderboard entry %d references user %d of %d", i, e.User, len(f.Users))
		}
	}
	for i, w := range f.Workouts {
		if w.Name == "" {
			return fmt.Errorf("workout %d has no name", i)
		}
	}
	return nil
}
