package seed

import "fmt"

// Stage names reported by SeedError.
const (
	StageUsers       = "users"
	StageTeams       = "teams"
	StageActivities  = "activities"
	StageLeaderboard = "leaderboard"
	StageWorkouts    = "workouts"
)

// ConnectionError reports that the store could not be reached. Nothing has
// been dropped when it is returned.
type ConnectionError struct {
	Address string
	Err     error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connect to %s: %v", e.Address, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// ResetError reports that dropping a collection failed. Collections after it
// in reset order were left untouched.
type ResetError struct {
	Collection string
	Err        error
}

func (e *ResetError) Error() string {
	return fmt.Sprintf("reset collection %s: %v", e.Collection, e.Err)
}

func (e *ResetError) Unwrap() error { return e.Err }

// SeedError reports that inserting the data of a stage failed.
type SeedError struct {
	Stage string
	Err   error
}

func (e *SeedError) Error() string {
	return fmt.Sprintf("seed %s: %v", e.Stage, e.Err)
}

func (e *SeedError) Unwrap() error { return e.Err }
