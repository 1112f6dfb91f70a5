package models

import "time"

type WorkoutStatus string

const (
	WorkoutStatusInProgress WorkoutStatus = "IN_PROGRESS"
	WorkoutStatusCompleted  WorkoutStatus = "COMPLETED"
	WorkoutStatusCancelled  WorkoutStatus = "CANCELLED"
)

func ParseWorkoutStatus(value string) (WorkoutStatus, bool) {
	switch WorkoutStatus(value) {
	case WorkoutStatusInProgress, WorkoutStatusCompleted, WorkoutStatusCancelled:
		return WorkoutStatus(value), true
	default:
		return "", false
	}
}

type Workout struct {
	ID              string        `json:"id"`
	UserID          string        `json:"-"`
	Name            *string       `json:"name"`
	Notes           *string       `json:"notes"`
	Status          WorkoutStatus `json:"status"`
	StartedAt       time.Time     `json:"started_at"`
	FinishedAt      *time.Time    `json:"finished_at"`
	DurationSeconds *int          `json:"duration_seconds"`
	TotalVolume     *float64      `json:"total_volume"`
	TotalSets       *int          `json:"total_sets"`
	TotalReps       *int          `json:"total_reps"`
	Rating          *int          `json:"rating"`
	CreatedAt       time.Time     `json:"created_at"`
}

type WorkoutSet struct {
	ID               string   `json:"id"`
	WorkoutID        string   `json:"workout_id"`
	ExerciseID       string   `json:"exercise_id"`
	SetNumber        int      `json:"set_number"`
	SetType          string   `json:"set_type"`
	Weight           *float64 `json:"weight"`
	Reps             *int     `json:"reps"`
	DurationSeconds  *int     `json:"duration_seconds"`
	RPE              *float64 `json:"rpe"`
	IsPersonalRecord bool     `json:"is_personal_record"`
	Notes            *string  `json:"notes"`
}

type WorkoutDetail struct {
	Workout
	Sets []WorkoutSet `json:"sets"`
}

// WorkoutListItem is the list projection: the workout row plus the count
// of its logged sets. The owning user id is never serialized.
type WorkoutListItem struct {
	Workout
	SetsCompleted int `json:"sets_completed"`
}

// WorkoutCompletion carries every field frozen by the finish transition.
// They are written together in a single update or not at all.
type WorkoutCompletion struct {
	FinishedAt      time.Time
	DurationSeconds int
	TotalVolume     float64
	TotalSets       int
	TotalReps       int
	Rating          *int
}

type SessionSummary struct {
	TotalSets   int     `json:"total_sets"`
	TotalReps   int     `json:"total_reps"`
	TotalVolume float64 `json:"total_volume"`
}

type LifetimeStats struct {
	TotalWorkouts int     `json:"total_workouts"`
	TotalVolume   float64 `json:"total_volume"`
	TotalSets     int     `json:"total_sets"`
}

type PaginationMeta struct {
	Limit      int     `json:"limit"`
	NextCursor *string `json:"next_cursor"`
	HasMore    bool    `json:"has_more"`
}
