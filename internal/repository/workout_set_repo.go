package repository

import (
	"context"

	"github.com/BogdanProkudin/Liftly-back/internal/models"
)

type WorkoutSetRepository struct {
	db DBTX
}

func NewWorkoutSetRepository(db DBTX) *WorkoutSetRepository {
	return &WorkoutSetRepository{db: db}
}

func (r *WorkoutSetRepository) ListByWorkout(ctx context.Context, workoutID string) ([]models.WorkoutSet, error) {
	query := `
		SELECT id, workout_id, exercise_id, set_number, set_type, weight, reps,
			   duration_seconds, rpe, is_personal_record, notes
		FROM workout_sets
		WHERE workout_id = $1
		ORDER BY set_number ASC
	`

	rows, err := r.db.Query(ctx, query, workoutID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sets := make([]models.WorkoutSet, 0)
	for rows.Next() {
		var set models.WorkoutSet
		if err := rows.Scan(
			&set.ID,
			&set.WorkoutID,
			&set.ExerciseID,
			&set.SetNumber,
			&set.SetType,
			&set.Weight,
			&set.Reps,
			&set.DurationSeconds,
			&set.RPE,
			&set.IsPersonalRecord,
			&set.Notes,
		); err != nil {
			return nil, err
		}
		sets = append(sets, set)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sets, nil
}

// SessionSummary aggregates the session's sets in one round trip. Volume
// is summed as weight*reps per row in SQL, so there is no intermediate
// rounding, and an empty session yields zeros rather than nulls.
func (r *WorkoutSetRepository) SessionSummary(ctx context.Context, workoutID string) (models.SessionSummary, error) {
	query := `
		SELECT COUNT(*),
			   COALESCE(SUM(reps), 0),
			   COALESCE(SUM(COALESCE(weight, 0) * COALESCE(reps, 0)), 0)
		FROM workout_sets
		WHERE workout_id = $1
	`

	var summary models.SessionSummary
	if err := r.db.QueryRow(ctx, query, workoutID).Scan(
		&summary.TotalSets,
		&summary.TotalReps,
		&summary.TotalVolume,
	); err != nil {
		return models.SessionSummary{}, err
	}
	return summary, nil
}

func (r *WorkoutSetRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM workout_sets s
		JOIN workouts w ON w.id = s.workout_id
		WHERE w.user_id = $1
	`

	var count int
	if err := r.db.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
