package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/BogdanProkudin/Liftly-back/internal/models"
)

const workoutColumns = `id, user_id, name, notes, status, started_at, finished_at,
		   duration_seconds, total_volume, total_sets, total_reps, rating, created_at`

type CreateWorkoutInput struct {
	UserID string
	Name   *string
	Notes  *string
}

// ListCursor is the resolved position of the last-seen row. Listing is
// ordered by (created_at DESC, id DESC), so the pair identifies a unique
// point in the scan even when timestamps collide.
type ListCursor struct {
	CreatedAt time.Time
	ID        string
}

type WorkoutListFilter struct {
	UserID string
	Status *models.WorkoutStatus
	After  *ListCursor
	Limit  int
}

type WorkoutRepository struct {
	db DBTX
}

func NewWorkoutRepository(db DBTX) *WorkoutRepository {
	return &WorkoutRepository{db: db}
}

func (r *WorkoutRepository) Create(ctx context.Context, input CreateWorkoutInput) (*models.Workout, error) {
	query := fmt.Sprintf(`
		INSERT INTO workouts (user_id, name, notes, status, started_at)
		VALUES ($1, $2, $3, 'IN_PROGRESS', NOW())
		RETURNING %s
	`, workoutColumns)

	return r.scanWorkout(r.db.QueryRow(ctx, query, input.UserID, input.Name, input.Notes))
}

func (r *WorkoutRepository) GetByID(ctx context.Context, workoutID string) (*models.Workout, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM workouts
		WHERE id = $1
	`, workoutColumns)

	return r.scanWorkout(r.db.QueryRow(ctx, query, workoutID))
}

func (r *WorkoutRepository) GetByIDForUpdate(ctx context.Context, workoutID string) (*models.Workout, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM workouts
		WHERE id = $1
		FOR UPDATE
	`, workoutColumns)

	return r.scanWorkout(r.db.QueryRow(ctx, query, workoutID))
}

// FindActiveByUser returns the user's IN_PROGRESS workout, or nil when the
// user has none. The partial unique index guarantees at most one row.
func (r *WorkoutRepository) FindActiveByUser(ctx context.Context, userID string) (*models.Workout, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM workouts
		WHERE user_id = $1 AND status = 'IN_PROGRESS'
	`, workoutColumns)

	workout, err := r.scanWorkout(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return workout, nil
}

// ResolveCursor maps a workout id to its position in the listing order.
// The lookup is scoped to the owner so a foreign id behaves like an
// unknown one.
func (r *WorkoutRepository) ResolveCursor(ctx context.Context, userID, workoutID string) (*ListCursor, error) {
	query := `
		SELECT created_at, id
		FROM workouts
		WHERE id = $1 AND user_id = $2
	`
	var cursor ListCursor
	if err := r.db.QueryRow(ctx, query, workoutID, userID).Scan(&cursor.CreatedAt, &cursor.ID); err != nil {
		return nil, err
	}
	return &cursor, nil
}

// List scans up to filter.Limit rows ordered by (created_at, id)
// descending, strictly after the cursor when one is set. Each row carries
// the count of its logged sets.
func (r *WorkoutRepository) List(ctx context.Context, filter WorkoutListFilter) ([]models.WorkoutListItem, error) {
	args := []any{filter.UserID}
	whereParts := []string{"w.user_id = $1"}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		whereParts = append(whereParts, fmt.Sprintf("w.status = $%d", len(args)))
	}
	if filter.After != nil {
		args = append(args, filter.After.CreatedAt, filter.After.ID)
		whereParts = append(whereParts, fmt.Sprintf("(w.created_at, w.id) < ($%d, $%d)", len(args)-1, len(args)))
	}

	args = append(args, filter.Limit)
	query := fmt.Sprintf(`
		SELECT w.id, w.user_id, w.name, w.notes, w.status, w.started_at, w.finished_at,
			   w.duration_seconds, w.total_volume, w.total_sets, w.total_reps, w.rating, w.created_at,
			   (SELECT COUNT(*) FROM workout_sets s WHERE s.workout_id = w.id) AS sets_completed
		FROM workouts w
		WHERE %s
		ORDER BY w.created_at DESC, w.id DESC
		LIMIT $%d
	`, strings.Join(whereParts, " AND "), len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]models.WorkoutListItem, 0, filter.Limit)
	for rows.Next() {
		var item models.WorkoutListItem
		if err := rows.Scan(
			&item.ID,
			&item.UserID,
			&item.Name,
			&item.Notes,
			&item.Status,
			&item.StartedAt,
			&item.FinishedAt,
			&item.DurationSeconds,
			&item.TotalVolume,
			&item.TotalSets,
			&item.TotalReps,
			&item.Rating,
			&item.CreatedAt,
			&item.SetsCompleted,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

// Finish writes the completion record and flips the status in one update.
// The status guard makes the call a compare-and-swap: pgx.ErrNoRows means
// the workout was no longer IN_PROGRESS.
func (r *WorkoutRepository) Finish(ctx context.Context, workoutID string, completion models.WorkoutCompletion) (*models.Workout, error) {
	query := fmt.Sprintf(`
		UPDATE workouts
		SET status = 'COMPLETED',
			finished_at = $2,
			duration_seconds = $3,
			total_volume = $4,
			total_sets = $5,
			total_reps = $6,
			rating = $7
		WHERE id = $1 AND status = 'IN_PROGRESS'
		RETURNING %s
	`, workoutColumns)

	return r.scanWorkout(r.db.QueryRow(ctx, query,
		workoutID,
		completion.FinishedAt,
		completion.DurationSeconds,
		completion.TotalVolume,
		completion.TotalSets,
		completion.TotalReps,
		completion.Rating,
	))
}

// Cancel flips an IN_PROGRESS workout to CANCELLED. No aggregates are
// computed and finished_at stays null.
func (r *WorkoutRepository) Cancel(ctx context.Context, workoutID string) (*models.Workout, error) {
	query := fmt.Sprintf(`
		UPDATE workouts
		SET status = 'CANCELLED'
		WHERE id = $1 AND status = 'IN_PROGRESS'
		RETURNING %s
	`, workoutColumns)

	return r.scanWorkout(r.db.QueryRow(ctx, query, workoutID))
}

func (r *WorkoutRepository) Delete(ctx context.Context, workoutID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM workouts WHERE id = $1`, workoutID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// LifetimeAggregate counts the user's workouts and sums their stored
// volumes, treating never-finished sessions as zero.
func (r *WorkoutRepository) LifetimeAggregate(ctx context.Context, userID string) (totalWorkouts int, totalVolume float64, err error) {
	query := `
		SELECT COUNT(*), COALESCE(SUM(total_volume), 0)
		FROM workouts
		WHERE user_id = $1
	`
	if err := r.db.QueryRow(ctx, query, userID).Scan(&totalWorkouts, &totalVolume); err != nil {
		return 0, 0, err
	}
	return totalWorkouts, totalVolume, nil
}

func (r *WorkoutRepository) scanWorkout(row pgx.Row) (*models.Workout, error) {
	var workout models.Workout
	err := row.Scan(
		&workout.ID,
		&workout.UserID,
		&workout.Name,
		&workout.Notes,
		&workout.Status,
		&workout.StartedAt,
		&workout.FinishedAt,
		&workout.DurationSeconds,
		&workout.TotalVolume,
		&workout.TotalSets,
		&workout.TotalReps,
		&workout.Rating,
		&workout.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &workout, nil
}
