package services

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BogdanProkudin/Liftly-back/internal/models"
	"github.com/BogdanProkudin/Liftly-back/internal/repository"
)

var (
	ErrWorkoutNotFound      = errors.New("workout not found")
	ErrActiveWorkoutExists  = errors.New("an active workout already exists")
	ErrWorkoutNotInProgress = errors.New("workout is not in progress")
	ErrInvalidCursor        = errors.New("invalid cursor")
	ErrInvalidInput         = errors.New("invalid input")
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 50
)

// uniqueViolation is the Postgres error code raised by the partial unique
// index that allows at most one IN_PROGRESS workout per user.
const uniqueViolation = "23505"

type WorkoutService struct {
	db          *pgxpool.Pool
	workoutRepo *repository.WorkoutRepository
	setRepo     *repository.WorkoutSetRepository
}

func NewWorkoutService(
	db *pgxpool.Pool,
	workoutRepo *repository.WorkoutRepository,
	setRepo *repository.WorkoutSetRepository,
) *WorkoutService {
	return &WorkoutService{
		db:          db,
		workoutRepo: workoutRepo,
		setRepo:     setRepo,
	}
}

type StartWorkoutInput struct {
	Name  *string
	Notes *string
}

// StartWorkout opens a new IN_PROGRESS workout for the user. The check and
// the insert run in one transaction behind a per-user advisory lock, so two
// simultaneous starts serialize and the loser sees the winner's row. The
// partial unique index backstops the invariant even outside this path.
func (s *WorkoutService) StartWorkout(
	ctx context.Context,
	userID string,
	input StartWorkoutInput,
) (*models.Workout, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtextextended($1, 0))", userID); err != nil {
		return nil, err
	}

	txWorkoutRepo := repository.NewWorkoutRepository(tx)

	active, err := txWorkoutRepo.FindActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, ErrActiveWorkoutExists
	}

	workout, err := txWorkoutRepo.Create(ctx, repository.CreateWorkoutInput{
		UserID: userID,
		Name:   input.Name,
		Notes:  input.Notes,
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrActiveWorkoutExists
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return workout, nil
}

// GetWorkout returns the workout with its sets in logged order. A workout
// owned by someone else is reported exactly like a missing one.
func (s *WorkoutService) GetWorkout(
	ctx context.Context,
	userID string,
	workoutID string,
) (*models.WorkoutDetail, error) {
	workout, err := s.workoutRepo.GetByID(ctx, workoutID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}
	if workout.UserID != userID {
		return nil, ErrWorkoutNotFound
	}

	sets, err := s.setRepo.ListByWorkout(ctx, workoutID)
	if err != nil {
		return nil, err
	}

	return &models.WorkoutDetail{Workout: *workout, Sets: sets}, nil
}

type ListWorkoutsInput struct {
	Limit  int
	Cursor *string
	Status *models.WorkoutStatus
}

// ListWorkouts pages through the user's workouts, newest first. It fetches
// limit+1 rows; a full fetch means another page exists and the last
// returned id becomes the next cursor.
func (s *WorkoutService) ListWorkouts(
	ctx context.Context,
	userID string,
	input ListWorkoutsInput,
) ([]models.WorkoutListItem, models.PaginationMeta, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	var after *repository.ListCursor
	if input.Cursor != nil {
		cursor, err := s.workoutRepo.ResolveCursor(ctx, userID, *input.Cursor)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, models.PaginationMeta{}, ErrInvalidCursor
			}
			return nil, models.PaginationMeta{}, err
		}
		after = cursor
	}

	items, err := s.workoutRepo.List(ctx, repository.WorkoutListFilter{
		UserID: userID,
		Status: input.Status,
		After:  after,
		Limit:  limit + 1,
	})
	if err != nil {
		return nil, models.PaginationMeta{}, err
	}

	meta := models.PaginationMeta{Limit: limit}
	if len(items) > limit {
		items = items[:limit]
		last := items[len(items)-1]
		meta.HasMore = true
		meta.NextCursor = &last.ID
	}

	return items, meta, nil
}

type FinishWorkoutInput struct {
	Rating *int
}

// FinishWorkout completes an IN_PROGRESS workout. The row is locked for
// the duration of the transaction so the summary is computed against the
// exact set of rows frozen into the completion record, and the final
// update is still guarded on the current status.
func (s *WorkoutService) FinishWorkout(
	ctx context.Context,
	userID string,
	workoutID string,
	input FinishWorkoutInput,
) (*models.Workout, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txWorkoutRepo := repository.NewWorkoutRepository(tx)
	txSetRepo := repository.NewWorkoutSetRepository(tx)

	workout, err := txWorkoutRepo.GetByIDForUpdate(ctx, workoutID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}
	if workout.UserID != userID {
		return nil, ErrWorkoutNotFound
	}
	if workout.Status != models.WorkoutStatusInProgress {
		return nil, ErrWorkoutNotInProgress
	}

	summary, err := txSetRepo.SessionSummary(ctx, workoutID)
	if err != nil {
		return nil, err
	}

	finishedAt := time.Now().UTC()
	finished, err := txWorkoutRepo.Finish(ctx, workoutID, models.WorkoutCompletion{
		FinishedAt:      finishedAt,
		DurationSeconds: int(finishedAt.Sub(workout.StartedAt).Seconds()),
		TotalVolume:     summary.TotalVolume,
		TotalSets:       summary.TotalSets,
		TotalReps:       summary.TotalReps,
		Rating:          input.Rating,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWorkoutNotInProgress
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return finished, nil
}

// CancelWorkout moves an IN_PROGRESS workout to CANCELLED. No aggregates
// are computed and finished_at stays null, mirroring the recorded product
// behavior for abandoned sessions.
func (s *WorkoutService) CancelWorkout(
	ctx context.Context,
	userID string,
	workoutID string,
) (*models.Workout, error) {
	workout, err := s.workoutRepo.GetByID(ctx, workoutID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}
	if workout.UserID != userID {
		return nil, ErrWorkoutNotFound
	}
	if workout.Status != models.WorkoutStatusInProgress {
		return nil, ErrWorkoutNotInProgress
	}

	cancelled, err := s.workoutRepo.Cancel(ctx, workoutID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWorkoutNotInProgress
		}
		return nil, err
	}

	return cancelled, nil
}

// DeleteWorkout removes the workout and, through the cascade, its sets.
// Deletion is allowed from any status.
func (s *WorkoutService) DeleteWorkout(
	ctx context.Context,
	userID string,
	workoutID string,
) error {
	workout, err := s.workoutRepo.GetByID(ctx, workoutID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrWorkoutNotFound
		}
		return err
	}
	if workout.UserID != userID {
		return ErrWorkoutNotFound
	}

	if err := s.workoutRepo.Delete(ctx, workoutID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrWorkoutNotFound
		}
		return err
	}

	return nil
}
