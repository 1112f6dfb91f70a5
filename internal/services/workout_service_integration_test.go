package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/BogdanProkudin/Liftly-back/internal/models"
	"github.com/BogdanProkudin/Liftly-back/internal/repository"
)

var (
	testDBOnce sync.Once
	testDBPool *pgxpool.Pool
	testDBErr  error
)

func TestWorkoutServiceStartAndFinishFlow(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	service := newIntegrationWorkoutService(pool)

	userID := createTestUser(t, ctx, pool)
	t.Cleanup(func() { cleanupTestUsers(t, ctx, pool, userID) })

	name := "Push day"
	workout, err := service.StartWorkout(ctx, userID, StartWorkoutInput{Name: &name})
	if err != nil {
		t.Fatalf("StartWorkout: %v", err)
	}
	if workout.Status != models.WorkoutStatusInProgress {
		t.Fatalf("expected IN_PROGRESS, got %q", workout.Status)
	}
	if workout.FinishedAt != nil || workout.TotalVolume != nil {
		t.Fatalf("expected no completion fields on a fresh workout, got %+v", workout)
	}

	addTestSet(t, ctx, pool, workout.ID, 1, 100, 8)
	addTestSet(t, ctx, pool, workout.ID, 2, 80, 10)

	rating := 4
	finished, err := service.FinishWorkout(ctx, userID, workout.ID, FinishWorkoutInput{Rating: &rating})
	if err != nil {
		t.Fatalf("FinishWorkout: %v", err)
	}

	if finished.Status != models.WorkoutStatusCompleted {
		t.Fatalf("expected COMPLETED, got %q", finished.Status)
	}
	if finished.FinishedAt == nil || finished.DurationSeconds == nil {
		t.Fatalf("expected completion timestamps, got %+v", finished)
	}
	if finished.TotalVolume == nil || *finished.TotalVolume != 1600 {
		t.Fatalf("expected total volume 1600, got %+v", finished.TotalVolume)
	}
	if finished.TotalSets == nil || *finished.TotalSets != 2 {
		t.Fatalf("expected 2 sets, got %+v", finished.TotalSets)
	}
	if finished.TotalReps == nil || *finished.TotalReps != 18 {
		t.Fatalf("expected 18 reps, got %+v", finished.TotalReps)
	}
	if finished.Rating == nil || *finished.Rating != 4 {
		t.Fatalf("expected rating 4, got %+v", finished.Rating)
	}
}

func TestWorkoutServiceRejectsSecondActiveWorkout(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	service := newIntegrationWorkoutService(pool)

	userID := createTestUser(t, ctx, pool)
	t.Cleanup(func() { cleanupTestUsers(t, ctx, pool, userID) })

	if _, err := service.StartWorkout(ctx, userID, StartWorkoutInput{}); err != nil {
		t.Fatalf("first StartWorkout: %v", err)
	}

	_, err := service.StartWorkout(ctx, userID, StartWorkoutInput{})
	if !errors.Is(err, ErrActiveWorkoutExists) {
		t.Fatalf("expected ErrActiveWorkoutExists, got %v", err)
	}
}

func TestWorkoutServiceAllowsNewWorkoutAfterFinish(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	service := newIntegrationWorkoutService(pool)

	userID := createTestUser(t, ctx, pool)
	t.Cleanup(func() { cleanupTestUsers(t, ctx, pool, userID) })

	first, err := service.StartWorkout(ctx, userID, StartWorkoutInput{})
	if err != nil {
		t.Fatalf("StartWorkout: %v", err)
	}
	if _, err := service.FinishWorkout(ctx, userID, first.ID, FinishWorkoutInput{}); err != nil {
		t.Fatalf("FinishWorkout: %v", err)
	}

	if _, err := service.StartWorkout(ctx, userID, StartWorkoutInput{}); err != nil {
		t.Fatalf("StartWorkout after finish: %v", err)
	}
}

func TestWorkoutServiceFinishGuardsTerminalStates(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	service := newIntegrationWorkoutService(pool)

	userID := createTestUser(t, ctx, pool)
	t.Cleanup(func() { cleanupTestUsers(t, ctx, pool, userID) })

	workout, err := service.StartWorkout(ctx, userID, StartWorkoutInput{})
	if err != nil {
		t.Fatalf("StartWorkout: %v", err)
	}

	cancelled, err := service.CancelWorkout(ctx, userID, workout.ID)
	if err != nil {
		t.Fatalf("CancelWorkout: %v", err)
	}
	if cancelled.Status != models.WorkoutStatusCancelled {
		t.Fatalf("expected CANCELLED, got %q", cancelled.Status)
	}
	if cancelled.FinishedAt != nil {
		t.Fatalf("expected null finished_at after cancel, got %v", cancelled.FinishedAt)
	}

	if _, err := service.FinishWorkout(ctx, userID, workout.ID, FinishWorkoutInput{}); !errors.Is(err, ErrWorkoutNotInProgress) {
		t.Fatalf("expected ErrWorkoutNotInProgress on finish, got %v", err)
	}
	if _, err := service.CancelWorkout(ctx, userID, workout.ID); !errors.Is(err, ErrWorkoutNotInProgress) {
		t.Fatalf("expected ErrWorkoutNotInProgress on second cancel, got %v", err)
	}
}

func TestWorkoutServiceFinishEmptySessionFreezesZeros(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	service := newIntegrationWorkoutService(pool)

	userID := createTestUser(t, ctx, pool)
	t.Cleanup(func() { cleanupTestUsers(t, ctx, pool, userID) })

	workout, err := service.StartWorkout(ctx, userID, StartWorkoutInput{})
	if err != nil {
		t.Fatalf("StartWorkout: %v", err)
	}

	finished, err := service.FinishWorkout(ctx, userID, workout.ID, FinishWorkoutInput{})
	if err != nil {
		t.Fatalf("FinishWorkout: %v", err)
	}
	if finished.TotalSets == nil || *finished.TotalSets != 0 {
		t.Fatalf("expected 0 sets, got %+v", finished.TotalSets)
	}
	if finished.TotalReps == nil || *finished.TotalReps != 0 {
		t.Fatalf("expected 0 reps, got %+v", finished.TotalReps)
	}
	if finished.TotalVolume == nil || *finished.TotalVolume != 0 {
		t.Fatalf("expected 0 volume, got %+v", finished.TotalVolume)
	}
	if finished.Rating != nil {
		t.Fatalf("expected null rating, got %+v", finished.Rating)
	}
}

func TestWorkoutServiceHidesForeignWorkouts(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	service := newIntegrationWorkoutService(pool)

	ownerID := createTestUser(t, ctx, pool)
	otherID := createTestUser(t, ctx, pool)
	t.Cleanup(func() { cleanupTestUsers(t, ctx, pool, ownerID, otherID) })

	workout, err := service.StartWorkout(ctx, ownerID, StartWorkoutInput{})
	if err != nil {
		t.Fatalf("StartWorkout: %v", err)
	}

	if _, err := service.GetWorkout(ctx, otherID, workout.ID); !errors.Is(err, ErrWorkoutNotFound) {
		t.Fatalf("expected ErrWorkoutNotFound on get, got %v", err)
	}
	if _, err := service.FinishWorkout(ctx, otherID, workout.ID, FinishWorkoutInput{}); !errors.Is(err, ErrWorkoutNotFound) {
		t.Fatalf("expected ErrWorkoutNotFound on finish, got %v", err)
	}
	if _, err := service.CancelWorkout(ctx, otherID, workout.ID); !errors.Is(err, ErrWorkoutNotFound) {
		t.Fatalf("expected ErrWorkoutNotFound on cancel, got %v", err)
	}
	if err := service.DeleteWorkout(ctx, otherID, workout.ID); !errors.Is(err, ErrWorkoutNotFound) {
		t.Fatalf("expected ErrWorkoutNotFound on delete, got %v", err)
	}

	// A foreign workout id is also rejected as a list cursor.
	cursor := workout.ID
	if _, _, err := service.ListWorkouts(ctx, otherID, ListWorkoutsInput{Cursor: &cursor}); !errors.Is(err, ErrInvalidCursor) {
		t.Fatalf("expected ErrInvalidCursor, got %v", err)
	}

	// The owner still sees it untouched.
	detail, err := service.GetWorkout(ctx, ownerID, workout.ID)
	if err != nil {
		t.Fatalf("GetWorkout owner: %v", err)
	}
	if detail.Status != models.WorkoutStatusInProgress {
		t.Fatalf("expected IN_PROGRESS, got %q", detail.Status)
	}
}

func TestWorkoutServicePaginationWalkIsLossless(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	service := newIntegrationWorkoutService(pool)

	userID := createTestUser(t, ctx, pool)
	t.Cleanup(func() { cleanupTestUsers(t, ctx, pool, userID) })

	created := make(map[string]bool, 7)
	for i := 0; i < 7; i++ {
		workout, err := service.StartWorkout(ctx, userID, StartWorkoutInput{})
		if err != nil {
			t.Fatalf("StartWorkout %d: %v", i, err)
		}
		created[workout.ID] = true
		if _, err := service.FinishWorkout(ctx, userID, workout.ID, FinishWorkoutInput{}); err != nil {
			t.Fatalf("FinishWorkout %d: %v", i, err)
		}
	}

	seen := make(map[string]bool, len(created))
	var cursor *string
	pages := 0
	for {
		items, meta, err := service.ListWorkouts(ctx, userID, ListWorkoutsInput{
			Limit:  3,
			Cursor: cursor,
		})
		if err != nil {
			t.Fatalf("ListWorkouts page %d: %v", pages, err)
		}
		pages++

		for _, item := range items {
			if seen[item.ID] {
				t.Fatalf("workout %s returned twice", item.ID)
			}
			seen[item.ID] = true
		}

		if !meta.HasMore {
			if meta.NextCursor != nil {
				t.Fatalf("expected nil cursor on last page, got %v", *meta.NextCursor)
			}
			break
		}
		if meta.NextCursor == nil {
			t.Fatal("has_more set without a next cursor")
		}
		if len(items) != 3 {
			t.Fatalf("expected full page before the last, got %d items", len(items))
		}
		cursor = meta.NextCursor
	}

	if pages != 3 {
		t.Fatalf("expected 3 pages of 3+3+1, got %d", pages)
	}
	if len(seen) != len(created) {
		t.Fatalf("expected %d workouts across pages, got %d", len(created), len(seen))
	}
	for id := range created {
		if !seen[id] {
			t.Fatalf("workout %s missing from the walk", id)
		}
	}
}

func TestWorkoutServiceListOrdersNewestFirstAndFilters(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	service := newIntegrationWorkoutService(pool)

	userID := createTestUser(t, ctx, pool)
	t.Cleanup(func() { cleanupTestUsers(t, ctx, pool, userID) })

	first, err := service.StartWorkout(ctx, userID, StartWorkoutInput{})
	if err != nil {
		t.Fatalf("StartWorkout: %v", err)
	}
	if _, err := service.CancelWorkout(ctx, userID, first.ID); err != nil {
		t.Fatalf("CancelWorkout: %v", err)
	}

	second, err := service.StartWorkout(ctx, userID, StartWorkoutInput{})
	if err != nil {
		t.Fatalf("second StartWorkout: %v", err)
	}
	addTestSet(t, ctx, pool, second.ID, 1, 60, 5)
	if _, err := service.FinishWorkout(ctx, userID, second.ID, FinishWorkoutInput{}); err != nil {
		t.Fatalf("FinishWorkout: %v", err)
	}

	items, meta, err := service.ListWorkouts(ctx, userID, ListWorkoutsInput{})
	if err != nil {
		t.Fatalf("ListWorkouts: %v", err)
	}
	if meta.Limit != DefaultListLimit {
		t.Fatalf("expected default limit %d, got %d", DefaultListLimit, meta.Limit)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 workouts, got %d", len(items))
	}
	if items[0].ID != second.ID || items[1].ID != first.ID {
		t.Fatalf("expected newest first, got %s then %s", items[0].ID, items[1].ID)
	}
	if items[0].SetsCompleted != 1 || items[1].SetsCompleted != 0 {
		t.Fatalf("unexpected set counts: %d, %d", items[0].SetsCompleted, items[1].SetsCompleted)
	}

	status := models.WorkoutStatusCancelled
	filtered, _, err := service.ListWorkouts(ctx, userID, ListWorkoutsInput{Status: &status})
	if err != nil {
		t.Fatalf("ListWorkouts filtered: %v", err)
	}
	if len(filtered) != 1 || filtered[0].ID != first.ID {
		t.Fatalf("expected only the cancelled workout, got %+v", filtered)
	}
}

func TestWorkoutServiceDeleteCascadesToSets(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	service := newIntegrationWorkoutService(pool)

	userID := createTestUser(t, ctx, pool)
	t.Cleanup(func() { cleanupTestUsers(t, ctx, pool, userID) })

	workout, err := service.StartWorkout(ctx, userID, StartWorkoutInput{})
	if err != nil {
		t.Fatalf("StartWorkout: %v", err)
	}
	addTestSet(t, ctx, pool, workout.ID, 1, 50, 12)

	if err := service.DeleteWorkout(ctx, userID, workout.ID); err != nil {
		t.Fatalf("DeleteWorkout: %v", err)
	}

	var remaining int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM workout_sets WHERE workout_id = $1", workout.ID).Scan(&remaining); err != nil {
		t.Fatalf("count sets: %v", err)
	}
	if remaining != 0 {
		t.Fatalf("expected cascading delete, %d sets remain", remaining)
	}

	if _, err := service.GetWorkout(ctx, userID, workout.ID); !errors.Is(err, ErrWorkoutNotFound) {
		t.Fatalf("expected ErrWorkoutNotFound after delete, got %v", err)
	}
}

func TestStatsServiceLifetimeAggregates(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	workoutService := newIntegrationWorkoutService(pool)
	statsService := NewStatsService(
		repository.NewWorkoutRepository(pool),
		repository.NewWorkoutSetRepository(pool),
	)

	userID := createTestUser(t, ctx, pool)
	t.Cleanup(func() { cleanupTestUsers(t, ctx, pool, userID) })

	empty, err := statsService.LifetimeStats(ctx, userID)
	if err != nil {
		t.Fatalf("LifetimeStats empty: %v", err)
	}
	if empty.TotalWorkouts != 0 || empty.TotalVolume != 0 || empty.TotalSets != 0 {
		t.Fatalf("expected zeroed stats for a new user, got %+v", empty)
	}

	first, err := workoutService.StartWorkout(ctx, userID, StartWorkoutInput{})
	if err != nil {
		t.Fatalf("StartWorkout: %v", err)
	}
	addTestSet(t, ctx, pool, first.ID, 1, 100, 8)
	addTestSet(t, ctx, pool, first.ID, 2, 80, 10)
	if _, err := workoutService.FinishWorkout(ctx, userID, first.ID, FinishWorkoutInput{}); err != nil {
		t.Fatalf("FinishWorkout: %v", err)
	}

	// Cancelled sessions count as workouts but contribute no volume.
	second, err := workoutService.StartWorkout(ctx, userID, StartWorkoutInput{})
	if err != nil {
		t.Fatalf("second StartWorkout: %v", err)
	}
	addTestSet(t, ctx, pool, second.ID, 1, 40, 10)
	if _, err := workoutService.CancelWorkout(ctx, userID, second.ID); err != nil {
		t.Fatalf("CancelWorkout: %v", err)
	}

	stats, err := statsService.LifetimeStats(ctx, userID)
	if err != nil {
		t.Fatalf("LifetimeStats: %v", err)
	}
	if stats.TotalWorkouts != 2 {
		t.Fatalf("expected 2 workouts, got %d", stats.TotalWorkouts)
	}
	if stats.TotalVolume != 1600 {
		t.Fatalf("expected volume 1600, got %.2f", stats.TotalVolume)
	}
	if stats.TotalSets != 3 {
		t.Fatalf("expected 3 sets, got %d", stats.TotalSets)
	}

	summary, err := statsService.SessionSummary(ctx, first.ID)
	if err != nil {
		t.Fatalf("SessionSummary: %v", err)
	}
	if summary.TotalSets != 2 || summary.TotalReps != 18 || summary.TotalVolume != 1600 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func integrationTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	testDBOnce.Do(func() {
		_ = godotenv.Load(".env")
		_ = godotenv.Load(filepath.Join("..", "..", ".env"))

		dbURL := os.Getenv("DB_URL")
		if dbURL == "" {
			testDBErr = fmt.Errorf("DB_URL is not set")
			return
		}

		cfg, err := pgxpool.ParseConfig(dbURL)
		if err != nil {
			testDBErr = err
			return
		}

		testDBPool, testDBErr = pgxpool.NewWithConfig(context.Background(), cfg)
		if testDBErr != nil {
			return
		}
		testDBErr = testDBPool.Ping(context.Background())
	})

	if testDBErr != nil {
		t.Skipf("skipping integration test: %v", testDBErr)
	}
	return testDBPool
}

func newIntegrationWorkoutService(pool *pgxpool.Pool) *WorkoutService {
	return NewWorkoutService(
		pool,
		repository.NewWorkoutRepository(pool),
		repository.NewWorkoutSetRepository(pool),
	)
}

func createTestUser(t *testing.T, ctx context.Context, pool *pgxpool.Pool) string {
	t.Helper()

	email := fmt.Sprintf("workout-test-%d@example.com", time.Now().UnixNano())
	var id string
	if err := pool.QueryRow(ctx,
		"INSERT INTO users (email) VALUES ($1) RETURNING id", email,
	).Scan(&id); err != nil {
		t.Fatalf("create test user: %v", err)
	}
	return id
}

func addTestSet(t *testing.T, ctx context.Context, pool *pgxpool.Pool, workoutID string, setNumber int, weight float64, reps int) {
	t.Helper()

	if _, err := pool.Exec(ctx, `
		INSERT INTO workout_sets (workout_id, exercise_id, set_number, weight, reps)
		VALUES ($1, gen_random_uuid(), $2, $3, $4)
	`, workoutID, setNumber, weight, reps); err != nil {
		t.Fatalf("add test set: %v", err)
	}
}

func cleanupTestUsers(t *testing.T, ctx context.Context, pool *pgxpool.Pool, userIDs ...string) {
	t.Helper()

	if len(userIDs) == 0 {
		return
	}
	if _, err := pool.Exec(ctx, "DELETE FROM users WHERE id = ANY($1)", userIDs); err != nil {
		t.Fatalf("cleanup users: %v", err)
	}
}
