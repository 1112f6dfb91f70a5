package services

import (
	"context"

	"github.com/BogdanProkudin/Liftly-back/internal/models"
	"github.com/BogdanProkudin/Liftly-back/internal/repository"
)

// StatsService is the read-only reporting side: per-session summaries at
// finish time and lifetime aggregates on demand.
type StatsService struct {
	workoutRepo *repository.WorkoutRepository
	setRepo     *repository.WorkoutSetRepository
}

func NewStatsService(
	workoutRepo *repository.WorkoutRepository,
	setRepo *repository.WorkoutSetRepository,
) *StatsService {
	return &StatsService{
		workoutRepo: workoutRepo,
		setRepo:     setRepo,
	}
}

func (s *StatsService) SessionSummary(ctx context.Context, workoutID string) (models.SessionSummary, error) {
	return s.setRepo.SessionSummary(ctx, workoutID)
}

func (s *StatsService) LifetimeStats(ctx context.Context, userID string) (models.LifetimeStats, error) {
	totalWorkouts, totalVolume, err := s.workoutRepo.LifetimeAggregate(ctx, userID)
	if err != nil {
		return models.LifetimeStats{}, err
	}

	totalSets, err := s.setRepo.CountByUser(ctx, userID)
	if err != nil {
		return models.LifetimeStats{}, err
	}

	return models.LifetimeStats{
		TotalWorkouts: totalWorkouts,
		TotalVolume:   totalVolume,
		TotalSets:     totalSets,
	}, nil
}
