package services

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/BogdanProkudin/Liftly-back/internal/models"
	"github.com/BogdanProkudin/Liftly-back/internal/repository"
)

var ErrUserNotFound = errors.New("user not found")

type userStore interface {
	GetByID(ctx context.Context, userID string) (*models.User, error)
	UpdatePartial(ctx context.Context, userID string, input repository.UpdateUserProfileInput) (*models.User, error)
	Delete(ctx context.Context, userID string) error
}

type ProfileService struct {
	userRepo userStore
}

func NewProfileService(userRepo userStore) *ProfileService {
	return &ProfileService{userRepo: userRepo}
}

func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, input repository.UpdateUserProfileInput) (*models.User, error) {
	user, err := s.userRepo.UpdatePartial(ctx, userID, input)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *ProfileService) DeleteAccount(ctx context.Context, userID string) error {
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}
