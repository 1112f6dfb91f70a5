package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/BogdanProkudin/Liftly-back/internal/models"
	"github.com/BogdanProkudin/Liftly-back/internal/services"
)

type WorkoutHandler struct {
	service workoutApplicationService
}

type workoutApplicationService interface {
	StartWorkout(ctx context.Context, userID string, input services.StartWorkoutInput) (*models.Workout, error)
	GetWorkout(ctx context.Context, userID, workoutID string) (*models.WorkoutDetail, error)
	ListWorkouts(ctx context.Context, userID string, input services.ListWorkoutsInput) ([]models.WorkoutListItem, models.PaginationMeta, error)
	FinishWorkout(ctx context.Context, userID, workoutID string, input services.FinishWorkoutInput) (*models.Workout, error)
	CancelWorkout(ctx context.Context, userID, workoutID string) (*models.Workout, error)
	DeleteWorkout(ctx context.Context, userID, workoutID string) error
}

func NewWorkoutHandler(service *services.WorkoutService) *WorkoutHandler {
	return &WorkoutHandler{service: service}
}

type startWorkoutRequest struct {
	Name  *string `json:"name"`
	Notes *string `json:"notes"`
}

type finishWorkoutRequest struct {
	Rating *int `json:"rating"`
}

func (h *WorkoutHandler) StartWorkout(c *fiber.Ctx) error {
	userID, err := requestUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req startWorkoutRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
	}
	if req.Name != nil && (strings.TrimSpace(*req.Name) == "" || len(*req.Name) > 100) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name must be between 1 and 100 characters"})
	}
	if req.Notes != nil && len(*req.Notes) > 1000 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "notes must not exceed 1000 characters"})
	}

	workout, err := h.service.StartWorkout(c.Context(), userID, services.StartWorkoutInput{
		Name:  req.Name,
		Notes: req.Notes,
	})
	if err != nil {
		return mapWorkoutError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"workout": workout})
}

func (h *WorkoutHandler) ListWorkouts(c *fiber.Ctx) error {
	userID, err := requestUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	limit, limitErr := parseListLimit(c)
	if limitErr != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": limitErr})
	}

	var status *models.WorkoutStatus
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		parsed, ok := models.ParseWorkoutStatus(raw)
		if !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "status must be IN_PROGRESS, COMPLETED, or CANCELLED"})
		}
		status = &parsed
	}

	var cursor *string
	if raw := strings.TrimSpace(c.Query("cursor")); raw != "" {
		if _, err := uuid.Parse(raw); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "cursor must be a valid workout id"})
		}
		cursor = &raw
	}

	workouts, meta, err := h.service.ListWorkouts(c.Context(), userID, services.ListWorkoutsInput{
		Limit:  limit,
		Cursor: cursor,
		Status: status,
	})
	if err != nil {
		return mapWorkoutError(c, err)
	}

	return c.JSON(fiber.Map{
		"workouts":   workouts,
		"pagination": meta,
	})
}

func (h *WorkoutHandler) GetWorkout(c *fiber.Ctx) error {
	userID, err := requestUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	workoutID, err := parseWorkoutID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid workout id"})
	}

	workout, err := h.service.GetWorkout(c.Context(), userID, workoutID)
	if err != nil {
		return mapWorkoutError(c, err)
	}

	return c.JSON(fiber.Map{"workout": workout})
}

func (h *WorkoutHandler) FinishWorkout(c *fiber.Ctx) error {
	userID, err := requestUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	workoutID, err := parseWorkoutID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid workout id"})
	}

	var req finishWorkoutRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
	}
	if req.Rating != nil && (*req.Rating < 1 || *req.Rating > 5) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "rating must be between 1 and 5"})
	}

	workout, err := h.service.FinishWorkout(c.Context(), userID, workoutID, services.FinishWorkoutInput{
		Rating: req.Rating,
	})
	if err != nil {
		return mapWorkoutError(c, err)
	}

	return c.JSON(fiber.Map{"workout": workout})
}

func (h *WorkoutHandler) CancelWorkout(c *fiber.Ctx) error {
	userID, err := requestUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	workoutID, err := parseWorkoutID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid workout id"})
	}

	workout, err := h.service.CancelWorkout(c.Context(), userID, workoutID)
	if err != nil {
		return mapWorkoutError(c, err)
	}

	return c.JSON(fiber.Map{"workout": workout})
}

func (h *WorkoutHandler) DeleteWorkout(c *fiber.Ctx) error {
	userID, err := requestUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	workoutID, err := parseWorkoutID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid workout id"})
	}

	if err := h.service.DeleteWorkout(c.Context(), userID, workoutID); err != nil {
		return mapWorkoutError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func parseWorkoutID(c *fiber.Ctx) (string, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

func mapWorkoutError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidCursor):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cursor does not reference a known workout"})
	case errors.Is(err, services.ErrWorkoutNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Workout not found"})
	case errors.Is(err, services.ErrActiveWorkoutExists):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "An active workout is already in progress"})
	case errors.Is(err, services.ErrWorkoutNotInProgress):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Workout is not in progress"})
	case errors.Is(err, pgx.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Workout not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process workout request"})
	}
}
