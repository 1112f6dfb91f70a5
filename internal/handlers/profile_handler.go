package handlers

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/BogdanProkudin/Liftly-back/internal/models"
	"github.com/BogdanProkudin/Liftly-back/internal/repository"
	"github.com/BogdanProkudin/Liftly-back/internal/services"
)

const maxAvatarSizeBytes = 5 * 1024 * 1024

type ProfileHandler struct {
	profileService profileApplicationService
	statsService   statsReader
	storageService services.StorageService
}

type profileApplicationService interface {
	GetProfile(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, input repository.UpdateUserProfileInput) (*models.User, error)
	DeleteAccount(ctx context.Context, userID string) error
}

type statsReader interface {
	LifetimeStats(ctx context.Context, userID string) (models.LifetimeStats, error)
}

func NewProfileHandler(
	profileService *services.ProfileService,
	statsService *services.StatsService,
	storageService services.StorageService,
) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		statsService:   statsService,
		storageService: storageService,
	}
}

type updateProfileRequest struct {
	Name     *string `json:"name"`
	Username *string `json:"username"`
	Bio      *string `json:"bio"`
}

func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	userID, err := requestUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	user, err := h.profileService.GetProfile(c.Context(), userID)
	if err != nil {
		return mapProfileError(c, err)
	}

	return c.JSON(fiber.Map{"user": user})
}

func (h *ProfileHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, err := requestUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if validationErr := validateUpdateProfileRequest(req); validationErr != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationErr})
	}

	user, err := h.profileService.UpdateProfile(c.Context(), userID, repository.UpdateUserProfileInput{
		Name:     req.Name,
		Username: req.Username,
		Bio:      req.Bio,
	})
	if err != nil {
		return mapProfileError(c, err)
	}

	return c.JSON(fiber.Map{"user": user})
}

func (h *ProfileHandler) GetStats(c *fiber.Ctx) error {
	userID, err := requestUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	stats, err := h.statsService.LifetimeStats(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch stats"})
	}

	return c.JSON(fiber.Map{"stats": stats})
}

func (h *ProfileHandler) DeleteAccount(c *fiber.Ctx) error {
	userID, err := requestUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	if err := h.profileService.DeleteAccount(c.Context(), userID); err != nil {
		return mapProfileError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ProfileHandler) UploadAvatar(c *fiber.Ctx) error {
	if h.storageService == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Storage service is not configured"})
	}

	userID, err := requestUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "avatar file is required"})
	}
	if fileHeader.Size <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "avatar file is empty"})
	}
	if fileHeader.Size > maxAvatarSizeBytes {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "avatar file exceeds 5MB limit"})
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "avatar must be a jpg, jpeg, png, or webp file"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to open avatar file"})
	}
	defer file.Close()

	current, err := h.profileService.GetProfile(c.Context(), userID)
	if err != nil {
		return mapProfileError(c, err)
	}

	filename := fmt.Sprintf("%s-%d%s", userID, time.Now().UnixNano(), ext)
	avatarURL, err := h.storageService.UploadFile(c.Context(), file, filename, "users/avatars")
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to upload avatar"})
	}

	if current.AvatarURL != nil && *current.AvatarURL != "" && *current.AvatarURL != avatarURL {
		_ = h.storageService.DeleteFile(c.Context(), *current.AvatarURL)
	}

	user, err := h.profileService.UpdateProfile(c.Context(), userID, repository.UpdateUserProfileInput{
		AvatarURL: &avatarURL,
	})
	if err != nil {
		return mapProfileError(c, err)
	}

	return c.JSON(fiber.Map{
		"avatar_url": avatarURL,
		"user":       user,
	})
}

func mapProfileError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process profile request"})
	}
}

// requestUserID reads the authenticated subject set by the auth
// middleware. The token is validated upstream; this only guards against a
// route registered without the middleware.
func requestUserID(c *fiber.Ctx) (string, error) {
	value, ok := c.Locals("user_id").(string)
	if !ok {
		return "", errors.New("missing user id")
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
