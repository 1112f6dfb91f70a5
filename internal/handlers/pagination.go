package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/BogdanProkudin/Liftly-back/internal/services"
)

// parseListLimit reads the limit query parameter, applying the default and
// clamping to the configured maximum. A non-numeric or non-positive value
// is rejected.
func parseListLimit(c *fiber.Ctx) (int, string) {
	raw := strings.TrimSpace(c.Query("limit"))
	if raw == "" {
		return services.DefaultListLimit, ""
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0, "limit must be a positive integer"
	}
	if limit > services.MaxListLimit {
		limit = services.MaxListLimit
	}
	return limit, ""
}
