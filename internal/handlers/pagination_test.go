package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/BogdanProkudin/Liftly-back/internal/services"
)

func runParseListLimit(t *testing.T, query string) (int, string) {
	t.Helper()

	var (
		limit  int
		errMsg string
	)
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		limit, errMsg = parseListLimit(c)
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/"+query, nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	resp.Body.Close()
	return limit, errMsg
}

func TestParseListLimitDefaultsWhenMissing(t *testing.T) {
	limit, errMsg := runParseListLimit(t, "")
	if errMsg != "" {
		t.Fatalf("unexpected error: %q", errMsg)
	}
	if limit != services.DefaultListLimit {
		t.Fatalf("expected default %d, got %d", services.DefaultListLimit, limit)
	}
}

func TestParseListLimitClampsToMaximum(t *testing.T) {
	limit, errMsg := runParseListLimit(t, "?limit=500")
	if errMsg != "" {
		t.Fatalf("unexpected error: %q", errMsg)
	}
	if limit != services.MaxListLimit {
		t.Fatalf("expected clamp to %d, got %d", services.MaxListLimit, limit)
	}
}

func TestParseListLimitRejectsNonPositive(t *testing.T) {
	if _, errMsg := runParseListLimit(t, "?limit=0"); errMsg == "" {
		t.Fatal("expected error for zero limit")
	}
	if _, errMsg := runParseListLimit(t, "?limit=-5"); errMsg == "" {
		t.Fatal("expected error for negative limit")
	}
	if _, errMsg := runParseListLimit(t, "?limit=ten"); errMsg == "" {
		t.Fatal("expected error for non-numeric limit")
	}
}
