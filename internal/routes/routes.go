package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BogdanProkudin/Liftly-back/internal/config"
	"github.com/BogdanProkudin/Liftly-back/internal/handlers"
	"github.com/BogdanProkudin/Liftly-back/internal/middleware"
	"github.com/BogdanProkudin/Liftly-back/internal/repository"
	"github.com/BogdanProkudin/Liftly-back/internal/services"
)

func RegisterRoutes(app *fiber.App, cfg *config.Config, db *pgxpool.Pool) error {
	userRepo := repository.NewUserRepository(db)
	workoutRepo := repository.NewWorkoutRepository(db)
	setRepo := repository.NewWorkoutSetRepository(db)

	var storageService services.StorageService
	if cfg.SupabaseURL != "" && cfg.SupabaseBucket != "" && cfg.SupabaseServiceKey != "" {
		storageService = services.NewSupabaseStorageService(cfg.SupabaseURL, cfg.SupabaseBucket, cfg.SupabaseServiceKey)
	}

	workoutService := services.NewWorkoutService(db, workoutRepo, setRepo)
	statsService := services.NewStatsService(workoutRepo, setRepo)
	profileService := services.NewProfileService(userRepo)

	workoutHandler := handlers.NewWorkoutHandler(workoutService)
	profileHandler := handlers.NewProfileHandler(profileService, statsService, storageService)

	if cfg.DocsEnabled() {
		if err := registerDocsRoutes(app); err != nil {
			return err
		}
	}

	api := app.Group("/api")
	authProtected := api.Group("/v1", middleware.AuthRequired(cfg.JWTSecret))

	workouts := authProtected.Group("/workouts")
	workouts.Post("", workoutHandler.StartWorkout)
	workouts.Get("", workoutHandler.ListWorkouts)
	workouts.Get("/:id", workoutHandler.GetWorkout)
	workouts.Post("/:id/finish", workoutHandler.FinishWorkout)
	workouts.Post("/:id/cancel", workoutHandler.CancelWorkout)
	workouts.Delete("/:id", workoutHandler.DeleteWorkout)

	users := authProtected.Group("/users")
	users.Get("/me", profileHandler.GetProfile)
	users.Patch("/me", profileHandler.UpdateProfile)
	users.Delete("/me", profileHandler.DeleteAccount)
	users.Get("/me/stats", profileHandler.GetStats)
	users.Post("/me/avatar", profileHandler.UploadAvatar)

	return nil
}
