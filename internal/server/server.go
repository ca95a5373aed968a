package server

import (
	"fmt"
	"log"
	"time"

	"tracker/internal/config"
	"tracker/internal/database"
	"tracker/internal/handlers"
	"tracker/internal/middleware"
	"tracker/internal/repositories"
	"tracker/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cache"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"
)

// Dependencies are the stores and collaborators the app is built on.
type Dependencies struct {
	Users      repositories.UserRepository
	Activities repositories.ActivityRepository
	// Publisher may be nil to disable events. Pass an untyped nil, not a
	// nil *rabbitmq.Client.
	Publisher services.EventPublisher
	// DB is only used by the health check; nil means a non-SQL store.
	DB *gorm.DB
}

// NewApp wires services, middleware and routes into a fiber app.
func NewApp(cfg *config.Config, deps Dependencies) (*fiber.App, error) {
	authService, err := services.NewAuthService(deps.Users, cfg.BcryptCost, deps.Publisher)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth service: %w", err)
	}
	activityService := services.NewActivityService(deps.Activities, deps.Publisher)

	authHandler := handlers.NewAuthHandler(authService)
	activityHandler := handlers.NewActivityHandler(activityService)

	app := fiber.New(fiber.Config{
		AppName:      "tracker",
		BodyLimit:    cfg.BodyLimit,
		ErrorHandler: handlers.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New())

	app.Get("/health", healthHandler(deps.DB))

	api := app.Group(cfg.APIPrefix)
	authHandler.RegisterRoutes(api)

	// The guard matches the whole prefix, so public routes go first.
	protected := api.Group("", middleware.AuthRequired(authService, middleware.AuthConfig{
		AllowBodyToken: cfg.AllowBodyToken,
	}))
	authHandler.RegisterProtectedRoutes(protected)

	var statsMiddleware []fiber.Handler
	if cfg.StatsCacheTTL > 0 {
		statsMiddleware = append(statsMiddleware, statsCache(cfg.StatsCacheTTL))
		log.Printf("Stats responses cached for %s", cfg.StatsCacheTTL)
	}
	activityHandler.RegisterRoutes(protected, statsMiddleware...)

	return app, nil
}

// statsCache caches stats bodies per authenticated user. It must run after
// AuthRequired so the identity is available for the key.
func statsCache(ttl time.Duration) fiber.Handler {
	return cache.New(cache.Config{
		Expiration:  ttl,
		CacheHeader: "X-Cache",
		KeyGenerator: func(c *fiber.Ctx) string {
			id, _ := middleware.CurrentIdentity(c)
			return "stats:" + id.UserID + ":" + c.Path()
		},
	})
}

func healthHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status := "ok"
		if db != nil {
			if err := database.Ping(db); err != nil {
				log.Printf("Health check: database ping failed: %v", err)
				status = "unavailable"
			}
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": status,
		})
	}
}
