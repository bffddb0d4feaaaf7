package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/teamerp-api/internal/config"
	"github.com/noah-isme/teamerp-api/internal/handler"
	"github.com/noah-isme/teamerp-api/internal/middleware"
	"github.com/noah-isme/teamerp-api/internal/models"
	"github.com/noah-isme/teamerp-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	ActivityHandler     *handler.ActivityHandler
	NotificationHandler *handler.NotificationHandler
	ReportHandler       *handler.ReportHandler
	TaskHandler         *handler.TaskHandler
	JWTMiddleware       fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	api.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.NotificationHandler != nil {
		notifications := api.Group("/notifications", jwtMiddleware)
		notifications.Use("/read-all", middleware.RateLimit("notifications-read-all", 5, time.Minute))
		deps.NotificationHandler.Register(notifications)
	}

	if deps.ReportHandler != nil {
		reports := api.Group("/reports", jwtMiddleware)
		deps.ReportHandler.RegisterUser(reports)
	}

	if deps.TaskHandler != nil {
		tasks := api.Group("/tasks", jwtMiddleware)
		deps.TaskHandler.Register(tasks)
	}

	admin := api.Group("/admin", jwtMiddleware, middleware.RequireRole(models.RoleAdmin))
	if deps.ActivityHandler != nil {
		deps.ActivityHandler.Register(admin.Group("/activities"))
	}
	if deps.ReportHandler != nil {
		deps.ReportHandler.RegisterAdmin(admin.Group("/reports"))
	}
}
