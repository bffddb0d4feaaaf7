package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/teamerp-api/internal/config"
	"github.com/noah-isme/teamerp-api/internal/utils"
)

var processStart = time.Now()

// HealthResponse is the liveness payload.
type HealthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Service     string    `json:"service"`
	Environment string    `json:"environment"`
	Uptime      string    `json:"uptime"`
}

// HealthCheck reports process liveness. Dependency health is left to the
// metrics endpoint; this route must stay cheap enough for aggressive probes.
func HealthCheck(cfg config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return utils.SendSuccess(c, "service healthy", HealthResponse{
			Status:      "ok",
			Timestamp:   time.Now().UTC(),
			Service:     cfg.AppName,
			Environment: cfg.AppEnv,
			Uptime:      time.Since(processStart).Round(time.Second).String(),
		})
	}
}
