package handlers

import (
	"context"
	"errors"
	"time"

	"noteshare/internal/clients/mongo"
	"noteshare/internal/logger"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// HealthzTimeout bounds all dependency checks of one probe
const HealthzTimeout = 5 * time.Second

var errMongoNotInitialized = errors.New("database not initialized")

// Check probes one dependency
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

// MongoCheck pings the primary of the shared Mongo client
func MongoCheck() Check {
	return Check{
		Name: "mongo",
		Ping: func(ctx context.Context) error {
			db := mongo.DB()
			if db == nil {
				return errMongoNotInitialized
			}
			return db.Client().Ping(ctx, readpref.Primary())
		},
	}
}

// HealthResponse reports overall and per-dependency status
type HealthResponse struct {
	Status string            `json:"status" example:"ok"`
	Checks map[string]string `json:"checks"`
}

// Healthz runs every check and reports 503 if any fails.
// @Summary Health check
// @Description Pings Mongo and, when configured, Redis
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /healthz [get]
func Healthz(checks ...Check) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), HealthzTimeout)
		defer cancel()

		resp := HealthResponse{Status: "ok", Checks: make(map[string]string, len(checks))}
		for _, check := range checks {
			if err := check.Ping(ctx); err != nil {
				logger.L().Warn("health check failed", "check", check.Name, "error", err)
				resp.Status = "down"
				resp.Checks[check.Name] = err.Error()
				continue
			}
			resp.Checks[check.Name] = "ok"
		}

		if resp.Status != "ok" {
			return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
		}
		return c.JSON(resp)
	}
}
