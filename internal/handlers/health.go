package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Pinger is anything that can report whether the store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthCheck handles GET /health. No authentication.
// It's used by:
//   - the venue's supervisor script, to restart the server when it stops answering
//   - a second scoring desk, to check the server is up before pointing at it
//
// When db is non-nil the store is pinged too, so a lost shared folder shows up as 503
// instead of failing the next save.
func HealthCheck(db Pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if db == nil {
			// fiber.Map is shorthand for map[string]interface{}; c.JSON sends it with 200 OK.
			return c.JSON(fiber.Map{"status": "ok"})
		}

		// Bound the ping so a hung network share answers 503 within two seconds.
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "degraded",
				"store":  "unreachable",
			})
		}
		return c.JSON(fiber.Map{"status": "ok", "store": "ok"})
	}
}
