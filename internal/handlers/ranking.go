package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/trentd187/domino-tournament/internal/tournament"
)

// GetRanking handles GET /api/v1/ranking.
func GetRanking(svc *tournament.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rows, err := svc.Ranking(c.UserContext())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(rows)
	}
}

// Recompute handles POST /api/v1/ranking/recompute. Concurrent requests share one run.
func Recompute(svc *tournament.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		standings, err := svc.Recompute(c.UserContext())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(standings)
	}
}
