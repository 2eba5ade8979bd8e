package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/trentd187/domino-tournament/internal/tournament"
)

// AdjustmentRequest is the JSON body of POST /api/v1/players/:id/adjustments.
type AdjustmentRequest struct {
	Delta  int    `json:"delta"`
	Reason string `json:"reason"`
}

// ListPlayers handles GET /api/v1/players.
func ListPlayers(svc *tournament.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		players, err := svc.ListPlayers(c.UserContext())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"players": players, "count": len(players)})
	}
}

// CreatePlayer handles POST /api/v1/players. Requires the organizer role.
func CreatePlayer(svc *tournament.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req tournament.PlayerInput
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body")
		}
		p, err := svc.Register(c.UserContext(), req)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(p)
	}
}

// ApplyAdjustment handles POST /api/v1/players/:id/adjustments.
func ApplyAdjustment(svc *tournament.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := intParam(c, "id")
		if !ok {
			return badRequest(c, "player id must be a positive integer")
		}
		var req AdjustmentRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body")
		}
		adj, err := svc.ApplyAdjustment(c.UserContext(), id, req.Delta, req.Reason)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(adj)
	}
}

// ListAdjustments handles GET /api/v1/players/:id/adjustments.
func ListAdjustments(svc *tournament.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := intParam(c, "id")
		if !ok {
			return badRequest(c, "player id must be a positive integer")
		}
		rows, err := svc.Adjustments(c.UserContext(), id)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(rows)
	}
}
