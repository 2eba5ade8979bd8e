package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/trentd187/domino-tournament/internal/tournament"
)

// ListRounds handles GET /api/v1/rounds: the round numbers that have been seated.
func ListRounds(svc *tournament.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rounds, err := svc.Rounds(c.UserContext())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"rounds": rounds, "max_rounds": svc.MaxRounds()})
	}
}

// GenerateRound handles POST /api/v1/rounds/:round. Seats the round (replacing an unscored
// earlier seating) and returns the tables plus the players left out.
func GenerateRound(svc *tournament.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		round, ok := intParam(c, "round")
		if !ok {
			return badRequest(c, "round must be a positive integer")
		}
		a, err := svc.GenerateRound(c.UserContext(), round)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(a)
	}
}

// GetRound handles GET /api/v1/rounds/:round.
func GetRound(svc *tournament.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		round, ok := intParam(c, "round")
		if !ok {
			return badRequest(c, "round must be a positive integer")
		}
		view, err := svc.RoundAssignment(c.UserContext(), round)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(view)
	}
}

// GetRoundSeats handles GET /api/v1/rounds/:round/seats: the seat list ordered by player id.
func GetRoundSeats(svc *tournament.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		round, ok := intParam(c, "round")
		if !ok {
			return badRequest(c, "round must be a positive integer")
		}
		list, err := svc.RoundSeatList(c.UserContext(), round)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(list)
	}
}
