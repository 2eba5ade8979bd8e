package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/trentd187/domino-tournament/internal/models"
	"github.com/trentd187/domino-tournament/internal/tournament"
)

// TotalsRequest is the body of PUT /api/v1/rounds/:round/tables/:table/totals.
type TotalsRequest struct {
	Side1 int `json:"side1"`
	Side2 int `json:"side2"`
}

// PlayerScoresRequest is the body of PUT /api/v1/rounds/:round/tables/:table/scores.
// Scores is keyed by position letter.
type PlayerScoresRequest struct {
	Winner models.Partnership                        `json:"winner"`
	Scores map[models.Position]tournament.ScoreInput `json:"scores"`
}

// StatusRequest is the body of PUT /api/v1/rounds/:round/tables/:table/status.
type StatusRequest struct {
	Status models.TableState `json:"status"`
}

func roundAndTable(c *fiber.Ctx) (int, int, bool) {
	round, ok := intParam(c, "round")
	if !ok {
		return 0, 0, false
	}
	table, ok := intParam(c, "table")
	return round, table, ok
}

// GetTable handles GET /api/v1/rounds/:round/tables/:table: the table sheet read model.
func GetTable(svc *tournament.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		round, table, ok := roundAndTable(c)
		if !ok {
			return badRequest(c, "round and table must be positive integers")
		}
		sheet, err := svc.TableSheet(c.UserContext(), round, table)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(sheet)
	}
}

// SaveTotals handles PUT /api/v1/rounds/:round/tables/:table/totals.
func SaveTotals(svc *tournament.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		round, table, ok := roundAndTable(c)
		if !ok {
			return badRequest(c, "round and table must be positive integers")
		}
		var req TotalsRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body")
		}
		res, err := svc.SaveTablePoints(c.UserContext(), round, table, req.Side1, req.Side2)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(res)
	}
}

// SavePlayerScores handles PUT /api/v1/rounds/:round/tables/:table/scores.
func SavePlayerScores(svc *tournament.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		round, table, ok := roundAndTable(c)
		if !ok {
			return badRequest(c, "round and table must be positive integers")
		}
		var req PlayerScoresRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body")
		}
		rows, err := svc.SavePlayerScores(c.UserContext(), round, table, req.Scores, req.Winner)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(rows)
	}
}

// SetTableStatus handles PUT /api/v1/rounds/:round/tables/:table/status.
func SetTableStatus(svc *tournament.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		round, table, ok := roundAndTable(c)
		if !ok {
			return badRequest(c, "round and table must be positive integers")
		}
		var req StatusRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body")
		}
		if err := svc.SetTableStatus(c.UserContext(), round, table, req.Status); err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"round": round, "table": table, "status": req.Status})
	}
}
