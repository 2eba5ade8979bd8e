// Package handlers contains the HTTP route handlers for the domino tournament API.
//
// Each exported function follows the "handler factory" pattern: it takes the dependencies
// it needs (usually the *tournament.Service) and returns a fiber.Handler. Routes are wired
// in internal/server.
package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/trentd187/domino-tournament/internal/tournament"
)

// statusFor maps a tournament error kind to an HTTP status.
func statusFor(kind tournament.Kind) int {
	switch kind {
	case tournament.KindValidation:
		return fiber.StatusBadRequest
	case tournament.KindConflict:
		return fiber.StatusConflict
	case tournament.KindNotFound:
		return fiber.StatusNotFound
	case tournament.KindStore:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes err as {"error": ..., "kind": ...}. Store failures carry only the
// generic message; the cause was already logged by the service.
func respondError(c *fiber.Ctx, err error) error {
	kind := tournament.KindOf(err)
	if kind == "" {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal error",
		})
	}
	body := fiber.Map{"error": err.Error(), "kind": kind}
	if kind == tournament.KindStore {
		body["retryable"] = true
	}
	return c.Status(statusFor(kind)).JSON(body)
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": msg,
		"kind":  tournament.KindValidation,
	})
}

// intParam reads a positive integer route parameter.
func intParam(c *fiber.Ctx, name string) (int, bool) {
	n, err := strconv.Atoi(c.Params(name))
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
