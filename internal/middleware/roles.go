package middleware

// roles.go: role-based access control.
// The app has two roles: organizer and scorer. Reads need no role at all.

import "github.com/gofiber/fiber/v2"

// RequireRole allows only requests whose role (set by Auth) is one of roles, and answers
// 403 otherwise. It takes a variadic list so one call can admit several roles:
//
//	api.Put("/rounds/:round/tables/:table/totals", middleware.RequireRole(middleware.RoleOrganizer, middleware.RoleScorer), h)
//
// RequireRole must run after Auth, because Auth is what stores "userRole" in c.Locals.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// c.Locals holds per-request values set by earlier handlers. The .(string) type
		// assertion gives ok=false when Auth never ran or stored something else.
		userRole, ok := c.Locals("userRole").(string)
		if !ok || userRole == "" {
			// 403 rather than 401: the caller may hold a valid token with no role in it.
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "forbidden",
			})
		}

		// Let the request through on the first matching role.
		for _, role := range roles {
			if userRole == role {
				return c.Next()
			}
		}

		// Authenticated, but a scorer asking for an organizer route.
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "insufficient permissions",
		})
	}
}
