package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/ohse-platform/incident-backend/internal/dto"
	"github.com/ohse-platform/incident-backend/internal/roles"
)

// RequireRole gates a route on the JWT role claim being one of the
// allowed catalogue roles. The lifecycle guards re-check the role against
// the transition table; this middleware just rejects obvious mismatches
// early.
func RequireRole(allowed ...roles.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claim, err := GetRole(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}
		for _, role := range allowed {
			if claim == role.String() {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "Insufficient role",
		})
	}
}
