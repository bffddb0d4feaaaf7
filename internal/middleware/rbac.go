package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/teamerp-api/internal/utils"
)

// RequireRole rejects requests whose session role is not in the allowed set.
// Runs after JWTProtected, which binds user_role; a missing role is treated
// the same as an unknown one.
func RequireRole(roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		if normalized := normalizeRole(role); normalized != "" {
			allowed[normalized] = struct{}{}
		}
	}

	return func(c *fiber.Ctx) error {
		role := ""
		switch v := c.Locals("user_role").(type) {
		case nil:
		case string:
			role = normalizeRole(v)
		case fmt.Stringer:
			role = normalizeRole(v.String())
		default:
			role = normalizeRole(fmt.Sprintf("%v", v))
		}

		if _, ok := allowed[role]; !ok {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}
		return c.Next()
	}
}

func normalizeRole(role string) string {
	return strings.ToLower(strings.TrimSpace(role))
}
