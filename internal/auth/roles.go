package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/staff-service/internal/domain"
	apperrors "github.com/spec-kit/staff-service/pkg/util"
)

// RequireRoles ensures the authenticated staff member holds one of the
// allowed roles. It must run after AuthMiddleware.Handle.
func RequireRoles(allowed ...domain.StaffRole) fiber.Handler {
	allowedSet := make(map[domain.StaffRole]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		claims, ok := ClaimsFromContext(c)
		if !ok {
			return apperrors.NewAuthenticationRequired()
		}
		if _, exists := allowedSet[claims.Role]; !exists {
			return apperrors.NewAccessDenied()
		}
		return c.Next()
	}
}

// RequireAdmin restricts a route to the admin role.
func RequireAdmin() fiber.Handler {
	return RequireRoles(domain.StaffRoleAdmin)
}
