package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/staff-service/pkg/util"
)

const claimsKey = "auth_claims"

// CredentialVerifier resolves an access credential to its claims.
type CredentialVerifier interface {
	Verify(tokenStr string) (*Claims, error)
}

// AuthMiddleware validates bearer credentials and attaches the claim set.
type AuthMiddleware struct {
	verifier CredentialVerifier
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(verifier CredentialVerifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return apperrors.NewAuthenticationRequired()
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return apperrors.NewAuthenticationRequired()
	}

	claims, err := m.verifier.Verify(strings.TrimSpace(parts[1]))
	if err != nil {
		return apperrors.NewInvalidCredential(err)
	}

	c.Locals(claimsKey, claims)
	return c.Next()
}

// ClaimsFromContext retrieves the authenticated identity.
func ClaimsFromContext(c *fiber.Ctx) (*Claims, bool) {
	claims, ok := c.Locals(claimsKey).(*Claims)
	return claims, ok && claims != nil
}
