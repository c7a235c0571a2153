package auth

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/staff-service/internal/domain"
	apperrors "github.com/spec-kit/staff-service/pkg/util"
)

// statusErrorHandler renders DomainErrors as their HTTP status only.
func statusErrorHandler(c *fiber.Ctx, err error) error {
	return c.SendStatus(apperrors.ToDomainError(err).HTTPStatus)
}

func newProtectedApp(verifier CredentialVerifier, guards ...fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: statusErrorHandler})
	handlers := append([]fiber.Handler{NewAuthMiddleware(verifier).Handle}, guards...)
	handlers = append(handlers, func(c *fiber.Ctx) error {
		claims, ok := ClaimsFromContext(c)
		if !ok {
			return errors.New("claims missing")
		}
		return c.SendString(string(claims.Role) + ":" + claims.ID)
	})
	app.Get("/protected", handlers...)
	return app
}

func bearer(t *testing.T, app *fiber.App, header string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if header != "" {
		req.Header.Set(fiber.HeaderAuthorization, header)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestAuthMiddleware(t *testing.T) {
	minter := NewSessionMinter("access-secret", "refresh-secret", time.Hour, time.Hour)
	pair, err := minter.Mint(testStaff())
	require.NoError(t, err)
	app := newProtectedApp(minter)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + pair.AccessToken, http.StatusUnauthorized},
		{"empty bearer", "Bearer   ", http.StatusUnauthorized},
		{"refresh credential", "Bearer " + pair.RefreshToken, http.StatusUnauthorized},
		{"garbage", "Bearer abc.def.ghi", http.StatusUnauthorized},
		{"valid", "Bearer " + pair.AccessToken, http.StatusOK},
		{"lowercase scheme", "bearer " + pair.AccessToken, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := bearer(t, app, tt.header)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestAuthMiddleware_ErrorCodes(t *testing.T) {
	minter := NewSessionMinter("access-secret", "refresh-secret", time.Hour, time.Hour)
	mw := NewAuthMiddleware(minter)
	app := fiber.New(fiber.Config{ErrorHandler: func(c *fiber.Ctx, err error) error {
		return c.SendString(apperrors.ToDomainError(err).Code)
	}})
	app.Get("/protected", mw.Handle, func(c *fiber.Ctx) error { return nil })

	resp := bearer(t, app, "")
	body := readBody(t, resp)
	assert.Equal(t, apperrors.CodeAuthenticationRequired, body)

	resp = bearer(t, app, "Bearer nope")
	body = readBody(t, resp)
	assert.Equal(t, apperrors.CodeInvalidCredential, body)
}

func TestRequireAdmin(t *testing.T) {
	minter := NewSessionMinter("access-secret", "refresh-secret", time.Hour, time.Hour)
	app := newProtectedApp(minter, RequireAdmin())

	admin, err := minter.Mint(testStaff())
	require.NoError(t, err)
	member := testStaff()
	member.Role = domain.StaffRoleUser
	user, err := minter.Mint(member)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, bearer(t, app, "Bearer "+admin.AccessToken).StatusCode)
	assert.Equal(t, http.StatusForbidden, bearer(t, app, "Bearer "+user.AccessToken).StatusCode)
	assert.Equal(t, http.StatusUnauthorized, bearer(t, app, "").StatusCode)
}

func TestRequireRoles_WithoutAuthentication(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: statusErrorHandler})
	app.Get("/protected", RequireRoles(domain.StaffRoleUser), func(c *fiber.Ctx) error { return nil })

	assert.Equal(t, http.StatusUnauthorized, bearer(t, app, "").StatusCode)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}
