package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/staff-service/internal/api/dto"
	"github.com/spec-kit/staff-service/internal/auth"
	"github.com/spec-kit/staff-service/internal/service"
	apperrors "github.com/spec-kit/staff-service/pkg/util"
)

const (
	msgLoginRequested = "If your email exists in our system, you will receive a login link shortly"
	msgResetRequested = "If your email exists in our system, you will receive a password reset token shortly"
)

// AuthHandler exposes the login, refresh and password reset endpoints.
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RequestLogin handles POST /requestlogin. The response never reveals
// whether the email is registered.
func (h *AuthHandler) RequestLogin(c *fiber.Ctx) error {
	var req dto.RequestLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := h.authService.RequestLogin(c.UserContext(), req.Email); err != nil {
		return err
	}
	return c.JSON(dto.OKMessage(msgLoginRequested))
}

// Login handles POST /login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	result, err := h.authService.CompleteLogin(c.UserContext(), req.Token)
	if err != nil {
		return err
	}
	resp := dto.OK(loginResponse(result))
	resp.Message = "Login successful"
	return c.JSON(resp)
}

// Refresh handles POST /refresh.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.RefreshToken == "" {
		return apperrors.NewValidationError("Refresh token is required", map[string]any{"refresh_token": "required"})
	}
	result, err := h.authService.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(loginResponse(result)))
}

// CurrentUser handles GET /getCurrentUser.
func (h *AuthHandler) CurrentUser(c *fiber.Ctx) error {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return apperrors.NewAuthenticationRequired()
	}
	staff, err := h.authService.CurrentUser(c.UserContext(), claims)
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(dto.NewIdentity(staff)))
}

// RequestPasswordReset handles POST /requestPasswordReset.
func (h *AuthHandler) RequestPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := h.authService.RequestPasswordReset(c.UserContext(), req.Email); err != nil {
		return err
	}
	return c.JSON(dto.OKMessage(msgResetRequested))
}

// ResetPassword handles POST /resetPassword.
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req dto.PasswordResetConfirmRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := h.authService.ResetPassword(c.UserContext(), req.Token, req.Password); err != nil {
		return err
	}
	return c.JSON(dto.OKMessage("Password reset successful"))
}

func loginResponse(result *service.LoginResult) dto.LoginResponse {
	return dto.LoginResponse{
		Token:        result.Tokens.AccessToken,
		RefreshToken: result.Tokens.RefreshToken,
		Staff:        dto.NewIdentity(result.Staff),
	}
}
