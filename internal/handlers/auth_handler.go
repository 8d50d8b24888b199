package handlers

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/dto"
	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	otp      *services.OTPService
	sessions *services.SessionService
}

func NewAuthHandler(otp *services.OTPService, sessions *services.SessionService) *AuthHandler {
	return &AuthHandler{otp: otp, sessions: sessions}
}

// RequestCode emails a verification code the citizen needs to submit a report.
func (h *AuthHandler) RequestCode(c *fiber.Ctx) error {
	var req dto.RequestCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid_body", "Invalid request body")
	}

	if err := h.otp.RequestCode(c.UserContext(), req.Email); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Verification code sent"})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid_body", "Invalid request body")
	}
	if req.Username == "" || req.Password == "" {
		return fail(c, fiber.StatusBadRequest, "validation_error", "Username and password are required")
	}

	res, err := h.sessions.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
		}
		return respondError(c, err)
	}

	return c.JSON(dto.LoginResponse{
		AccessToken: res.Token,
		TokenType:   "bearer",
		Username:    res.User.Username,
		Name:        res.User.Name,
		ExpiresAt:   res.ExpiresAt,
	})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	id := middleware.GetIdentity(c)
	return c.JSON(dto.MeResponse{ID: id.UserID, Username: id.Username, Name: id.Name})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.sessions.Logout(c.UserContext(), middleware.GetIdentity(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Logged out successfully"})
}
