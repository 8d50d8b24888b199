package middleware

import (
	"context"
	"errors"

	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/dto"
	"github.com/ahmetcoskunkizilkaya/citizen-reports/internal/services"
	"github.com/gofiber/fiber/v2"
)

const identityKey = "identity"

type Authenticator interface {
	Authenticate(ctx context.Context, header string) (*services.Identity, error)
}

// SessionRequired rejects requests without a valid staff bearer token.
func SessionRequired(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := auth.Authenticate(c.UserContext(), c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return unauthorized(c, err)
		}
		c.Locals(identityKey, id)
		return c.Next()
	}
}

// OptionalSession attaches the staff identity when a valid token is sent
// and lets anonymous requests through. A present but bad token is still
// rejected.
func OptionalSession(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return c.Next()
		}
		id, err := auth.Authenticate(c.UserContext(), header)
		if err != nil {
			return unauthorized(c, err)
		}
		c.Locals(identityKey, id)
		return c.Next()
	}
}

// GetIdentity returns the authenticated staff user, or nil.
func GetIdentity(c *fiber.Ctx) *services.Identity {
	id, _ := c.Locals(identityKey).(*services.Identity)
	return id
}

func unauthorized(c *fiber.Ctx, err error) error {
	code := "invalid_session"
	switch {
	case errors.Is(err, services.ErrMissingHeader):
		code = "missing_authorization"
	case errors.Is(err, services.ErrMalformedHeader):
		code = "malformed_authorization"
	case errors.Is(err, services.ErrExpiredSession):
		code = "session_expired"
	case errors.Is(err, services.ErrInvalidSession):
	default:
		return err
	}
	c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error: true, Message: err.Error(), Code: code,
	})
}
