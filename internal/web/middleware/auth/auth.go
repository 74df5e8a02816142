// Package auth provides the bearer token middleware for the web service.
//
// The middleware resolves the presented token once per request and stores
// the owning user and the token record in the request locals. Handlers and
// gates read the identity from there; nothing in the core reads ambient
// state.
package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	coreauth "github.com/ambulancia-platform/ms-auth/internal/auth"
	"github.com/ambulancia-platform/ms-auth/internal/db/models"
	"github.com/ambulancia-platform/ms-auth/internal/token"
)

const (
	localsUserKey  = "auth_user"
	localsTokenKey = "auth_token"

	bearerPrefix = "Bearer "
)

// New creates the middleware that resolves bearer tokens. Requests without a
// usable token pass through unauthenticated; protected routes reject them
// via RequireAuthenticated or a permission gate.
func New(db *gorm.DB, svc *coreauth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(header, bearerPrefix) {
			return c.Next()
		}

		record, err := svc.Ledger().Validate(strings.TrimPrefix(header, bearerPrefix))
		if err != nil {
			// invalid and malformed tokens simply leave the request
			// unauthenticated; unexpected faults are worth a log line
			if !errors.Is(err, token.ErrInvalid) && !errors.Is(err, token.ErrMalformed) {
				log.Error().Err(err).Msg("bearer token lookup failed")
			}

			return c.Next()
		}

		var user models.User
		if err := db.First(&user, record.UserID).Error; err != nil {
			log.Warn().Err(err).Uint64("user_id", record.UserID).
				Msg("token owner not found")

			return c.Next()
		}

		if !user.IsActive() {
			return c.Next()
		}

		c.Locals(localsUserKey, &user)
		c.Locals(localsTokenKey, record)

		return c.Next()
	}
}

// CurrentUser returns the authenticated user of the request, if any.
func CurrentUser(c *fiber.Ctx) (*models.User, bool) {
	user, ok := c.Locals(localsUserKey).(*models.User)
	return user, ok && user != nil
}

// CurrentToken returns the token record that authenticated the request, if any.
func CurrentToken(c *fiber.Ctx) (*models.AccessToken, bool) {
	record, ok := c.Locals(localsTokenKey).(*models.AccessToken)
	return record, ok && record != nil
}

// RequireAuthenticated rejects requests that carry no valid bearer token.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := CurrentUser(c); !ok {
			return unauthorized(c)
		}

		return c.Next()
	}
}

// RequirePermission creates middleware that requires a specific permission.
// The check runs against the live role and grant edges, not the token's
// ability snapshot, so role edits take effect immediately.
func RequirePermission(svc *coreauth.Service, permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := CurrentUser(c)
		if !ok {
			return unauthorized(c)
		}

		hasPermission, err := svc.Engine().HasPermission(user.ID, permission)
		if err != nil {
			log.Error().Err(err).Uint64("user_id", user.ID).Str("permission", permission).
				Msg("failed to check permission")

			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "internal server error",
			})
		}

		if !hasPermission {
			log.Warn().Uint64("user_id", user.ID).Str("permission", permission).
				Msg("user lacks required permission")

			return forbidden(c)
		}

		return c.Next()
	}
}

// RequireRole creates middleware that requires a specific role.
func RequireRole(svc *coreauth.Service, role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := CurrentUser(c)
		if !ok {
			return unauthorized(c)
		}

		hasRole, err := svc.Engine().HasRole(user.ID, role)
		if err != nil {
			log.Error().Err(err).Uint64("user_id", user.ID).Str("role", role).
				Msg("failed to check role")

			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "internal server error",
			})
		}

		if !hasRole {
			log.Warn().Uint64("user_id", user.ID).Str("role", role).
				Msg("user lacks required role")

			return forbidden(c)
		}

		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"success": false,
		"message": "authentication required",
	})
}

func forbidden(c *fiber.Ctx) error {
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
		"success": false,
		"message": "insufficient role or permission",
	})
}
