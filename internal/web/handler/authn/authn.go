// Package authn implements the authentication endpoints: credential login,
// WhatsApp phone bootstrap, logout, token refresh and token validation.
package authn

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	coreauth "github.com/ambulancia-platform/ms-auth/internal/auth"
	"github.com/ambulancia-platform/ms-auth/internal/config"
	"github.com/ambulancia-platform/ms-auth/internal/web/handler"
	authmw "github.com/ambulancia-platform/ms-auth/internal/web/middleware/auth"
)

const (
	// Path is the base path of the authentication routes.
	Path = "/auth"
)

// Service is the authentication handler service.
type Service struct {
	cfg  *config.Config
	auth *coreauth.Service
}

// Handler is the authentication handler.
var Handler = Service{}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type whatsAppRequest struct {
	Phone string `json:"phone" validate:"required"`
}

type validateRequest struct {
	Token string `json:"token" validate:"required"`
}

// Init initializes the authentication handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, authService *coreauth.Service) error {
	if app == nil || cfg == nil || authService == nil {
		return errors.New(handler.ErrNilACSFatalLogMsg)
	}

	s.cfg = cfg
	s.auth = authService

	app.Route(Path, func(router fiber.Router) {
		router.Post("/login", s.Login)
		router.Post("/whatsapp", s.LoginWhatsApp)
		router.Post("/validate", s.ValidateToken)
		router.Post("/logout", authmw.RequireAuthenticated(), s.Logout)
		router.Post("/refresh", authmw.RequireAuthenticated(), s.Refresh)
	})

	return nil
}

// Login handles credential authentication.
func (s *Service) Login(c *fiber.Ctx) error {
	var req loginRequest

	if err := handler.ParseAndValidate(c, &req); err != nil {
		return handler.FailMalformed(c, err)
	}

	result, err := s.auth.Login(req.Email, req.Password)
	if err != nil {
		return handler.Fail(c, err)
	}

	log.Info().Uint64("user_id", result.User.ID).Msg("credential login")

	return handler.OK(c, "authentication successful", result)
}

// LoginWhatsApp handles phone bootstrap authentication. Unknown numbers are
// provisioned on the fly, flagged as new accounts in the result.
func (s *Service) LoginWhatsApp(c *fiber.Ctx) error {
	var req whatsAppRequest

	if err := handler.ParseAndValidate(c, &req); err != nil {
		return handler.FailMalformed(c, err)
	}

	result, err := s.auth.LoginWhatsApp(req.Phone)
	if err != nil {
		return handler.Fail(c, err)
	}

	log.Info().Uint64("user_id", result.User.ID).Bool("new_account", result.NewAccount).
		Msg("whatsapp login")

	return handler.OK(c, "authentication successful", result)
}

// Logout revokes the token that authenticated this request.
func (s *Service) Logout(c *fiber.Ctx) error {
	record, ok := authmw.CurrentToken(c)
	if !ok {
		return handler.Fail(c, coreauth.ErrPermissionDenied)
	}

	if err := s.auth.Logout(record); err != nil {
		return handler.Fail(c, err)
	}

	return handler.OK(c, "session closed", nil)
}

// Refresh revokes the presenting token and issues a fresh one.
func (s *Service) Refresh(c *fiber.Ctx) error {
	record, ok := authmw.CurrentToken(c)
	if !ok {
		return handler.Fail(c, coreauth.ErrPermissionDenied)
	}

	result, err := s.auth.Refresh(record)
	if err != nil {
		return handler.Fail(c, err)
	}

	return handler.OK(c, "token refreshed", result)
}

// ValidateToken reports a strict valid/invalid decision for a presented token.
func (s *Service) ValidateToken(c *fiber.Ctx) error {
	var req validateRequest

	if err := handler.ParseAndValidate(c, &req); err != nil {
		return handler.FailMalformed(c, err)
	}

	return c.JSON(s.auth.ValidateToken(req.Token))
}
