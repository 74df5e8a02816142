// Package me implements the endpoints returning the caller's own identity.
package me

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	coreauth "github.com/ambulancia-platform/ms-auth/internal/auth"
	"github.com/ambulancia-platform/ms-auth/internal/config"
	"github.com/ambulancia-platform/ms-auth/internal/web/handler"
	authmw "github.com/ambulancia-platform/ms-auth/internal/web/middleware/auth"
)

const (
	// Path is the base path of the identity routes.
	Path = "/me"
)

// Service is the identity handler service.
type Service struct {
	cfg  *config.Config
	auth *coreauth.Service
}

// Handler is the identity handler.
var Handler = Service{}

// Init initializes the identity handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, authService *coreauth.Service) error {
	if app == nil || cfg == nil || authService == nil {
		return errors.New(handler.ErrNilACSFatalLogMsg)
	}

	s.cfg = cfg
	s.auth = authService

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RootPath, authmw.RequireAuthenticated(), s.Get)
		router.Get("/permissions", authmw.RequireAuthenticated(), s.Permissions)
	})

	return nil
}

// Get returns the resolved profile of the authenticated user.
func (s *Service) Get(c *fiber.Ctx) error {
	user, ok := authmw.CurrentUser(c)
	if !ok {
		return handler.Fail(c, coreauth.ErrPermissionDenied)
	}

	profile, err := s.auth.GetUser(user.ID)
	if err != nil {
		return handler.Fail(c, err)
	}

	return handler.OK(c, "ok", profile)
}

// Permissions returns the caller's effective permission set, resolved live.
func (s *Service) Permissions(c *fiber.Ctx) error {
	user, ok := authmw.CurrentUser(c)
	if !ok {
		return handler.Fail(c, coreauth.ErrPermissionDenied)
	}

	permissions, err := s.auth.Engine().EffectivePermissionModels(user.ID)
	if err != nil {
		return handler.Fail(c, err)
	}

	out := make([]coreauth.PermissionInfo, 0, len(permissions))
	for _, permission := range permissions {
		out = append(out, coreauth.PermissionInfo{
			ID:          permission.ID,
			Name:        permission.Name,
			Description: permission.Description,
		})
	}

	return handler.OK(c, "ok", out)
}
