// Package permission implements the permission catalog endpoint.
package permission

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	coreauth "github.com/ambulancia-platform/ms-auth/internal/auth"
	"github.com/ambulancia-platform/ms-auth/internal/config"
	"github.com/ambulancia-platform/ms-auth/internal/web/handler"
	authmw "github.com/ambulancia-platform/ms-auth/internal/web/middleware/auth"
)

const (
	// Path is the base path of the permission routes.
	Path = "/permissions"

	// PermManageRoles gates the catalog; permissions are only of interest
	// to whoever edits role grants.
	PermManageRoles = "manage-roles"
)

// Service is the permission handler service.
type Service struct {
	cfg  *config.Config
	auth *coreauth.Service
}

// Handler is the permission handler.
var Handler = Service{}

// Init initializes the permission handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, authService *coreauth.Service) error {
	if app == nil || cfg == nil || authService == nil {
		return errors.New(handler.ErrNilACSFatalLogMsg)
	}

	s.cfg = cfg
	s.auth = authService

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RootPath, authmw.RequirePermission(authService, PermManageRoles), s.List)
	})

	return nil
}

// List returns the permission catalog of the guard.
func (s *Service) List(c *fiber.Ctx) error {
	permissions, err := s.auth.Engine().Permissions()
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
