// Package role implements the role catalog endpoints.
package role

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	coreauth "github.com/ambulancia-platform/ms-auth/internal/auth"
	"github.com/ambulancia-platform/ms-auth/internal/config"
	"github.com/ambulancia-platform/ms-auth/internal/web/handler"
	authmw "github.com/ambulancia-platform/ms-auth/internal/web/middleware/auth"
)

const (
	// Path is the base path of the role routes.
	Path = "/roles"

	// PermManageRoles gates the role catalog.
	PermManageRoles = "manage-roles"
)

// Service is the role handler service.
type Service struct {
	cfg  *config.Config
	auth *coreauth.Service
}

// Handler is the role handler.
var Handler = Service{}

type roleWithGrants struct {
	coreauth.RoleInfo
	Permissions []coreauth.PermissionInfo `json:"permissions"`
}

// Init initializes the role handler.
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

// List returns every role of the guard with its permission grants.
func (s *Service) List(c *fiber.Ctx) error {
	roles, err := s.auth.Engine().Roles()
	if err != nil {
		return handler.Fail(c, err)
	}

	out := make([]roleWithGrants, 0, len(roles))

	for _, role := range roles {
		grants, err := s.auth.Engine().PermissionsForRole(role.ID)
		if err != nil {
			return handler.Fail(c, err)
		}

		permissions := make([]coreauth.PermissionInfo, 0, len(grants))
		for _, grant := range grants {
			permissions = append(permissions, coreauth.PermissionInfo{
				ID:          grant.ID,
				Name:        grant.Name,
				Description: grant.Description,
			})
		}

		out = append(out, roleWithGrants{
			RoleInfo: coreauth.RoleInfo{
				ID:          role.ID,
				Name:        role.Name,
				Description: role.Description,
			},
			Permissions: permissions,
		})
	}

	return handler.OK(c, "ok", out)
}
