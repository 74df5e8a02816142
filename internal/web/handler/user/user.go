// Package user implements the administrative user management endpoints.
package user

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	coreauth "github.com/ambulancia-platform/ms-auth/internal/auth"
	"github.com/ambulancia-platform/ms-auth/internal/config"
	"github.com/ambulancia-platform/ms-auth/internal/web/handler"
	authmw "github.com/ambulancia-platform/ms-auth/internal/web/middleware/auth"
)

const (
	// Path is the base path of the user management routes.
	Path = "/users"

	// Permissions gating the individual routes, from the seeded catalog.
	PermViewUsers   = "view-users"
	PermViewUser    = "view-user"
	PermCreateUser  = "create-user"
	PermEditUser    = "edit-user"
	PermDeleteUser  = "delete-user"
	PermManageRoles = "manage-roles"
)

// Service is the user management handler service.
type Service struct {
	cfg  *config.Config
	auth *coreauth.Service
}

// Handler is the user management handler.
var Handler = Service{}

type createRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" validate:"required,min=8"`
	RoleIDs  []uint `json:"roleIds"`
}

type updateRequest struct {
	Name   *string `json:"name"`
	Email  *string `json:"email" validate:"omitempty,email"`
	Phone  *string `json:"phone"`
	Status *string `json:"status" validate:"omitempty,oneof=active inactive"`
}

// Init initializes the user management handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, authService *coreauth.Service) error {
	if app == nil || cfg == nil || authService == nil {
		return errors.New(handler.ErrNilACSFatalLogMsg)
	}

	s.cfg = cfg
	s.auth = authService

	gate := func(permission string) fiber.Handler {
		return authmw.RequirePermission(authService, permission)
	}

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RootPath, gate(PermViewUsers), s.List)
		router.Post(handler.RootPath, gate(PermCreateUser), s.Create)
		router.Get("/:id", gate(PermViewUser), s.Get)
		router.Put("/:id", gate(PermEditUser), s.Update)
		router.Delete("/:id", gate(PermDeleteUser), s.Delete)
		router.Post("/:id/roles/:roleID", gate(PermManageRoles), s.AssignRole)
		router.Delete("/:id/roles/:roleID", gate(PermManageRoles), s.RemoveRole)
	})

	return nil
}

// List returns a page of user profiles.
func (s *Service) List(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	perPage := c.QueryInt("perPage", 0)

	profiles, pagination, err := s.auth.ListUsers(page, perPage)
	if err != nil {
		return handler.Fail(c, err)
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"message":    "ok",
		"data":       profiles,
		"pagination": pagination,
	})
}

// Get returns a single user profile.
func (s *Service) Get(c *fiber.Ctx) error {
	userID, err := paramID(c, "id")
	if err != nil {
		return handler.FailMalformed(c, err)
	}

	profile, err := s.auth.GetUser(userID)
	if err != nil {
		return handler.Fail(c, err)
	}

	return handler.OK(c, "ok", profile)
}

// Create provisions a user account with an optional initial role set.
func (s *Service) Create(c *fiber.Ctx) error {
	var req createRequest

	if err := handler.ParseAndValidate(c, &req); err != nil {
		return handler.FailMalformed(c, err)
	}

	profile, err := s.auth.CreateUser(coreauth.CreateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
		RoleIDs:  req.RoleIDs,
	})
	if err != nil {
		return handler.Fail(c, err)
	}

	log.Info().Uint64("user_id", profile.ID).Str("email", profile.Email).
		Msg("user created")

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "user created",
		"data":    profile,
	})
}

// Update applies a partial profile edit. Deactivating an account revokes all
// of its tokens.
func (s *Service) Update(c *fiber.Ctx) error {
	userID, err := paramID(c, "id")
	if err != nil {
		return handler.FailMalformed(c, err)
	}

	var req updateRequest

	if err := handler.ParseAndValidate(c, &req); err != nil {
		return handler.FailMalformed(c, err)
	}

	profile, err := s.auth.UpdateUser(userID, coreauth.UpdateUserInput{
		Name:   req.Name,
		Email:  req.Email,
		Phone:  req.Phone,
		Status: req.Status,
	})
	if err != nil {
		return handler.Fail(c, err)
	}

	return handler.OK(c, "user updated", profile)
}

// Delete removes a user account. Self-deletion is rejected.
func (s *Service) Delete(c *fiber.Ctx) error {
	userID, err := paramID(c, "id")
	if err != nil {
		return handler.FailMalformed(c, err)
	}

	actor, ok := authmw.CurrentUser(c)
	if !ok {
		return handler.Fail(c, coreauth.ErrPermissionDenied)
	}

	if err := s.auth.DeleteUser(actor.ID, userID); err != nil {
		return handler.Fail(c, err)
	}

	log.Info().Uint64("user_id", userID).Uint64("actor_id", actor.ID).
		Msg("user deleted")

	return handler.OK(c, "user deleted", nil)
}

// AssignRole grants a role to a user and returns the refreshed profile.
func (s *Service) AssignRole(c *fiber.Ctx) error {
	userID, roleID, err := paramIDs(c)
	if err != nil {
		return handler.FailMalformed(c, err)
	}

	profile, err := s.auth.AssignRole(userID, roleID)
	if err != nil {
		return handler.Fail(c, err)
	}

	return handler.OK(c, "role assigned", profile)
}

// RemoveRole revokes a role from a user and returns the refreshed profile.
func (s *Service) RemoveRole(c *fiber.Ctx) error {
	userID, roleID, err := paramIDs(c)
	if err != nil {
		return handler.FailMalformed(c, err)
	}

	profile, err := s.auth.RemoveRole(userID, roleID)
	if err != nil {
		return handler.Fail(c, err)
	}

	return handler.OK(c, "role removed", profile)
}

func paramID(c *fiber.Ctx, name string) (uint64, error) {
	return strconv.ParseUint(c.Params(name), 10, 64)
}

func paramIDs(c *fiber.Ctx) (uint64, uint, error) {
	userID, err := paramID(c, "id")
	if err != nil {
		return 0, 0, err
	}

	roleID, err := strconv.ParseUint(c.Params("roleID"), 10, 32)
	if err != nil {
		return 0, 0, err
	}

	return userID, uint(roleID), nil
}
