package authz

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/ambulancia-platform/ms-auth/internal/db/models"
)

// Engine resolves roles and permissions for one guard namespace.
type Engine struct {
	db    *gorm.DB
	guard string
}

// NewEngine creates an authorization engine pinned to the given guard.
func NewEngine(db *gorm.DB, guard string) *Engine {
	return &Engine{db: db, guard: guard}
}

// Guard returns the guard namespace this engine is pinned to.
func (e *Engine) Guard() string {
	return e.guard
}

// EffectivePermissions returns the deduplicated union of permission names
// granted by every role assigned to the user. A user without roles gets an
// empty slice, not an error.
func (e *Engine) EffectivePermissions(userID uint64) ([]string, error) {
	var permissions []string

	err := e.db.Table("permissions").
		Select("DISTINCT permissions.name").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Joins("JOIN role_assignments ON role_assignments.role_id = role_permissions.role_id").
		Where("role_assignments.user_id = ? AND permissions.guard = ?", userID, e.guard).
		Order("permissions.name").
		Pluck("permissions.name", &permissions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get user permissions: %w", err)
	}

	if permissions == nil {
		permissions = []string{}
	}

	return permissions, nil
}

// EffectivePermissionModels returns the full permission rows of the user's
// effective permission set, for callers that need ids and descriptions.
func (e *Engine) EffectivePermissionModels(userID uint64) ([]models.Permission, error) {
	var permissions []models.Permission

	err := e.db.Table("permissions").
		Select("DISTINCT permissions.*").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Joins("JOIN role_assignments ON role_assignments.role_id = role_permissions.role_id").
		Where("role_assignments.user_id = ? AND permissions.guard = ?", userID, e.guard).
		Order("permissions.name").
		Find(&permissions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get user permissions: %w", err)
	}

	return permissions, nil
}

// HasPermission checks if a user has a specific permission through any of
// their assigned roles.
func (e *Engine) HasPermission(userID uint64, permission string) (bool, error) {
	var count int64

	err := e.db.Table("permissions").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Joins("JOIN role_assignments ON role_assignments.role_id = role_permissions.role_id").
		Where("role_assignments.user_id = ? AND permissions.name = ? AND permissions.guard = ?",
			userID, permission, e.guard).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check permission: %w", err)
	}

	return count > 0, nil
}

// HasAnyPermission checks if a user has at least one of the given permissions.
func (e *Engine) HasAnyPermission(userID uint64, permissions []string) (bool, error) {
	if len(permissions) == 0 {
		return false, nil
	}

	for _, perm := range permissions {
		has, err := e.HasPermission(userID, perm)
		if err != nil {
			return false, err
		}

		if has {
			return true, nil
		}
	}

	return false, nil
}

// HasRole checks if the user is assigned the named role under this guard.
func (e *Engine) HasRole(userID uint64, roleName string) (bool, error) {
	var count int64

	err := e.db.Table("roles").
		Joins("JOIN role_assignments ON role_assignments.role_id = roles.id").
		Where("role_assignments.user_id = ? AND roles.name = ? AND roles.guard = ?",
			userID, roleName, e.guard).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check role: %w", err)
	}

	return count > 0, nil
}

// RolesOf returns all roles assigned to the user under this guard.
func (e *Engine) RolesOf(userID uint64) ([]models.Role, error) {
	var roles []models.Role

	err := e.db.Table("roles").
		Joins("JOIN role_assignments ON role_assignments.role_id = roles.id").
		Where("role_assignments.user_id = ? AND roles.guard = ?", userID, e.guard).
		Order("roles.name").
		Find(&roles).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get user roles: %w", err)
	}

	return roles, nil
}

// AssignRole adds a user-role edge. The operation is idempotent: assigning an
// already assigned role is not an error and never duplicates the edge.
func (e *Engine) AssignRole(userID uint64, roleID uint) error {
	if err := e.requireUser(userID); err != nil {
		return err
	}

	if _, err := e.RoleByID(roleID); err != nil {
		return err
	}

	assignment := models.RoleAssignment{UserID: userID, RoleID: roleID}

	err := e.db.Where("user_id = ? AND role_id = ?", userID, roleID).
		FirstOrCreate(&assignment).Error
	if err != nil {
		return fmt.Errorf("failed to assign role: %w", err)
	}

	return nil
}

// AssignRoleByName resolves the role by name under this guard and assigns it.
func (e *Engine) AssignRoleByName(userID uint64, roleName string) error {
	role, err := e.RoleByName(roleName)
	if err != nil {
		return err
	}

	return e.AssignRole(userID, role.ID)
}

// RemoveRole deletes a user-role edge. Removing an edge that does not exist
// is not an error; the referenced user and role must exist.
func (e *Engine) RemoveRole(userID uint64, roleID uint) error {
	if err := e.requireUser(userID); err != nil {
		return err
	}

	if _, err := e.RoleByID(roleID); err != nil {
		return err
	}

	err := e.db.Where("user_id = ? AND role_id = ?", userID, roleID).
		Delete(&models.RoleAssignment{}).Error
	if err != nil {
		return fmt.Errorf("failed to remove role: %w", err)
	}

	return nil
}

// RemoveAllRoles drops every role assignment of the user.
// Used as part of user deletion cleanup.
func (e *Engine) RemoveAllRoles(userID uint64) error {
	err := e.db.Where("user_id = ?", userID).
		Delete(&models.RoleAssignment{}).Error
	if err != nil {
		return fmt.Errorf("failed to remove role assignments: %w", err)
	}

	return nil
}

// Roles returns all roles under this guard.
func (e *Engine) Roles() ([]models.Role, error) {
	var roles []models.Role

	err := e.db.Where("guard = ?", e.guard).Order("name").Find(&roles).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}

	return roles, nil
}

// Permissions returns all permissions under this guard.
func (e *Engine) Permissions() ([]models.Permission, error) {
	var permissions []models.Permission

	err := e.db.Where("guard = ?", e.guard).Order("name").Find(&permissions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list permissions: %w", err)
	}

	return permissions, nil
}

// RoleByID retrieves a role by id, restricted to this guard.
func (e *Engine) RoleByID(roleID uint) (*models.Role, error) {
	var role models.Role

	err := e.db.Where("id = ? AND guard = ?", roleID, e.guard).First(&role).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}

		return nil, fmt.Errorf("failed to get role: %w", err)
	}

	return &role, nil
}

// RoleByName retrieves a role by name under this guard.
func (e *Engine) RoleByName(name string) (*models.Role, error) {
	var role models.Role

	err := e.db.Where("name = ? AND guard = ?", name, e.guard).First(&role).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}

		return nil, fmt.Errorf("failed to get role: %w", err)
	}

	return &role, nil
}

// PermissionsForRole returns the permissions granted to one role.
func (e *Engine) PermissionsForRole(roleID uint) ([]models.Permission, error) {
	var permissions []models.Permission

	err := e.db.Table("permissions").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Where("role_permissions.role_id = ? AND permissions.guard = ?", roleID, e.guard).
		Order("permissions.name").
		Find(&permissions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get role permissions: %w", err)
	}

	return permissions, nil
}

// EnsureRole creates the role under this guard if it does not exist yet and
// returns it. Safe to call repeatedly.
func (e *Engine) EnsureRole(name, description string) (*models.Role, error) {
	role := models.Role{Name: name, Guard: e.guard, Description: description}

	err := e.db.Where("name = ? AND guard = ?", name, e.guard).
		FirstOrCreate(&role).Error
	if err != nil {
		return nil, fmt.Errorf("failed to ensure role: %w", err)
	}

	return &role, nil
}

// EnsurePermission creates the permission under this guard if it does not
// exist yet and returns it. Safe to call repeatedly.
func (e *Engine) EnsurePermission(name, description string) (*models.Permission, error) {
	permission := models.Permission{Name: name, Guard: e.guard, Description: description}

	err := e.db.Where("name = ? AND guard = ?", name, e.guard).
		FirstOrCreate(&permission).Error
	if err != nil {
		return nil, fmt.Errorf("failed to ensure permission: %w", err)
	}

	return &permission, nil
}

// SyncRolePermissions replaces the role's grants with exactly the named
// permissions. Unknown permission names are rejected with
// ErrPermissionNotFound before anything is written.
func (e *Engine) SyncRolePermissions(roleID uint, permissionNames []string) error {
	if _, err := e.RoleByID(roleID); err != nil {
		return err
	}

	var permissions []models.Permission

	if len(permissionNames) > 0 {
		err := e.db.Where("name IN ? AND guard = ?", permissionNames, e.guard).
			Find(&permissions).Error
		if err != nil {
			return fmt.Errorf("failed to resolve permissions: %w", err)
		}

		if len(permissions) != len(permissionNames) {
			return ErrPermissionNotFound
		}
	}

	return e.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", roleID).
			Delete(&models.RolePermission{}).Error; err != nil {
			return fmt.Errorf("failed to clear role permissions: %w", err)
		}

		for _, permission := range permissions {
			grant := models.RolePermission{RoleID: roleID, PermissionID: permission.ID}
			if err := tx.Create(&grant).Error; err != nil {
				return fmt.Errorf("failed to grant permission: %w", err)
			}
		}

		return nil
	})
}

// requireUser verifies the referenced user row exists.
func (e *Engine) requireUser(userID uint64) error {
	var count int64

	err := e.db.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error
	if err != nil {
		return fmt.Errorf("failed to check user: %w", err)
	}

	if count == 0 {
		return ErrUserNotFound
	}

	return nil
}
