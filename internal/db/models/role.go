package models

import "time"

// Role represents a role in the role-based access control (RBAC) system.
// Roles are collections of permissions that can be assigned to users.
// A role name is only unique together with its guard: "admin" under guard
// "api" and "admin" under another guard are distinct entities.
type Role struct {
	// ID is the unique identifier for the role.
	ID uint `gorm:"primaryKey"`
	// Name is the name of the role (e.g., "admin", "paramedic").
	Name string `gorm:"size:100;not null;uniqueIndex:idx_roles_name_guard"`
	// Guard is the authorization namespace the role belongs to.
	Guard string `gorm:"size:50;not null;uniqueIndex:idx_roles_name_guard"`
	// Description provides a human-readable description of the role's purpose.
	Description string `gorm:"size:255"`
	// CreatedAt is the timestamp when the role was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the role was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Role model.
// This overrides GORM's default pluralized table naming.
func (Role) TableName() string {
	return "roles"
}
