package models

import "time"

// Permission represents a specific capability in the authorization system.
// Permissions are assigned to roles, which are then assigned to users.
// Like roles, a permission name is only unique together with its guard.
type Permission struct {
	// ID is the unique identifier for the permission.
	ID uint `gorm:"primaryKey"`
	// Name is the permission identifier (e.g., "view-patients", "manage-roles").
	Name string `gorm:"size:100;not null;uniqueIndex:idx_permissions_name_guard"`
	// Guard is the authorization namespace the permission belongs to.
	Guard string `gorm:"size:50;not null;uniqueIndex:idx_permissions_name_guard"`
	// Description provides a human-readable explanation of what this permission grants.
	Description string `gorm:"size:255"`
	// CreatedAt is the timestamp when the permission was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the permission was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Permission model.
// This overrides GORM's default pluralized table naming.
func (Permission) TableName() string {
	return "permissions"
}
