package models

import "time"

// RoleAssignment represents the many-to-many relationship between users and roles.
// This junction table maps which roles are assigned to which users.
// The composite primary key makes the edge naturally idempotent: assigning the
// same role twice cannot produce a duplicate row.
type RoleAssignment struct {
	// UserID is the ID of the user in this assignment.
	UserID uint64 `gorm:"primaryKey;column:user_id"`
	// RoleID is the ID of the role in this assignment.
	RoleID uint `gorm:"primaryKey;column:role_id"`
	// User is the associated user (loaded via foreign key).
	// When a user is deleted, all their role assignments are automatically removed (CASCADE).
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	// Role is the associated role (loaded via foreign key).
	Role Role `gorm:"foreignKey:RoleID;constraint:OnDelete:CASCADE"`
	// CreatedAt is the timestamp when the role was assigned (managed by GORM).
	CreatedAt time.Time
}

// TableName specifies the database table name for the RoleAssignment model.
// This overrides GORM's default pluralized table naming.
func (RoleAssignment) TableName() string {
	return "role_assignments"
}
