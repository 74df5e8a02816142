package daemon

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/ambulancia-platform/ms-auth/internal/authz"
	"github.com/ambulancia-platform/ms-auth/internal/config"
	"github.com/ambulancia-platform/ms-auth/internal/db/models"
)

// seedPermissions is the platform permission catalog.
var seedPermissions = []struct {
	name        string
	description string
}{
	{"view-users", "list user accounts"},
	{"view-user", "view a single user account"},
	{"create-user", "create user accounts"},
	{"edit-user", "edit user accounts"},
	{"delete-user", "delete user accounts"},
	{"view-ambulances", "view the ambulance fleet"},
	{"manage-ambulances", "manage the ambulance fleet"},
	{"view-dispatches", "view dispatch records"},
	{"create-dispatch", "create dispatch records"},
	{"update-dispatch", "update dispatch records"},
	{"view-patients", "view patient records"},
	{"create-patient", "create patient records"},
	{"edit-patient", "edit patient records"},
	{"view-reports", "view operational reports"},
	{"export-reports", "export operational reports"},
	{"manage-roles", "manage roles and their grants"},
	{"manage-permissions", "manage the permission catalog"},
	{"manage-settings", "manage platform settings"},
}

// seedRoles maps each role to its permission grants. The admin role gets
// every permission of the catalog.
var seedRoles = []struct {
	name        string
	description string
	grants      []string
}{
	{"admin", "full platform access", nil},
	{"paramedic", "field paramedic", []string{
		"view-patients",
		"create-patient",
		"edit-patient",
		"view-ambulances",
		"view-dispatches",
	}},
	{"dispatcher", "dispatch operator", []string{
		"view-users",
		"view-ambulances",
		"manage-ambulances",
		"view-dispatches",
		"create-dispatch",
		"update-dispatch",
		"view-patients",
	}},
	{"hospital", "hospital staff", []string{
		"view-patients",
		"edit-patient",
		"view-reports",
		"export-reports",
	}},
	{"doctor", "attending physician", []string{
		"view-patients",
		"edit-patient",
		"view-reports",
		"export-reports",
	}},
	{"system", "automated integrations", []string{
		"create-patient",
		"view-ambulances",
		"create-dispatch",
		"view-dispatches",
	}},
}

// Seed provisions the permission catalog and the role grants. It is
// idempotent: re-running creates no duplicate rows and realigns grants that
// drifted from the catalog.
func Seed(cfg *config.Config, db *gorm.DB) error {
	engine := authz.NewEngine(db, cfg.Auth.Guard)

	for _, p := range seedPermissions {
		if _, err := engine.EnsurePermission(p.name, p.description); err != nil {
			return errors.Wrapf(err, "seed permission %q", p.name)
		}
	}

	allGrants := make([]string, 0, len(seedPermissions))
	for _, p := range seedPermissions {
		allGrants = append(allGrants, p.name)
	}

	for _, r := range seedRoles {
		role, err := engine.EnsureRole(r.name, r.description)
		if err != nil {
			return errors.Wrapf(err, "seed role %q", r.name)
		}

		grants := r.grants
		if grants == nil {
			grants = allGrants
		}

		if err := engine.SyncRolePermissions(role.ID, grants); err != nil {
			return errors.Wrapf(err, "seed grants for role %q", r.name)
		}
	}

	log.Info().Int("permissions", len(seedPermissions)).Int("roles", len(seedRoles)).
		Msg("role and permission catalog seeded")

	return nil
}

// SeedAdmin creates the initial administrator account if no user with the
// given email exists yet.
func SeedAdmin(cfg *config.Config, db *gorm.DB, name, email, password string) error {
	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return errors.Wrap(err, "check admin account")
	}

	if count > 0 {
		log.Warn().Str("email", email).Msg("admin account already exists")
		return nil
	}

	admin := models.User{
		Name:     name,
		Email:    email,
		Password: models.HashPassword(password),
		Status:   models.UserStatusActive,
	}

	if err := db.Create(&admin).Error; err != nil {
		return errors.Wrap(err, "create admin account")
	}

	engine := authz.NewEngine(db, cfg.Auth.Guard)
	if err := engine.AssignRoleByName(admin.ID, "admin"); err != nil {
		return errors.Wrap(err, "assign admin role")
	}

	log.Info().Str("email", email).Msg("admin account created")

	return nil
}
