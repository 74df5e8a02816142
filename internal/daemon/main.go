// Package daemon assembles the service: storage, migrations, seed data and
// the web facade.
package daemon

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog/log"
	gormmysql "gorm.io/driver/mysql"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/ambulancia-platform/ms-auth/internal/config"
	"github.com/ambulancia-platform/ms-auth/internal/db/dsn"
	"github.com/ambulancia-platform/ms-auth/internal/db/models"
	"github.com/ambulancia-platform/ms-auth/internal/web"
)

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	webService *web.Service
}

// Start starts the Daemon's web service and blocks until shutdown.
func (d *Daemon) Start() error {
	go d.webService.WaitShutdown()

	return d.webService.Start(fmt.Sprintf(":%d", d.cfg.Webserver.Port))
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) *Daemon {
	if cfg == nil {
		log.Fatal().Msg("config is nil")
		return nil
	}

	db, err := OpenDB(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	if err = Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	if err = Seed(cfg, db); err != nil {
		log.Fatal().Err(err).Msg("failed to seed database")
	}

	return &Daemon{
		cfg:        cfg,
		webService: web.New(cfg, db),
	}
}

// OpenDB opens the gorm handle for the configured engine.
func OpenDB(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.DB.GormEngine {
	case "postgres":
		dialector = gormpostgres.Open(dsn.CreatePostgres(cfg))
	case "sqlite":
		dialector = sqlite.Open(cfg.DB.SQLitePath)
	default:
		dialector = gormmysql.Open(dsn.Create(cfg))
	}

	return gorm.Open(dialector, &gorm.Config{})
}

// Migrate applies the schema for all models.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Permission{},
		&models.RoleAssignment{},
		&models.RolePermission{},
		&models.AccessToken{},
	)
}
