package config

import (
	"github.com/ambulancia-platform/ms-auth/internal/logger"
)

// Auth holds the authentication policy settings.
type Auth struct {
	// Guard is the authorization namespace all role and permission lookups
	// of this instance are pinned to.
	Guard string

	// TokenTTLHours is the bearer token lifetime policy in hours.
	TokenTTLHours int

	// BootstrapRole is assigned to accounts provisioned through the
	// phone bootstrap login.
	BootstrapRole string

	// PlaceholderEmailDomain is used to synthesize emails for
	// phone-provisioned accounts.
	PlaceholderEmailDomain string
}

const (
	defaultGuard                  = "api"
	defaultTokenTTLHours          = 24
	defaultBootstrapRole          = "paramedic"
	defaultPlaceholderEmailDomain = "ambulancia.local"
)

// withDefaults fills in the auth policy defaults for unset fields.
func (a Auth) withDefaults() Auth {
	if a.Guard == "" {
		a.Guard = defaultGuard
	}

	if a.TokenTTLHours == 0 {
		a.TokenTTLHours = defaultTokenTTLHours
	}

	if a.BootstrapRole == "" {
		a.BootstrapRole = defaultBootstrapRole
	}

	if a.PlaceholderEmailDomain == "" {
		a.PlaceholderEmailDomain = defaultPlaceholderEmailDomain
	}

	return a
}

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Log       logger.Log
	Title     string
	Auth      Auth
	Webserver Webserver
}

// Webserver implement webserver settings.
type Webserver struct {
	CleanPath      bool   // use clean path middleware to allow multi slash requests
	DisableRecover bool   // disable recover middleware
	Domain         string // domain name for the webserver
	Port           int    // listening port for the webserver
	ShutDownTime   int    // wait time for shutdown
	URL            string // base url for the webserver
}
