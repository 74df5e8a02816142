// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"

	"github.com/ambulancia-platform/ms-auth/internal/config"
)

var (
	cfg        config.Config
	configPath string // Path to the configuration directory

	rootCmd = &cobra.Command{
		Use:   "ms-auth",
		Short: "ms-auth is the authentication service of the ambulance platform",
		Long: `ms-auth is the authentication and authorization service of the
ambulance field operations platform. It handles credential and WhatsApp
phone logins, bearer token lifecycle and role based access control.`,
		Args: cobra.OnlyValidArgs,
	}
)

func init() { //nolint: gochecknoinits
	rootCmd.PersistentFlags().StringVar(
		&configPath,
		"config",
		"",
		"Path to the configuration directory (default ./etc/)",
	)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig reads the configuration and initializes the logger.
func loadConfig() error {
	var err error

	if cfg, err = config.ReadConfig(configPath); err != nil {
		return err
	}

	return initLogger()
}
