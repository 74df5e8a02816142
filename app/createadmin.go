package app

import (
	"github.com/spf13/cobra"

	"github.com/ambulancia-platform/ms-auth/internal/daemon"
)

var (
	adminName     string
	adminEmail    string
	adminPassword string
)

func init() { //nolint: gochecknoinits
	createAdminCmd.Flags().StringVar(&adminName, "name", "Administrator", "Display name of the admin account")
	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "Email of the admin account")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "Password of the admin account")

	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("password")

	rootCmd.AddCommand(createAdminCmd)
}

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Provision an administrator account",
	PreRun: func(_ *cobra.Command, _ []string) {
		if err := loadConfig(); err != nil {
			panic(err)
		}
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		db, err := daemon.OpenDB(&cfg)
		if err != nil {
			return err
		}

		if err := daemon.Migrate(db); err != nil {
			return err
		}

		if err := daemon.Seed(&cfg, db); err != nil {
			return err
		}

		return daemon.SeedAdmin(&cfg, db, adminName, adminEmail, adminPassword)
	},
}
