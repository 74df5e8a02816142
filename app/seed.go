package app

import (
	"github.com/spf13/cobra"

	"github.com/ambulancia-platform/ms-auth/internal/daemon"
)

func init() { //nolint: gochecknoinits
	rootCmd.AddCommand(seedCmd)
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the role and permission catalog",
	Long: `Seed migrates the schema and provisions the permission catalog and
the role grants. Safe to re-run: existing rows are kept, drifted grants are
realigned.`,
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

		return daemon.Seed(&cfg, db)
	},
}
