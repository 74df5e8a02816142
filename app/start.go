package app

import (
	"github.com/spf13/cobra"

	"github.com/ambulancia-platform/ms-auth/internal/daemon"
	"github.com/ambulancia-platform/ms-auth/internal/logger"
)

var devMode bool

func init() { //nolint: gochecknoinits
	startCmd.Flags().BoolVar(&devMode, "dev", false, "Enable dev mode")

	rootCmd.AddCommand(startCmd)
}

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the authentication web service",
	PreRun: func(_ *cobra.Command, _ []string) {
		if err := loadConfig(); err != nil {
			panic(err)
		}

		if devMode {
			cfg.DevMode = true
		}
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return daemon.New(&cfg).Start()
	},
}

func initLogger() error {
	return logger.Init(cfg.Log)
}
