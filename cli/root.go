// Package cli implements the briefroll command tree: generate and print
// the daily brief, render .brief files, inspect command streams, run the
// HTTP console and the morning schedule.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fkorte/briefroll/config"
	"github.com/fkorte/briefroll/logger"
)

// version is stamped at build time via -ldflags "-X .../cli.version=...".
var version = "dev"

var (
	cfgFile  string
	logLevel string

	rootCmd = &cobra.Command{
		Use:   "briefroll",
		Short: "Personalized daily briefs for thermal receipt printers",
		Long: `briefroll renders a personalized morning brief - weather, unread mail,
appointments, tasks and a shopping list - onto 58mm thermal receipt paper.
One layout pass drives all outputs, so the PNG preview, the ESC/POS stream
and the plain-text mirror always show the same wrapped lines.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
)

// Execute runs the CLI; main reports the returned error and exits 1.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML config file (optional; .env and env vars still apply)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log level: debug, info, warn or error")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(*cobra.Command, []string) {
			fmt.Printf("briefroll %s\n", version)
		},
	})
}

// newApp loads config and logging for a command invocation.
func newApp() (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return &app{cfg: cfg, log: log}, nil
}
