// Package cmd holds the command line entry points of the API.
package cmd

import (
	"fmt"
	"os"

	"github.com/bluebay-mechanical/field-service-api/config"
	"github.com/bluebay-mechanical/field-service-api/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Version is set at build time
var Version = "dev"

// NewRootCommand builds the command tree
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "field-service-api",
		Short:         "Blue Bay Mechanical field service back office API",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCommand())
	root.AddCommand(newMigrateCommand())
	root.AddCommand(newSeedCommand())
	return root
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap loads configuration, installs the logger and opens the
// database. Every command starts here.
func bootstrap() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	config.SetConfig(cfg)

	log, err := logger.New(cfg.LogLevel, cfg.LogEncoding)
	if err != nil {
		return nil, err
	}
	logger.Set(log)
	if cfg.EnvFile != "" {
		log.Info("loaded environment file", zap.String("file", cfg.EnvFile))
	}

	if err := config.ConnectDatabase(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
