package cmd

import (
	"github.com/bluebay-mechanical/field-service-api/config"
	"github.com/bluebay-mechanical/field-service-api/logger"
	"github.com/spf13/cobra"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := bootstrap(); err != nil {
				return err
			}
			defer logger.Sync()

			if err := config.AutoMigrate(config.GetDB()); err != nil {
				return err
			}
			logger.L().Info("database migration completed")
			return nil
		},
	}
}
