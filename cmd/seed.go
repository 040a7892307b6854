package cmd

import (
	"encoding/json"
	"errors"

	"github.com/bluebay-mechanical/field-service-api/config"
	"github.com/bluebay-mechanical/field-service-api/logger"
	"github.com/bluebay-mechanical/field-service-api/seeds"
	"github.com/spf13/cobra"
)

var errRefuseProduction = errors.New("refusing to seed a production environment")

func newSeedCommand() *cobra.Command {
	var opts seeds.Options

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the database with development fixtures",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := bootstrap()
			if err != nil {
				return err
			}
			defer logger.Sync()

			if cfg.IsProduction() {
				return errRefuseProduction
			}

			db := config.GetDB()
			if err := config.AutoMigrate(db); err != nil {
				return err
			}

			result, err := seeds.Run(cmd.Context(), db, opts)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}

	cmd.Flags().IntVar(&opts.Clients, "clients", 25, "number of clients to generate")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "random seed, 0 for a random data set")
	return cmd
}
