package cmd

import (
	"invoiceflow/database"
	"invoiceflow/logger"

	"github.com/spf13/cobra"
)

var migrateSchema string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate the public schema and every tenant schema",
	Example: `  # Migrate everything
  invoiceflow migrate

  # Migrate a single tenant
  invoiceflow migrate --schema acme_gmbh`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.WithComponent("migrate")

		if err := database.Connect(cfg); err != nil {
			return err
		}
		if migrateSchema != "" {
			if err := database.MigrateTenantSchema(migrateSchema); err != nil {
				return err
			}
			log.Info().Str("schema", migrateSchema).Msg("Tenant schema migrated")
			return nil
		}
		if err := database.MigrateAll(); err != nil {
			return err
		}
		log.Info().Msg("All schemas migrated")
		return nil
	},
}

func init() {
	migrateCmd.Flags().StringVar(&migrateSchema, "schema", "", "migrate only this tenant schema")
	rootCmd.AddCommand(migrateCmd)
}
