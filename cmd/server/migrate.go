package main

import (
	"fmt"

	"github.com/brianmay/penguin-nurse/internal/storage"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		defer logger.Sync()

		if cfg.DBType != "postgres" {
			fmt.Fprintf(cmd.OutOrStdout(), "storage backend %q has no migrations\n", cfg.DBType)
			return nil
		}
		p, err := storage.NewPostgresStorage(cmd.Context(), cfg.DBDSN, logger)
		if err != nil {
			return err
		}
		defer p.Close()
		if err := p.Migrate(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
