package main

import (
	"fmt"

	"github.com/jrazmi/userdir/infrastructure/databases/postgresdb"
	"github.com/jrazmi/userdir/schema"
	"github.com/jrazmi/userdir/sdk/logger"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log := logger.New(cfg.Log)

		pool, err := postgresdb.New(cfg.Database, postgresdb.WithLogger(log.Logger))
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer pool.Close()

		return postgresdb.Migrate(cmd.Context(), log, pool, schema.MigrationsFS, schema.MigrationsDir)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
