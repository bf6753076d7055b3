package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"c2ms/internal/platform/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending SQL migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		pool, err := db.Connect(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer pool.Close()
		if err := db.Migrate(cmd.Context(), pool, cfg.MigrationsDir); err != nil {
			return err
		}
		slog.Info("migrations applied", "dir", cfg.MigrationsDir)
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Ensure the bootstrap administrator exists",
	RunE: func(cmd *cobra.Command, args []string) error {
		pool, err := db.Connect(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer pool.Close()
		return db.Seed(cmd.Context(), pool, cfg)
	},
}
