package main

import (
	"github.com/spf13/cobra"
	"github.com/vytor/flashrun/internal/db"
	"github.com/vytor/flashrun/internal/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		database, err := db.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		logger.Info("migrations applied to %s", cfg.DBPath)
		return database.Close()
	},
}
