package main

import (
	"github.com/spf13/cobra"
	"github.com/vytor/flashrun/internal/config"
	"github.com/vytor/flashrun/internal/db"
	"github.com/vytor/flashrun/internal/logger"
	"github.com/vytor/flashrun/internal/repository/sqlite"
	"github.com/vytor/flashrun/internal/services"
)

var rootCmd = &cobra.Command{
	Use:           "flashrun",
	Short:         "Adaptive flashcard practice runs",
	Long:          "flashrun serves time-boxed flashcard practice runs that adapt card selection to each student's answers.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides DB_PATH env var)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(sweepCmd)
}

// loadConfig reads the environment, applies flag overrides and installs the default logger.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Load()
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.DBPath = p
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)
	return cfg, nil
}

type app struct {
	db       *db.DB
	decks    services.DeckService
	runs     services.RunService
	practice services.PracticeService
}

func newApp(cfg config.Config) (*app, error) {
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	deckRepo := sqlite.NewDeckRepository(database.DB)
	runRepo := sqlite.NewRunRepository(database.DB)
	playerRepo := sqlite.NewPlayerRepository(database.DB)
	stateStore := sqlite.NewStateStore(database.DB)

	return &app{
		db:    database,
		decks: services.NewDeckService(deckRepo, nil),
		runs: services.NewRunService(deckRepo, runRepo, playerRepo, services.RunOptions{
			CodeLength: cfg.RunCodeLength,
			TTL:        cfg.RunCodeTTL,
		}),
		practice: services.NewPracticeService(runRepo, playerRepo, stateStore, services.PracticeOptions{
			MaxAttempts: cfg.AnswerMaxAttempts,
		}),
	}, nil
}

func (a *app) close() {
	logger.Debug("closing database connection")
	if err := a.db.Close(); err != nil {
		logger.Warn("failed to close database: %v", err)
	}
}
