package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/vytor/flashrun/internal/api"
	"github.com/vytor/flashrun/internal/jobs"
	"github.com/vytor/flashrun/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server and the run expiry sweeper",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		log := logger.Default()

		log.Info("===========================================")
		log.Info("flashrun server starting")
		log.Info("===========================================")
		log.Debug("addr=%s", cfg.Addr)
		log.Debug("db_path=%s", cfg.DBPath)
		log.Debug("log_level=%s", cfg.LogLevel)
		log.Debug("run_code_length=%d", cfg.RunCodeLength)
		log.Debug("run_code_ttl=%v", cfg.RunCodeTTL)
		log.Debug("expiry_sweep_interval=%v", cfg.ExpirySweepInterval)
		log.Debug("answer_max_attempts=%d", cfg.AnswerMaxAttempts)

		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		defer a.close()

		scheduler := jobs.NewScheduler()
		if err := scheduler.Every(cfg.ExpirySweepInterval, &jobs.ExpireRunsJob{Runs: a.runs}); err != nil {
			return err
		}
		scheduler.Start()

		srv := &api.Server{
			DeckService:     a.decks,
			RunService:      a.runs,
			PracticeService: a.practice,
			Health:          a.db,
		}

		httpServer := &http.Server{
			Addr:         cfg.Addr,
			Handler:      srv.Routes(),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			log.Info("HTTP server listening on %s", cfg.Addr)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errCh <- err
			}
		}()

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

		var serveErr error
		select {
		case sig := <-stop:
			log.Info("received signal %v, initiating graceful shutdown", sig)
		case serveErr = <-errCh:
			log.Error("HTTP server error: %v", serveErr)
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		log.Debug("stopping scheduler")
		scheduler.Stop()

		log.Debug("shutting down HTTP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP server shutdown error: %v", err)
		}

		log.Info("===========================================")
		log.Info("flashrun server stopped")
		log.Info("===========================================")
		return serveErr
	},
}
