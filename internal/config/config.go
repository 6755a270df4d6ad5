package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr                string
	DBPath              string
	LogLevel            string
	RunCodeLength       int
	RunCodeTTL          time.Duration
	ExpirySweepInterval time.Duration
	AnswerMaxAttempts   int
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:                envOr("ADDR", ":8080"),
		DBPath:              envOr("DB_PATH", "file:flashrun.db"),
		LogLevel:            envOr("LOG_LEVEL", "INFO"),
		RunCodeLength:       envIntOr("RUN_CODE_LENGTH", 6),
		RunCodeTTL:          time.Duration(envIntOr("RUN_CODE_TTL_MINUTES", 120)) * time.Minute,
		ExpirySweepInterval: envDurationOr("EXPIRY_SWEEP_INTERVAL", time.Minute),
		AnswerMaxAttempts:   envIntOr("ANSWER_MAX_ATTEMPTS", 3),
	}
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []string
	if strings.TrimSpace(c.Addr) == "" {
		errs = append(errs, "ADDR cannot be empty")
	}
	if strings.TrimSpace(c.DBPath) == "" {
		errs = append(errs, "DB_PATH cannot be empty")
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		errs = append(errs, fmt.Sprintf("LOG_LEVEL %q is not one of DEBUG, INFO, WARN, ERROR", c.LogLevel))
	}
	if c.RunCodeLength < 4 || c.RunCodeLength > 12 {
		errs = append(errs, fmt.Sprintf("RUN_CODE_LENGTH must be between 4 and 12, got %d", c.RunCodeLength))
	}
	if c.RunCodeTTL <= 0 {
		errs = append(errs, "RUN_CODE_TTL_MINUTES must be positive")
	}
	if c.ExpirySweepInterval <= 0 {
		errs = append(errs, "EXPIRY_SWEEP_INTERVAL must be positive")
	}
	if c.AnswerMaxAttempts < 1 || c.AnswerMaxAttempts > 10 {
		errs = append(errs, fmt.Sprintf("ANSWER_MAX_ATTEMPTS must be between 1 and 10, got %d", c.AnswerMaxAttempts))
	}
	if len(errs) > 0 {
		return errors.New("invalid configuration: " + strings.Join(errs, "; "))
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func envDurationOr(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("invalid value for %s=%q, using default %s", key, v, def)
	}
	return def
}
