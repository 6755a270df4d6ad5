package main

import (
	"os"

	"github.com/vytor/flashrun/internal/logger"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}
