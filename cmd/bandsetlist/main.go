package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"bandsetlist/shared/go/config"
	"bandsetlist/shared/go/logging"
)

var logger zerolog.Logger

var rootCmd = &cobra.Command{
	Use:           "bandsetlist",
	Short:         "Setlist generation for working bands",
	Long:          "bandsetlist keeps a band's song catalog and builds setlists that fit a performance slot.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// setupLogging builds the process logger from the logging section.
func setupLogging(cfg config.LoggingConfig) {
	logger = logging.New(logging.Config{
		Level:  cfg.Level,
		Format: cfg.Format,
		Output: os.Stderr,
	})
	logging.SetGlobal(logger)
}
