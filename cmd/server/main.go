package main

import (
	"fmt"
	"os"

	"github.com/brianmay/penguin-nurse/internal"
	"github.com/brianmay/penguin-nurse/internal/config"
	"github.com/spf13/cobra"

	_ "time/tzdata"
)

var rootCmd = &cobra.Command{
	Use:           "penguin-nurse",
	Short:         "penguin-nurse is a personal health log",
	Long:          "penguin-nurse records bodily events, intake, exercise and symptoms and shows them on a daily timeline.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads the configuration and builds the logger shared by every
// command.
func setup() (*config.Config, *internal.ZapLogger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logger, err := internal.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}
