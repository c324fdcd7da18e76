package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/comalice/riskbox/internal/game"
	"github.com/comalice/riskbox/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "riskbox",
	Short: "Riskbox is a push-your-luck game built on hierarchical state machines",
	Long: `Riskbox runs a Game actor that spawns a Player and a Box. The box keeps
growing its gems and its risk until you accept it, reject it, or ask for a new one.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "YAML file overriding the game constants")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
}

// setup loads the game config and the logger named by the global flags.
func setup(cmd *cobra.Command) (game.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := game.LoadConfig(path)
	if err != nil {
		return game.Config{}, nil, err
	}
	raw, _ := cmd.Flags().GetString("log-level")
	level, err := logging.ParseLevel(raw)
	if err != nil {
		return game.Config{}, nil, err
	}
	return cfg, logging.New(level), nil
}
