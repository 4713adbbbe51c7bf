// Package cmd provides the reckon CLI commands.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/example/reckon/internal/config"
)

var (
	cfgFile string
	debug   bool
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "reckon",
	Short: "Settle transaction streams into final account balances",
	Long: `reckon reads an ordered stream of deposits, withdrawals, disputes,
resolves and chargebacks, applies them to per-client accounts, and
reports the final balances.

Example:
  reckon process transactions.csv > accounts.csv
  reckon generate 100 | reckon process -
  reckon serve --listen :8080`,
	SilenceUsage: true,
}

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML config file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(verifyAuditCmd)
}

// setup loads the configuration and builds the run logger.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, err
	}

	log, err := newLogger(debug || cfg.Debug)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}

	return cfg, log, nil
}

func newLogger(debugMode bool) (*zap.Logger, error) {
	if debugMode {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
