package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/i474232898/cep-lookup/internal/config"
	"github.com/i474232898/cep-lookup/internal/logging"
)

var (
	cfg    *config.AppConfig
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "cep-lookup",
	Short: "Look up Brazilian postal codes (CEP) with weather and search history",
	Long: `cep-lookup resolves a CEP through ViaCEP, adds current weather for the
resolved city when a weather provider is configured, and keeps a deduplicated
history of successful searches.

Configuration comes from the environment, an optional .env file and an
optional YAML file named by CONFIG_FILE.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		logger, err = logging.New(cfg.LogLevel)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	historyCmd.AddCommand(historyClearCmd)
	rootCmd.AddCommand(serveCmd, searchCmd, historyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
