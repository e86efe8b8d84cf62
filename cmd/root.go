package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dartwatch/dartwatch/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "dartwatch",
	Short: "Capital-increase disclosure monitor",
	Long: "Polls the OpenDART registry for capital-increase filings, drops " +
		"third-party allocations, scores the rest and posts alert cards to Telegram.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
