package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/prodassist/internal/config"
	logpkg "github.com/kailas-cloud/prodassist/internal/logger"
	"github.com/kailas-cloud/prodassist/internal/version"
)

var (
	cfgFile string
	env     string

	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "prodassist",
	Short: "Product assistant retrieval service",
	Long: `prodassist retrieves product reviews from a vector store for a recommendation
assistant and evaluates the quality of the answers built on them.

Example usage:
  prodassist serve                                  # Run the HTTP API
  prodassist query -q "budget laptop for students"  # One-shot retrieval
  prodassist eval --dataset "datasets/**/*.yaml"    # Batch evaluation`,
	Version:       version.String(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if env == "" {
			env = config.GetEnv()
		}

		var err error
		if cfgFile != "" {
			cfg, err = config.LoadFile(cfgFile)
		} else {
			cfg, err = config.Load(env)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logger, err = logpkg.NewLogger(env, cfg.Logging.Level)
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(*cobra.Command, []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is config/<env>.yaml)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "environment name (default from ENV, then \"local\")")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
