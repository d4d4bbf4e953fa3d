package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/rcflow"
	"github.com/aretw0/rcflow/internal/cli"
	"github.com/aretw0/rcflow/internal/config"
	"github.com/aretw0/rcflow/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "rcflow",
	Short: "rcflow edits, checks and runs branching NPC dialogue flows",
	Long: `rcflow manages dialogue projects (graphs of Start, Dialogue, Condition,
Set Variable, Event and End nodes) and runs interactions over them from the
terminal, over HTTP, or as MCP tools.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file (default rcflow.yaml when present)")
	rootCmd.PersistentFlags().String("env-file", ".env", "Dotenv file loaded before reading the environment")
	rootCmd.PersistentFlags().String("log-level", "", "Override the configured log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("store", "", "Override the configured store driver")
	rootCmd.PersistentFlags().String("dir", "", "Override the configured store path")
}

// loadConfig reads the configuration and applies the persistent flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	file, _ := cmd.Flags().GetString("config")
	envFile, _ := cmd.Flags().GetString("env-file")

	cfg, err := config.Load(config.Options{File: file, EnvFile: envFile})
	if err != nil {
		return nil, nil, err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}
	if driver, _ := cmd.Flags().GetString("store"); driver != "" {
		cfg.Store.Driver = driver
	}
	if dir, _ := cmd.Flags().GetString("dir"); dir != "" {
		cfg.Store.Path = dir
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logging.New(level), nil
}

// openEngine loads configuration and builds an engine on the configured stores.
func openEngine(cmd *cobra.Command, extra ...rcflow.Option) (*rcflow.Engine, *cli.Stores, *slog.Logger, error) {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, nil, err
	}
	eng, stores, err := newEngineFromConfig(commandContext(cmd), cfg, logger, extra...)
	if err != nil {
		return nil, nil, nil, err
	}
	return eng, stores, logger, nil
}

func newEngineFromConfig(ctx context.Context, cfg *config.Config, logger *slog.Logger, extra ...rcflow.Option) (*rcflow.Engine, *cli.Stores, error) {
	return cli.NewEngine(ctx, cfg, logger, extra...)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
