// Package main implements the recall CLI for the flat-file memory store.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/recall/internal/config"
	"github.com/fyrsmithlabs/recall/internal/index"
	"github.com/fyrsmithlabs/recall/internal/logging"
	"github.com/fyrsmithlabs/recall/internal/project"
	"github.com/fyrsmithlabs/recall/internal/store"
	"github.com/fyrsmithlabs/recall/internal/workflow"
)

var (
	// flagRoot overrides project-root auto-detection.
	flagRoot string
	// flagConfig overrides the config file path.
	flagConfig string
	// flagLogLevel overrides the configured log level.
	flagLogLevel string
	// version information
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "recall",
	Short: "Flat-file memory store for agents",
	Long: `recall keeps a project's durable memories as markdown records under a
single store directory, organized by category, deduplicated by text
similarity and summarized in a generated index.`,
	Version:      version,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagRoot, "root", "", "project root (defaults to auto-detect)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default ~/.config/recall/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "override log level (debug, info, warn, error)")
}

// app bundles the wired components behind every subcommand.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	store  *store.Store
	index  *index.Builder
	engine *workflow.Engine
}

// newApp loads config, resolves the project root and wires the engine.
func newApp() (*app, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}

	level := cfg.Logging.Level
	if flagLogLevel != "" {
		level = flagLogLevel
	}
	logger, err := logging.New(level, cfg.Logging.Format)
	if err != nil {
		return nil, err
	}

	root := flagRoot
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		root = project.FindRoot(wd)
	} else if root, err = filepath.Abs(root); err != nil {
		return nil, fmt.Errorf("failed to resolve --root: %w", err)
	}

	st := store.New(cfg.StorePath(root), cfg.Store.Categories, logger)
	builder := index.NewBuilder(st, nil, logger)
	engine, err := workflow.New(st, builder,
		workflow.WithDecider(newTerminalDecider(os.Stdin, os.Stdout)),
		workflow.WithLogger(logger),
		workflow.WithThreshold(cfg.Similarity.Threshold),
		workflow.WithMatchLimit(cfg.Similarity.MatchLimit),
	)
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, logger: logger, store: st, index: builder, engine: engine}, nil
}
