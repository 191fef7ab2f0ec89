package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/murmur"
	"github.com/aretw0/murmur/pkg/config"
	"github.com/aretw0/murmur/pkg/pipeline"
)

var (
	verbose         bool
	configPath      string
	backendOverride string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "murmur",
	Short: "Voice-to-diary note generator for Obsidian vaults",
	Long: `Murmur records or ingests audio, transcribes it, cleans up the text,
and files the result as a diary note in your Obsidian vault.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&backendOverride, "backend", "", "Transcription backend (openai or server), overrides the config")
}

// loadRunner loads the config and wires the pipeline for a subcommand.
func loadRunner() (config.Config, *pipeline.Runner) {
	cfg, err := config.Load(configPath)
	if err != nil {
		fatal("Failed to load config", err)
	}
	if backendOverride != "" {
		cfg.Transcription.Backend = backendOverride
	}

	runner, err := murmur.New(cfg, murmur.WithLogger(slog.Default()))
	if err != nil {
		fatal("Failed to initialize pipeline", err)
	}
	return cfg, runner
}
