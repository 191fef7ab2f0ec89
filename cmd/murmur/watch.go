package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/murmur/pkg/pipeline"
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Watch a drop folder and process every audio file placed in it",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		dir := args[0]
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			fatal("Inbox is not a directory", fmt.Errorf("%s", dir))
		}

		cfg, runner := loadRunner()
		watcher := pipeline.NewWatcher(runner, dir, cfg.Audio.SampleRate, cfg.Audio.Channels, slog.Default())

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		fmt.Printf("Watching %s... press Ctrl+C to stop.\n", dir)
		if err := watcher.Run(ctx); err != nil {
			fatal("Watcher failed", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
