package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// transcribeCmd represents the transcribe command
var transcribeCmd = &cobra.Command{
	Use:   "transcribe <path>",
	Short: "Transcribe an audio file and print the text",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := args[0]
		if _, err := os.Stat(path); err != nil {
			fatal("Cannot read audio file", err)
		}

		cfg, runner := loadRunner()

		tr, err := runner.Transcribe(context.Background(), path, cfg.Audio.SampleRate, cfg.Audio.Channels)
		if err != nil {
			fatal("Failed to transcribe audio", err)
		}

		fmt.Println(tr.Text)
		if tr.HasConfidence() {
			fmt.Fprintf(os.Stderr, "(backend %s, mean confidence %.2f)\n", tr.Backend, tr.MeanConfidence)
		}
	},
}

func init() {
	rootCmd.AddCommand(transcribeCmd)
}
