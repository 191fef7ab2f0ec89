package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var processOverwrite bool

// processCmd represents the process command
var processCmd = &cobra.Command{
	Use:   "process <path>",
	Short: "Process an audio file into a diary note",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := args[0]
		if _, err := os.Stat(path); err != nil {
			fatal("Cannot read audio file", err)
		}

		cfg, runner := loadRunner()
		runner.Overwrite = processOverwrite

		notePath, err := runner.ProcessFile(context.Background(), path, cfg.Audio.SampleRate, cfg.Audio.Channels)
		if err != nil {
			fatal("Failed to process audio", err)
		}

		fmt.Printf("Diary entry created: %s\n", notePath)
	},
}

func init() {
	rootCmd.AddCommand(processCmd)
	processCmd.Flags().BoolVar(&processOverwrite, "overwrite", false, "Overwrite an existing note at the same path")
}
