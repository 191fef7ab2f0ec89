package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var recordOverwrite bool

// recordCmd represents the record command
var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record a diary entry from the microphone",
	Long: `Start a live recording session. Press Ctrl+C to stop; the recording
is then transcribed, enhanced, and filed as a diary note. Recording stops
automatically at the configured max duration.`,
	Run: func(cmd *cobra.Command, args []string) {
		_, runner := loadRunner()
		runner.Overwrite = recordOverwrite

		ctx := context.Background()
		if err := runner.StartRecording(ctx); err != nil {
			fatal("Failed to start recording", err)
		}

		fmt.Println("Recording... press Ctrl+C to stop.")

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(stop)

		select {
		case <-stop:
			fmt.Println("\nStopping recording...")
		case <-runner.RecordingDone():
			fmt.Println("Max duration reached, stopping.")
		}

		notePath, err := runner.StopRecording(ctx)
		if err != nil {
			fatal("Failed to process recording", err)
		}

		fmt.Printf("Diary entry created: %s\n", notePath)
	},
}

func init() {
	rootCmd.AddCommand(recordCmd)
	recordCmd.Flags().BoolVar(&recordOverwrite, "overwrite", false, "Overwrite an existing note at the same path")
}
