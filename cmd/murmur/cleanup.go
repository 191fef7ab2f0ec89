package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/murmur/pkg/core"
)

// cleanupCmd represents the cleanup command
var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete audio artifacts older than the retention window",
	Run: func(cmd *cobra.Command, args []string) {
		_, runner := loadRunner()

		removed, err := runner.Cleanup()
		var summary *core.CleanupError
		if errors.As(err, &summary) {
			for file, ferr := range summary.Failures {
				fmt.Printf("skipped %s: %v\n", file, ferr)
			}
		} else if err != nil {
			fatal("Cleanup failed", err)
		}

		fmt.Printf("Cleanup complete: %d file(s) removed.\n", removed)
	},
}

func init() {
	rootCmd.AddCommand(cleanupCmd)
}
