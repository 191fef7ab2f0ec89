package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/murmur"
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the murmur version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("murmur %s\n", murmur.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
