// ABOUTME: Version subcommand for the riddleking CLI.
// ABOUTME: Prints the build version set via ldflags.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the riddleking version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("riddleking %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
