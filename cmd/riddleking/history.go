// ABOUTME: CLI commands for inspecting and resetting the posted-riddle history.
// ABOUTME: Provides list and clear subcommands.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage posted riddle history",
	Long:  "List or clear the IDs of riddles that have already been posted.",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List posted riddle IDs",
	Long:  "List posted riddle IDs, oldest first.",
	RunE:  runHistoryList,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget every posted riddle",
	Long:  "Clear the history so every riddle becomes eligible again.",
	RunE:  runHistoryClear,
}

// Flags
var (
	historyLimit int
	historyYes   bool
)

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyClearCmd)

	historyListCmd.Flags().IntVar(&historyLimit, "limit", 0, "Show only the most recent N entries (0 for all)")
	historyClearCmd.Flags().BoolVarP(&historyYes, "yes", "y", false, "Skip the confirmation prompt")
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	ids := globalHistory.Load()
	if len(ids) == 0 {
		fmt.Println("No riddles posted yet.")
		return nil
	}

	start := 0
	if historyLimit > 0 && historyLimit < len(ids) {
		start = len(ids) - historyLimit
	}
	for _, id := range ids[start:] {
		fmt.Println(id)
	}
	fmt.Printf("\n%d riddles posted.\n", len(ids))
	return nil
}

func runHistoryClear(cmd *cobra.Command, args []string) error {
	count := len(globalHistory.Load())
	if count == 0 {
		fmt.Println("History is already empty.")
		return nil
	}

	if !historyYes {
		fmt.Printf("Forget %d posted riddles? [y/N] ", count)
		answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	if err := globalHistory.Clear(); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	fmt.Printf("Cleared %d posted riddles.\n", count)
	return nil
}
