// ABOUTME: CLI command that shows the next riddle post without publishing it.
// ABOUTME: Useful for checking formatting and the post length before going live.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/2389-research/riddleking/internal/formatter"
	"github.com/2389-research/riddleking/internal/publisher"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Show the next riddle post without publishing",
	Long:  "Select an unposted riddle and print the post text and its length. Nothing is posted or recorded.",
	RunE:  runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Preview never publishes, so no credentials are needed.
	cycle := newCycle(publisher.NewDryRun(globalLogger))
	item, text, err := cycle.Preview(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Riddle ID: %s\n\n", item.ID)
	fmt.Println(text)
	fmt.Println()

	length := formatter.Length(text)
	if length > globalFormatter.MaxLength() {
		fmt.Printf("Length: %d/%d (too long, X may reject it)\n", length, globalFormatter.MaxLength())
	} else {
		fmt.Printf("Length: %d/%d\n", length, globalFormatter.MaxLength())
	}
	return nil
}
