// ABOUTME: Publisher interface for posting rendered riddles, plus the dry-run publisher.
// ABOUTME: PublishError carries the destination's raw error payload for logging.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/2389-research/riddleking/internal/logging"
)

// Publisher posts text to the destination network.
type Publisher interface {
	Publish(ctx context.Context, text string) (*Result, error)
}

// Result identifies a published post.
type Result struct {
	ID   string
	Text string
}

// PublishError is returned when the destination rejected or failed the post.
type PublishError struct {
	StatusCode int
	Message    string
	// Data is the raw response body, when there was one.
	Data json.RawMessage
}

func (e *PublishError) Error() string {
	if e.StatusCode == 0 {
		return "publish failed: " + e.Message
	}
	return fmt.Sprintf("publish failed: API returned %d: %s", e.StatusCode, e.Message)
}

// DryRun logs the post instead of sending it.
type DryRun struct {
	logger *logging.Logger
}

// NewDryRun creates a DryRun publisher.
func NewDryRun(logger *logging.Logger) *DryRun {
	if logger == nil {
		logger = logging.Discard()
	}
	return &DryRun{logger: logger}
}

// Publish returns a fresh local ID without contacting any service.
func (d *DryRun) Publish(ctx context.Context, text string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id := "dry-run-" + uuid.New().String()
	d.logger.Info("Dry run, not posting", "id", id, "length", len(text))
	d.logger.Debug(text)
	return &Result{ID: id, Text: text}, nil
}
