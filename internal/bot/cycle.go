// ABOUTME: One publish cycle: select an unposted riddle, format it, publish, and record it.
// ABOUTME: History is only appended after the publisher reports success.
package bot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/2389-research/riddleking/internal/formatter"
	"github.com/2389-research/riddleking/internal/logging"
	"github.com/2389-research/riddleking/internal/metrics"
	"github.com/2389-research/riddleking/internal/models"
	"github.com/2389-research/riddleking/internal/publisher"
	"github.com/2389-research/riddleking/internal/storage"
)

// ErrCycleInProgress is returned when Run is called while another run is active.
var ErrCycleInProgress = errors.New("publish cycle already in progress")

// Picker chooses the next riddle to post. Peek must leave history untouched.
type Picker interface {
	SelectUnposted(ctx context.Context) (models.Item, error)
	Peek(ctx context.Context) (models.Item, error)
}

// Cycle wires the selection, formatting, publishing, and history steps.
type Cycle struct {
	picker    Picker
	formatter *formatter.Formatter
	publisher publisher.Publisher
	history   storage.HistoryStore
	logger    *logging.Logger
	now       func() time.Time

	mu sync.Mutex
}

// NewCycle creates a Cycle.
func NewCycle(picker Picker, f *formatter.Formatter, pub publisher.Publisher, history storage.HistoryStore, logger *logging.Logger) *Cycle {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Cycle{
		picker:    picker,
		formatter: f,
		publisher: pub,
		history:   history,
		logger:    logger,
		now:       time.Now,
	}
}

// Preview selects and renders the next riddle without publishing it or
// touching history.
func (c *Cycle) Preview(ctx context.Context) (models.Item, string, error) {
	item, err := c.picker.Peek(ctx)
	if err != nil {
		return models.Item{}, "", fmt.Errorf("failed to select riddle: %w", err)
	}
	return item, c.formatter.Format(item), nil
}

// Run performs one cycle. On success the item is in history and the returned
// record carries the destination's post ID.
func (c *Cycle) Run(ctx context.Context) (*models.PostRecord, error) {
	if !c.mu.TryLock() {
		metrics.CyclesTotal.WithLabelValues("skipped").Inc()
		c.logger.Warn("Skipping publish, previous cycle still running")
		return nil, ErrCycleInProgress
	}
	defer c.mu.Unlock()

	c.logger.Info("Fetching riddle...")
	item, err := c.picker.SelectUnposted(ctx)
	if err != nil {
		metrics.CyclesTotal.WithLabelValues("select_failed").Inc()
		c.logger.Error("Error posting riddle", "step", "select", "err", err)
		return nil, fmt.Errorf("failed to select riddle: %w", err)
	}
	c.logger.Info("Got riddle", "id", item.ID, "question", item.Text)

	text := c.formatter.Format(item)
	if c.formatter.Overlong(text) {
		c.logger.Warn("Post might be too long", "length", formatter.Length(text), "limit", c.formatter.MaxLength())
	}

	c.logger.Info("Posting to X...")
	start := time.Now()
	res, err := c.publisher.Publish(ctx, text)
	metrics.PublishDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.CyclesTotal.WithLabelValues("publish_failed").Inc()
		var pubErr *publisher.PublishError
		if errors.As(err, &pubErr) && len(pubErr.Data) > 0 {
			c.logger.Error("Error posting riddle", "step", "publish", "id", item.ID, "err", err, "data", string(pubErr.Data))
		} else {
			c.logger.Error("Error posting riddle", "step", "publish", "id", item.ID, "err", err)
		}
		return nil, fmt.Errorf("failed to publish riddle %s: %w", item.ID, err)
	}

	if err := c.history.Append(item.ID); err != nil {
		c.logger.Warn("Posted but could not record riddle", "id", item.ID, "err", err)
	}

	record := models.NewPostRecord(item.ID, res.ID, c.now())
	metrics.CyclesTotal.WithLabelValues("posted").Inc()
	c.logger.Info("Successfully posted riddle",
		"post_id", record.PostID,
		"id", record.ItemID,
		"cycle", record.CycleID,
		"at", record.Timestamp.Format(time.RFC3339),
	)
	return record, nil
}
