// ABOUTME: Unposted-riddle selection against any item source and the history store.
// ABOUTME: Full catalogs pick randomly from the unposted set; batch sources retry with backoff.
package selector

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"golang.org/x/time/rate"

	"github.com/2389-research/riddleking/internal/logging"
	"github.com/2389-research/riddleking/internal/metrics"
	"github.com/2389-research/riddleking/internal/models"
	"github.com/2389-research/riddleking/internal/source"
	"github.com/2389-research/riddleking/internal/storage"
)

// ErrNoItemAvailable is returned when no candidate could be produced after
// retries and, where allowed, a history reset.
var ErrNoItemAvailable = errors.New("no riddle available")

// Default policy values.
const (
	DefaultMaxAttempts = 10
	DefaultBackoff     = 2 * time.Second
)

// Options tunes the retry and reset policy.
type Options struct {
	// MaxAttempts bounds the fetches per round.
	MaxAttempts int
	// Backoff is the pause between consecutive fetches.
	Backoff time.Duration
	// ResetThreshold: batch sources clear history after an exhausted round
	// only when len(history) > ResetThreshold.
	ResetThreshold int
	// Rand picks among unposted items of a full catalog. Nil uses the global source.
	Rand *rand.Rand
}

// Selector picks one riddle that has not been posted yet.
type Selector struct {
	src     source.Source
	history storage.HistoryStore
	opts    Options
	limiter *rate.Limiter
	logger  *logging.Logger
}

// New creates a Selector. Zero-valued options take the defaults; a zero
// Backoff means "use DefaultBackoff", a negative one disables the pause.
func New(src source.Source, history storage.HistoryStore, opts Options, logger *logging.Logger) *Selector {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.Backoff == 0 {
		opts.Backoff = DefaultBackoff
	}
	if logger == nil {
		logger = logging.Discard()
	}

	limit := rate.Inf
	if opts.Backoff > 0 {
		limit = rate.Every(opts.Backoff)
	}

	return &Selector{
		src:     src,
		history: history,
		opts:    opts,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
	}
}

// SelectUnposted returns one item that is absent from history. It only
// mutates history when every known item has been posted.
func (s *Selector) SelectUnposted(ctx context.Context) (models.Item, error) {
	return s.selectItem(ctx, true)
}

// Peek picks the item SelectUnposted would most likely return, under the same
// retry policy, but never clears history. When everything has been posted it
// answers with the item a reset would make eligible.
func (s *Selector) Peek(ctx context.Context) (models.Item, error) {
	return s.selectItem(ctx, false)
}

func (s *Selector) selectItem(ctx context.Context, mayReset bool) (models.Item, error) {
	if s.src.Complete() {
		return s.selectFromCatalog(ctx, mayReset)
	}
	return s.selectFromBatches(ctx, mayReset)
}

func (s *Selector) selectFromCatalog(ctx context.Context, mayReset bool) (models.Item, error) {
	catalog, err := s.fetchWithRetry(ctx)
	if err != nil {
		return models.Item{}, err
	}

	posted := models.IDSet(s.history.Load())
	unposted := make([]models.Item, 0, len(catalog))
	for _, item := range catalog {
		if _, ok := posted[item.ID]; !ok {
			unposted = append(unposted, item)
		}
	}

	if len(unposted) > 0 {
		return unposted[s.intn(len(unposted))], nil
	}

	if !mayReset {
		s.logger.Debug("All riddles posted, history would be reset", "catalog_size", len(catalog))
		return catalog[s.intn(len(catalog))], nil
	}
	s.logger.Info("All riddles posted! Resetting list...", "catalog_size", len(catalog), "history_size", len(posted))
	s.reset()
	return catalog[s.intn(len(catalog))], nil
}

// fetchWithRetry fetches a non-empty catalog, retrying failures up to MaxAttempts.
func (s *Selector) fetchWithRetry(ctx context.Context) ([]models.Item, error) {
	var lastErr error
	for attempt := 1; attempt <= s.opts.MaxAttempts; attempt++ {
		items, err := s.fetch(ctx, attempt)
		if err != nil {
			if aborted(ctx, err) {
				return nil, err
			}
			lastErr = err
			continue
		}
		if len(items) == 0 {
			// An empty catalog will not fill itself by asking again.
			return nil, fmt.Errorf("%w: %s catalog is empty", ErrNoItemAvailable, s.src.Name())
		}
		return items, nil
	}
	return nil, fmt.Errorf("%w: after %d attempts: %v", ErrNoItemAvailable, s.opts.MaxAttempts, lastErr)
}

func (s *Selector) selectFromBatches(ctx context.Context, mayReset bool) (models.Item, error) {
	var lastErr error
	var lastBatch []models.Item

	// Round 0 uses the persisted history; round 1 only runs after a reset.
	for round := 0; round < 2; round++ {
		ids := s.history.Load()
		posted := models.IDSet(ids)

		for attempt := 1; attempt <= s.opts.MaxAttempts; attempt++ {
			batch, err := s.fetch(ctx, attempt)
			if err != nil {
				if aborted(ctx, err) {
					return models.Item{}, err
				}
				lastErr = err
				continue
			}
			if len(batch) == 0 {
				lastErr = fmt.Errorf("%s returned no riddles", s.src.Name())
				s.logger.Warn("Source returned no riddles", "source", s.src.Name(), "attempt", attempt)
				continue
			}

			lastBatch = batch

			// The batch is already randomised upstream, so first match wins.
			for _, item := range batch {
				if _, ok := posted[item.ID]; !ok {
					return item, nil
				}
			}
			s.logger.Debug("Batch fully posted", "source", s.src.Name(), "attempt", attempt, "batch_size", len(batch))
			lastErr = nil
		}

		if round > 0 || len(ids) <= s.opts.ResetThreshold {
			break
		}
		if !mayReset {
			if lastBatch != nil {
				s.logger.Debug("All riddles posted, history would be reset", "history_size", len(ids))
				return lastBatch[0], nil
			}
			break
		}
		s.logger.Info("All riddles posted! Resetting list...", "history_size", len(ids), "threshold", s.opts.ResetThreshold)
		s.reset()
	}

	if lastErr != nil {
		return models.Item{}, fmt.Errorf("%w: could not fetch riddle after multiple attempts: %v", ErrNoItemAvailable, lastErr)
	}
	return models.Item{}, fmt.Errorf("%w: could not fetch riddle after multiple attempts", ErrNoItemAvailable)
}

// fetch waits out the backoff gate and asks the source for one batch.
func (s *Selector) fetch(ctx context.Context, attempt int) ([]models.Item, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", errBackoffAborted, err)
	}
	items, err := s.src.FetchCandidates(ctx)
	if err != nil {
		metrics.SourceFetchFailures.WithLabelValues(s.src.Name()).Inc()
		s.logger.Error("Attempt failed", "source", s.src.Name(), "attempt", attempt, "err", err)
		return nil, err
	}
	return items, nil
}

// errBackoffAborted means the context ended (or would end) during a backoff pause.
var errBackoffAborted = errors.New("backoff aborted")

func aborted(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, errBackoffAborted)
}

func (s *Selector) reset() {
	metrics.HistoryResetsTotal.Inc()
	if err := s.history.Clear(); err != nil {
		s.logger.Warn("Failed to clear posted riddles", "err", err)
	}
}

func (s *Selector) intn(n int) int {
	if s.opts.Rand != nil {
		return s.opts.Rand.IntN(n)
	}
	return rand.IntN(n)
}
