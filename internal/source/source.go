// ABOUTME: Item source interface shared by the static, WordPress, and feed variants.
// ABOUTME: Also holds the shared resty client constructor and the SourceUnavailable sentinel.
package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/2389-research/riddleking/internal/models"
)

// ErrSourceUnavailable wraps every network, HTTP, or parse failure while
// reading candidates.
var ErrSourceUnavailable = errors.New("source unavailable")

// UserAgent is sent on every outbound source request.
const UserAgent = "riddleking/1.0 (+https://riddleking.co.uk)"

// Source type names used in configuration.
const (
	TypeStatic    = "static"
	TypeWordPress = "wordpress"
	TypeFeed      = "feed"
)

// Source supplies candidate riddles.
type Source interface {
	// FetchCandidates returns a batch of items. A batch is not necessarily
	// the full catalog; see Complete.
	FetchCandidates(ctx context.Context) ([]models.Item, error)

	// Complete reports whether every batch is the whole catalog.
	Complete() bool

	// Name identifies the source in logs and metrics.
	Name() string
}

func newHTTPClient(baseURL string, timeout time.Duration) *resty.Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", UserAgent)
	if baseURL != "" {
		c.SetBaseURL(baseURL)
	}
	return c
}

func unavailable(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrSourceUnavailable, fmt.Sprintf(format, args...))
}
