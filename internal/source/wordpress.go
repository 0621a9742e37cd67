// ABOUTME: WordPress REST API item source requesting a small random batch of posts.
// ABOUTME: Decodes rendered titles and uses each post's slug as the answer reference.
package source

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/2389-research/riddleking/internal/models"
)

// DefaultWordPressURL is the riddle site the bot was built for.
const DefaultWordPressURL = "https://riddleking.co.uk"

// DefaultBatchSize is the number of random posts requested per fetch.
const DefaultBatchSize = 5

const wordPressPostsPath = "/wp-json/wp/v2/posts"

// WordPress fetches random posts from a WordPress site.
type WordPress struct {
	client    *resty.Client
	batchSize int
}

// wpPost maps the projected fields of a WordPress post.
type wpPost struct {
	ID    int64 `json:"id"`
	Title struct {
		Rendered string `json:"rendered"`
	} `json:"title"`
	Slug string `json:"slug"`
}

// NewWordPress creates a WordPress source rooted at baseURL.
func NewWordPress(baseURL string, batchSize int, timeout time.Duration) *WordPress {
	if baseURL == "" {
		baseURL = DefaultWordPressURL
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &WordPress{
		client:    newHTTPClient(baseURL, timeout),
		batchSize: batchSize,
	}
}

// FetchCandidates requests one randomly ordered page of posts.
func (w *WordPress) FetchCandidates(ctx context.Context) ([]models.Item, error) {
	resp, err := w.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"per_page": strconv.Itoa(w.batchSize),
			"orderby":  "rand",
			"_fields":  "id,title,slug",
		}).
		Get(wordPressPostsPath)
	if err != nil {
		return nil, unavailable("wordpress request failed: %v", err)
	}
	if !resp.IsSuccess() {
		return nil, unavailable("WordPress API returned %d", resp.StatusCode())
	}

	var posts []wpPost
	if err := json.Unmarshal(resp.Body(), &posts); err != nil {
		return nil, unavailable("failed to decode wordpress response: %v", err)
	}

	items := make([]models.Item, 0, len(posts))
	for _, p := range posts {
		text := DecodeEntities(p.Title.Rendered)
		if text == "" {
			continue
		}
		items = append(items, models.Item{
			ID:        models.IntID(p.ID),
			Text:      text,
			Reference: p.Slug,
		})
	}
	return items, nil
}

// Complete is false: each call returns a random sample.
func (w *WordPress) Complete() bool { return false }

// Name implements Source.
func (w *WordPress) Name() string { return TypeWordPress }
