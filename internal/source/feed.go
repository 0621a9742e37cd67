// ABOUTME: RSS feed item source that extracts riddles from <item> entries.
// ABOUTME: Uses the entry link as the stable ID and its last path segment as the slug.
package source

import (
	"bytes"
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/mmcdole/gofeed/rss"

	"github.com/2389-research/riddleking/internal/models"
)

// DefaultFeedURL is the riddle site's RSS feed.
const DefaultFeedURL = "https://riddleking.co.uk/feed/"

// Feed fetches riddles from an RSS feed.
type Feed struct {
	client *resty.Client
	url    string
}

// NewFeed creates a feed source for feedURL.
func NewFeed(feedURL string, timeout time.Duration) *Feed {
	if feedURL == "" {
		feedURL = DefaultFeedURL
	}
	return &Feed{
		client: newHTTPClient("", timeout),
		url:    feedURL,
	}
}

// FetchCandidates downloads and parses the feed. Entries without a title or
// a usable link are skipped.
func (f *Feed) FetchCandidates(ctx context.Context) ([]models.Item, error) {
	resp, err := f.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/rss+xml, application/xml;q=0.9, */*;q=0.8").
		Get(f.url)
	if err != nil {
		return nil, unavailable("feed request failed: %v", err)
	}
	if !resp.IsSuccess() {
		return nil, unavailable("feed returned %d", resp.StatusCode())
	}

	return ParseFeed(resp.Body())
}

// ParseFeed extracts items from raw RSS markup.
func ParseFeed(data []byte) ([]models.Item, error) {
	fp := rss.Parser{}
	feed, err := fp.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, unavailable("failed to parse feed: %v", err)
	}

	items := make([]models.Item, 0, len(feed.Items))
	for _, entry := range feed.Items {
		if entry == nil {
			continue
		}
		link := strings.TrimSpace(entry.Link)
		slug := slugFromLink(link)
		text := FeedEntities(entry.Title)
		if link == "" || slug == "" || text == "" {
			continue
		}
		// The link, not the guid, is the ID: guids are regenerated on edits.
		items = append(items, models.Item{
			ID:        models.ItemID(link),
			Text:      text,
			Reference: slug,
		})
	}
	return items, nil
}

// Complete is false: a feed only carries the most recent entries.
func (f *Feed) Complete() bool { return false }

// Name implements Source.
func (f *Feed) Name() string { return TypeFeed }

// slugFromLink returns the last non-empty path segment of link.
func slugFromLink(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	segments := strings.Split(u.Path, "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i] != "" {
			return segments[i]
		}
	}
	return ""
}
