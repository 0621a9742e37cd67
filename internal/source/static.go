// ABOUTME: Static item source backed by a built-in or YAML-file riddle catalog.
// ABOUTME: Always returns the full catalog and never fails.
package source

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/2389-research/riddleking/internal/models"
)

// Static returns the same fixed catalog on every call.
type Static struct {
	items []models.Item
}

// NewStatic creates a static source over items. The slice is copied.
func NewStatic(items []models.Item) *Static {
	cp := make([]models.Item, len(items))
	copy(cp, items)
	return &Static{items: cp}
}

// FetchCandidates returns the whole catalog.
func (s *Static) FetchCandidates(ctx context.Context) ([]models.Item, error) {
	cp := make([]models.Item, len(s.items))
	copy(cp, s.items)
	return cp, nil
}

// Complete is always true for a static catalog.
func (s *Static) Complete() bool { return true }

// Name implements Source.
func (s *Static) Name() string { return TypeStatic }

// catalogFile is the YAML layout of a riddle catalog.
type catalogFile struct {
	Riddles []catalogEntry `yaml:"riddles"`
}

type catalogEntry struct {
	ID       string `yaml:"id"`
	Question string `yaml:"question"`
	Slug     string `yaml:"slug"`
}

// LoadCatalog reads a YAML riddle catalog from path.
func LoadCatalog(path string) ([]models.Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog parses YAML catalog bytes. Entries need an id and a question;
// duplicate ids are rejected.
func ParseCatalog(data []byte) ([]models.Item, error) {
	var cf catalogFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	seen := make(map[string]bool, len(cf.Riddles))
	items := make([]models.Item, 0, len(cf.Riddles))
	for i, e := range cf.Riddles {
		id := strings.TrimSpace(e.ID)
		text := DecodeEntities(e.Question)
		if id == "" || text == "" {
			return nil, fmt.Errorf("catalog entry %d: id and question are required", i)
		}
		if seen[id] {
			return nil, fmt.Errorf("catalog entry %d: duplicate id %q", i, id)
		}
		seen[id] = true
		items = append(items, models.Item{
			ID:        models.ItemID(id),
			Text:      text,
			Reference: strings.Trim(e.Slug, "/"),
		})
	}
	return items, nil
}

// DefaultCatalog is used when no catalog file is configured.
func DefaultCatalog() []models.Item {
	return []models.Item{
		{ID: "1", Text: "What has keys but can't open locks?", Reference: "what-has-keys-but-cant-open-locks"},
		{ID: "2", Text: "What gets wetter the more it dries?", Reference: "what-gets-wetter-the-more-it-dries"},
		{ID: "3", Text: "I speak without a mouth and hear without ears. I have no body, but I come alive with wind. What am I?", Reference: "i-speak-without-a-mouth"},
		{ID: "4", Text: "The more of this there is, the less you see. What is it?", Reference: "the-more-of-this-there-is"},
		{ID: "5", Text: "What has a head and a tail but no body?", Reference: "what-has-a-head-and-a-tail"},
		{ID: "6", Text: "What can travel around the world while staying in a corner?", Reference: "travel-around-the-world-in-a-corner"},
		{ID: "7", Text: "What has to be broken before you can use it?", Reference: "what-has-to-be-broken"},
		{ID: "8", Text: "I'm tall when I'm young, and I'm short when I'm old. What am I?", Reference: "tall-when-young-short-when-old"},
	}
}
