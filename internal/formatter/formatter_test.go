// ABOUTME: Tests for post rendering and length counting.
// ABOUTME: Checks the default layout, overrides, and the UTF-16 limit check.
package formatter

import (
	"strings"
	"testing"

	"github.com/2389-research/riddleking/internal/models"
)

func TestFormatDefaultLayout(t *testing.T) {
	f := New(Template{})
	item := models.Item{ID: "101", Text: "What has keys but can't open locks?", Reference: "keys-no-locks"}

	got := f.Format(item)
	want := "🧩 Daily Riddle Challenge\n\n" +
		"What has keys but can't open locks?\n\n" +
		"Drop your answer below 👇\n" +
		"Check if you're right: https://riddleking.co.uk/keys-no-locks\n\n" +
		"#Riddle #BrainTeaser #RiddleOfTheDay"
	if got != want {
		t.Errorf("Format() got %q, want %q", got, want)
	}
}

func TestFormatContainsTextAndCallback(t *testing.T) {
	f := New(DefaultTemplate())
	items := []models.Item{
		{ID: "1", Text: `Salt & "pepper" – what's missing...`, Reference: "salt-pepper"},
		{ID: "https://riddleking.co.uk/riddles/x/", Text: "Short one", Reference: "/x/"},
	}
	for _, item := range items {
		got := f.Format(item)
		if !strings.Contains(got, item.Text) {
			t.Errorf("post %q does not contain text %q", got, item.Text)
		}
		url := f.CallbackURL(item)
		if !strings.HasSuffix(url, strings.Trim(item.Reference, "/")) {
			t.Errorf("callback %q does not end in reference %q", url, item.Reference)
		}
		if !strings.Contains(got, url) {
			t.Errorf("post %q does not contain callback %q", got, url)
		}
	}
}

func TestFormatOverrides(t *testing.T) {
	f := New(Template{
		Heading:      "Riddle time",
		CallToAction: "Answer below",
		LinkBase:     "https://example.com/riddles/",
		Hashtags:     []string{},
		MaxLength:    50,
	})
	got := f.Format(models.Item{Text: "Q?", Reference: "q"})
	want := "Riddle time\n\nQ?\n\nAnswer below\nCheck if you're right: https://example.com/riddles/q"
	if got != want {
		t.Errorf("Format() got %q, want %q", got, want)
	}
	if f.MaxLength() != 50 {
		t.Errorf("MaxLength() got %d, want 50", f.MaxLength())
	}
}

func TestLengthCountsUTF16Units(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"abc", 3},
		{"–", 1},
		{"🧩", 2},
		{"👇 ok", 5},
	}
	for _, tt := range tests {
		if got := Length(tt.in); got != tt.want {
			t.Errorf("Length(%q) got %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestOverlongDoesNotTruncate(t *testing.T) {
	f := New(Template{})
	long := strings.Repeat("riddle ", 60)
	post := f.Format(models.Item{Text: long, Reference: "long"})

	if !f.Overlong(post) {
		t.Errorf("expected %d-unit post to be overlong", Length(post))
	}
	if !strings.Contains(post, long) {
		t.Error("overlong post was truncated")
	}

	short := f.Format(models.Item{Text: "Short?", Reference: "s"})
	if f.Overlong(short) {
		t.Errorf("short post reported overlong at %d units", Length(short))
	}
}
