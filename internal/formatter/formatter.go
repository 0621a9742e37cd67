// ABOUTME: Renders a selected riddle into the text of a social post.
// ABOUTME: Pure string building plus a UTF-16 length check against the post limit.
package formatter

import (
	"strings"
	"unicode/utf16"

	"github.com/2389-research/riddleking/internal/models"
)

// Defaults match the long-running post layout.
const (
	DefaultHeading      = "🧩 Daily Riddle Challenge"
	DefaultCallToAction = "Drop your answer below 👇"
	DefaultLinkLabel    = "Check if you're right:"
	DefaultLinkBase     = "https://riddleking.co.uk"
	DefaultMaxLength    = 280
)

// DefaultHashtags are appended to every post.
var DefaultHashtags = []string{"#Riddle", "#BrainTeaser", "#RiddleOfTheDay"}

// Template holds the fixed parts of a post.
type Template struct {
	Heading      string
	CallToAction string
	LinkLabel    string
	LinkBase     string
	Hashtags     []string
	MaxLength    int
}

// DefaultTemplate returns the standard post layout.
func DefaultTemplate() Template {
	return Template{
		Heading:      DefaultHeading,
		CallToAction: DefaultCallToAction,
		LinkLabel:    DefaultLinkLabel,
		LinkBase:     DefaultLinkBase,
		Hashtags:     append([]string(nil), DefaultHashtags...),
		MaxLength:    DefaultMaxLength,
	}
}

// Formatter renders items with a fixed template.
type Formatter struct {
	tmpl Template
}

// New creates a Formatter. Empty template fields fall back to the defaults;
// a nil Hashtags slice means the default tags, an empty one means none.
func New(tmpl Template) *Formatter {
	def := DefaultTemplate()
	if tmpl.Heading == "" {
		tmpl.Heading = def.Heading
	}
	if tmpl.CallToAction == "" {
		tmpl.CallToAction = def.CallToAction
	}
	if tmpl.LinkLabel == "" {
		tmpl.LinkLabel = def.LinkLabel
	}
	if tmpl.LinkBase == "" {
		tmpl.LinkBase = def.LinkBase
	}
	if tmpl.Hashtags == nil {
		tmpl.Hashtags = def.Hashtags
	}
	if tmpl.MaxLength <= 0 {
		tmpl.MaxLength = def.MaxLength
	}
	tmpl.LinkBase = strings.TrimRight(tmpl.LinkBase, "/")
	return &Formatter{tmpl: tmpl}
}

// Template returns the effective template.
func (f *Formatter) Template() Template {
	return f.tmpl
}

// CallbackURL builds the link readers follow to check their answer.
func (f *Formatter) CallbackURL(item models.Item) string {
	return f.tmpl.LinkBase + "/" + strings.Trim(item.Reference, "/")
}

// Format renders the post text. It never truncates.
func (f *Formatter) Format(item models.Item) string {
	var b strings.Builder
	b.WriteString(f.tmpl.Heading)
	b.WriteString("\n\n")
	b.WriteString(item.Text)
	b.WriteString("\n\n")
	b.WriteString(f.tmpl.CallToAction)
	b.WriteString("\n")
	if f.tmpl.LinkLabel != "" {
		b.WriteString(f.tmpl.LinkLabel)
		b.WriteString(" ")
	}
	b.WriteString(f.CallbackURL(item))
	if len(f.tmpl.Hashtags) > 0 {
		b.WriteString("\n\n")
		b.WriteString(strings.Join(f.tmpl.Hashtags, " "))
	}
	return b.String()
}

// Length counts UTF-16 code units, which is how the post limit is measured.
func Length(text string) int {
	n := 0
	for _, r := range text {
		n += utf16.RuneLen(r)
	}
	return n
}

// Overlong reports whether text exceeds the template's length limit.
func (f *Formatter) Overlong(text string) bool {
	return Length(text) > f.tmpl.MaxLength
}

// MaxLength returns the configured post limit.
func (f *Formatter) MaxLength() int {
	return f.tmpl.MaxLength
}
