// ABOUTME: HTML entity decoding for riddle titles rendered by WordPress.
// ABOUTME: Translates only the fixed entity set WordPress emits for punctuation.
package source

import "strings"

// apiEntities are the entities WordPress emits in title.rendered.
var apiEntities = []string{
	"&#8217;", "'",
	"&#8220;", `"`,
	"&#8221;", `"`,
	"&#8211;", "–",
	"&#8230;", "...",
	"&amp;", "&",
}

// feedEntities adds the numeric ampersand WordPress writes inside feed CDATA.
var feedEntities = append(append([]string{}, apiEntities...), "&#038;", "&")

var (
	apiReplacer  = strings.NewReplacer(apiEntities...)
	feedReplacer = strings.NewReplacer(feedEntities...)
)

// DecodeEntities decodes a REST API title into plain text.
func DecodeEntities(s string) string {
	return strings.TrimSpace(apiReplacer.Replace(s))
}

// FeedEntities decodes a feed title into plain text.
func FeedEntities(s string) string {
	return strings.TrimSpace(feedReplacer.Replace(s))
}
