package render

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	stripOnce sync.Once
	strict    *bluemonday.Policy
)

// PlainText removes every tag from rendered cell markup, decodes entities, and
// collapses whitespace to single spaces.
func PlainText(markup string) string {
	stripOnce.Do(func() {
		strict = bluemonday.StrictPolicy()
	})
	return strings.Join(strings.Fields(html.UnescapeString(strict.Sanitize(markup))), " ")
}
