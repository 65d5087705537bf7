// ABOUTME: Text sanitization for feed entry fields
// ABOUTME: Strips HTML markup and normalizes whitespace using goquery

package fetch

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// CleanText strips HTML markup from s and collapses all whitespace runs
// to single spaces, trimming the result. Returns "" for empty input or
// input that cannot be parsed as HTML.
func CleanText(s string) string {
	if s == "" {
		return ""
	}

	text := s
	if strings.ContainsAny(s, "<&") {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
		if err == nil {
			text = doc.Text()
		}
	}

	return strings.Join(strings.Fields(text), " ")
}
