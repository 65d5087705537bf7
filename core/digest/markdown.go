// ABOUTME: Markdown rendering of the daily digest
// ABOUTME: One section per label in fixed order, articles as title/source/one-liner/bullets/link

package digest

import (
	"fmt"
	"strings"
	"time"

	"business-digest-api/core/domain"
)

// RenderMarkdown renders grouped articles into the human-readable daily
// digest document.
func RenderMarkdown(grouped map[string][]domain.ProcessedArticle, now time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# India Business Daily — %s\n\n", now.Format("2006-01-02"))

	for _, label := range domain.LabelOrder {
		items, ok := grouped[label]
		if !ok || len(items) == 0 {
			continue
		}

		fmt.Fprintf(&b, "## %s\n\n", titleCase(label))

		for _, item := range items {
			fmt.Fprintf(&b, "**%s**\n\n", item.Title)
			fmt.Fprintf(&b, "*%s*\n\n", item.Source)
			fmt.Fprintf(&b, "%s\n\n", item.OneLiner)
			for _, bullet := range item.Bullets {
				fmt.Fprintf(&b, "- %s\n", bullet)
			}
			b.WriteString("\n")
			fmt.Fprintf(&b, "[Source](%s)\n\n", item.Link)
			b.WriteString("---\n\n")
		}
	}

	return b.String()
}

// RenderEmptyMarkdown renders the placeholder digest written when a run
// produced no articles.
func RenderEmptyMarkdown(message string, now time.Time) string {
	return fmt.Sprintf("# India Business Daily — %s\n\n%s\n", now.Format("2006-01-02"), message)
}

// titleCase capitalizes the first letter of an ASCII label.
func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
