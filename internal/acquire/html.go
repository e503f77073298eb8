package acquire

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// htmlToText flattens an extmetadata HTML fragment into plain text with
// collapsed whitespace. Input that does not parse is returned trimmed.
func htmlToText(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return strings.TrimSpace(fragment)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(fragment)
	}
	doc.Find("br").ReplaceWithHtml(" ")
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// metaText renders an extmetadata value for a sidecar. Strings lose their
// markup; other values are kept as they are.
func metaText(v any) any {
	if s, ok := v.(string); ok {
		return htmlToText(s)
	}
	return v
}
