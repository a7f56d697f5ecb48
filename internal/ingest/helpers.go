package ingest

import (
	"html"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = bluemonday.StrictPolicy()

// sanitizeText strips any markup the model sneaked into a field and
// collapses whitespace. Entities introduced by the sanitizer are decoded
// back so titles like "AI & ML Hackathon" survive intact.
func sanitizeText(s string) string {
	return normalizeSpace(html.UnescapeString(strictPolicy.Sanitize(s)))
}

// normalizeSpace collapses all whitespace runs to single spaces and trims.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// htmlToText flattens an HTML document to its visible text.
func htmlToText(s string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	doc.Find("script, style, noscript").Remove()
	return doc.Text()
}

// isPlaceholderURL reports whether a website_url value carries no real
// address and must not participate in URL-based duplicate matching.
func isPlaceholderURL(u string) bool {
	switch strings.TrimSpace(u) {
	case "", "N/A", "TBD":
		return true
	}
	return false
}

// normalizeTitle reduces a title to lowercase letters, digits and spaces
// for fuzzy containment checks.
func normalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
