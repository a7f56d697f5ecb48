package ingest

import (
	"strings"
)

// ExtractArray isolates the JSON-array substring from a raw search response.
// The model is asked for a bare array but routinely wraps it in markdown
// fences, prose, or line-broken string literals; this strips all of that.
// Returns ("", false) when no array-shaped substring can be found.
func ExtractArray(raw string) (string, bool) {
	clean := strings.TrimSpace(raw)
	if clean == "" || clean == "[]" {
		return "", false
	}

	// Responses occasionally come back as a full HTML document. Flatten to
	// text before hunting for brackets.
	if looksLikeHTML(clean) {
		clean = strings.TrimSpace(htmlToText(clean))
	}

	// Remove markdown code fences.
	if strings.HasPrefix(clean, "```json") {
		clean = strings.TrimSpace(strings.ReplaceAll(strings.TrimPrefix(clean, "```json"), "```", ""))
	} else if strings.HasPrefix(clean, "```") {
		clean = strings.TrimSpace(strings.ReplaceAll(clean, "```", ""))
	}

	// Slice between the first opening and last closing bracket.
	start := strings.Index(clean, "[")
	end := strings.LastIndex(clean, "]")
	if start == -1 || end == -1 || end < start {
		return "", false
	}
	clean = clean[start : end+1]

	// Newlines inside string literals break JSON parsing; collapse all
	// whitespace runs to single spaces.
	clean = strings.ReplaceAll(clean, "\n", " ")
	clean = strings.ReplaceAll(clean, "\r", " ")
	clean = normalizeSpace(clean)

	return clean, true
}

func looksLikeHTML(s string) bool {
	head := strings.ToLower(s)
	if len(head) > 256 {
		head = head[:256]
	}
	return strings.HasPrefix(head, "<!doctype html") ||
		strings.HasPrefix(head, "<html") ||
		strings.Contains(head, "<body")
}
