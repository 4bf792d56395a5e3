package buttons

import (
	"strings"
	"unicode/utf8"
)

// MaxLabelLength is the longest label kept for an inline link button, in characters.
const MaxLabelLength = 64

// separators are tried in order; the bare "-" is only a fallback.
var separators = []string{" - ", " — ", " – ", " | "}

// Button is a single inline link button attached to a post.
type Button struct {
	Label string `bson:"label" json:"label"`
	URL   string `bson:"url" json:"url"`
}

// Parse turns free-text lines of the form "Label - https://example.com" into buttons.
// Lines without an http(s) URL half are skipped, so one bad line never blocks the rest.
func Parse(raw string) []Button {
	result := make([]Button, 0)
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		label, url, ok := splitLine(line)
		if !ok {
			continue
		}
		label = strings.TrimSpace(label)
		url = strings.TrimSpace(url)
		if label == "" || (!strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://")) {
			continue
		}
		result = append(result, Button{Label: truncate(label, MaxLabelLength), URL: url})
	}
	return result
}

// Format renders buttons back to the line format accepted by Parse.
func Format(btns []Button) string {
	lines := make([]string, 0, len(btns))
	for _, b := range btns {
		lines = append(lines, b.Label+" - "+b.URL)
	}
	return strings.Join(lines, "\n")
}

func splitLine(line string) (string, string, bool) {
	for _, sep := range separators {
		if label, url, found := strings.Cut(line, sep); found {
			return label, url, true
		}
	}
	return strings.Cut(line, "-")
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}
