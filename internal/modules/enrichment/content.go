package enrichment

import (
	"regexp"
	"strings"
)

var hashtagRe = regexp.MustCompile(`#[\p{L}\p{N}_]+`)

// extractHashtags pulls distinct hashtags out of text and tops the list up
// with the defaults, capped at maxHashtags.
func extractHashtags(text string) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(tag string) {
		if len(out) >= maxHashtags || seen[tag] {
			return
		}
		seen[tag] = true
		out = append(out, tag)
	}
	for _, tag := range hashtagRe.FindAllString(text, -1) {
		add(tag)
	}
	for _, tag := range defaultHashtags {
		add(tag)
	}
	return out
}

// clampLines keeps the first n non-empty lines.
func clampLines(text string, n int) string {
	var lines []string
	for _, ln := range strings.Split(text, "\n") {
		ln = strings.TrimSpace(ln)
		if ln == "" {
			continue
		}
		lines = append(lines, ln)
		if len(lines) == n {
			break
		}
	}
	return strings.Join(lines, "\n")
}
