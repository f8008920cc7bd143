package util

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// opening fence with an optional language tag: ```json, ```JSON, ```javascript
var openFenceRe = regexp.MustCompile("^```[A-Za-z0-9_+-]*")

// StripCodeFences removes leading markdown fences (with their tags) and
// trailing ones. Applying it twice gives the same result as applying it once.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	for {
		loc := openFenceRe.FindStringIndex(s)
		if loc == nil {
			break
		}
		s = strings.TrimSpace(s[loc[1]:])
	}
	for strings.HasSuffix(s, "```") {
		s = strings.TrimSpace(strings.TrimSuffix(s, "```"))
	}
	return s
}

// OuterBraces returns the substring from the first '{' to the last '}'
// inclusive, or false when there is no such pair.
func OuterBraces(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end < start {
		return "", false
	}
	return s[start : end+1], true
}

// Truncate cuts s to at most n bytes for log lines, backing off to a rune
// boundary.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n < 0 {
		n = 0
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
