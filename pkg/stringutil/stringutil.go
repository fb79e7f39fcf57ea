// Package stringutil provides small string helpers shared by the engine and the CLI.
package stringutil

import "strings"

// PreviewLimit is the number of runes kept by Preview before "..." is appended.
const PreviewLimit = 40

// Preview cuts s to its first PreviewLimit runes and appends "..." when anything was cut.
// Shorter values are returned unchanged.
func Preview(s string) string {
	return Truncate(s, PreviewLimit)
}

// Truncate keeps the first max runes of s and appends "..." when s is longer.
// The suffix is not counted against max.
func Truncate(s string, max int) string {
	if max < 0 {
		return ""
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i] + "..."
		}
		n++
	}
	return s
}

// Ellipsis flattens s onto a single line and shortens it to at most maxLength runes,
// ending in "..." if truncation occurs. Used for table cells.
func Ellipsis(s string, maxLength int) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\n", " ")

	if maxLength <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxLength {
		return s
	}
	if maxLength <= 3 {
		return string(runes[:maxLength])
	}
	return string(runes[:maxLength-3]) + "..."
}
