package stringutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPreview(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "short value unchanged", input: "abc123", want: "abc123"},
		{name: "exactly forty runes", input: strings.Repeat("a", 40), want: strings.Repeat("a", 40)},
		{name: "forty one runes cut", input: strings.Repeat("b", 41), want: strings.Repeat("b", 40) + "..."},
		{name: "multibyte runes counted once", input: strings.Repeat("ü", 45), want: strings.Repeat("ü", 40) + "..."},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Preview(tt.input))
		})
	}
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "", Truncate("abc", -1))
	require.Equal(t, "...", Truncate("abc", 0))
	require.Equal(t, "ab...", Truncate("abc", 2))
	require.Equal(t, "abc", Truncate("abc", 3))
}

func TestEllipsis(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		maxLength int
		expected  string
	}{
		{name: "no truncation needed", input: "hello world", maxLength: 20, expected: "hello world"},
		{name: "truncate with ellipsis", input: "The quick brown fox jumps over the lazy dog", maxLength: 16, expected: "The quick bro..."},
		{name: "tiny max length", input: "abcdefg", maxLength: 3, expected: "abc"},
		{name: "padded string", input: "   padded string   ", maxLength: 10, expected: "padded ..."},
		{name: "newlines flattened", input: "foo\nbar\r\nbaz", maxLength: 10, expected: "foo bar..."},
		{name: "zero max length", input: "something", maxLength: 0, expected: ""},
		{name: "multibyte", input: "çççççç", maxLength: 5, expected: "çç..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, Ellipsis(tt.input, tt.maxLength))
		})
	}
}
