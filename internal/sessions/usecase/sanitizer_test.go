package usecase

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeClientMeta(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxLen   int
		expected string
	}{
		{
			name:     "plain value passes through",
			input:    "Chrome on Windows",
			maxLen:   256,
			expected: "Chrome on Windows",
		},
		{
			name:     "markup is stripped",
			input:    "<b>Firefox</b> on <i>Linux</i>",
			maxLen:   256,
			expected: "Firefox on Linux",
		},
		{
			name:     "control characters are removed",
			input:    "iPhone\x00 15\x1b Pro",
			maxLen:   256,
			expected: "iPhone 15 Pro",
		},
		{
			name:     "whitespace is collapsed and trimmed",
			input:    "  Safari \t\n on   macOS  ",
			maxLen:   256,
			expected: "Safari on macOS",
		},
		{
			name:     "overlong value is truncated",
			input:    strings.Repeat("a", 300),
			maxLen:   256,
			expected: strings.Repeat("a", 256),
		},
		{
			name:     "truncation lands on a rune boundary",
			input:    strings.Repeat("ü", 10),
			maxLen:   5,
			expected: strings.Repeat("ü", 2),
		},
		{
			name:     "empty input stays empty",
			input:    "",
			maxLen:   256,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeClientMeta(tt.input, tt.maxLen))
		})
	}
}

func TestSanitizeClientMeta_TruncationPreservesValidUTF8(t *testing.T) {
	input := "Привет мир " + strings.Repeat("界", 200)
	for maxLen := 1; maxLen <= 32; maxLen++ {
		out := SanitizeClientMeta(input, maxLen)
		assert.True(t, utf8.ValidString(out), "maxLen=%d produced invalid UTF-8", maxLen)
		assert.LessOrEqual(t, len(out), maxLen)
	}
}

func TestGenerateSessionToken(t *testing.T) {
	token, err := GenerateSessionToken()
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	// URL-safe alphabet only; tokens travel in JSON bodies and headers.
	assert.NotContains(t, token, "+")
	assert.NotContains(t, token, "/")
	assert.NotContains(t, token, "=")

	other, err := GenerateSessionToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}
