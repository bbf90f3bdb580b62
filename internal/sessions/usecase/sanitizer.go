package usecase

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Length caps for client-supplied metadata persisted with a session.
const (
	maxDeviceInfoLength = 256
	maxUserAgentLength  = 512
)

var (
	markupRegex     = regexp.MustCompile(`<[^>]*>`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

// SanitizeClientMeta strips markup and control characters from untrusted
// client metadata and caps its length. The stored value is later rendered and
// inspected by operators, so it must never carry active content.
func SanitizeClientMeta(s string, maxLen int) string {
	s = markupRegex.ReplaceAllString(s, "")

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7f {
			continue
		}
		b.WriteRune(r)
	}
	s = whitespaceRegex.ReplaceAllString(b.String(), " ")
	s = strings.TrimSpace(s)

	if maxLen > 0 && len(s) > maxLen {
		// Back up to a rune boundary so the cut never splits a multi-byte rune.
		cut := maxLen
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut]
	}
	return s
}
