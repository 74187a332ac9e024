package discord

import (
	"strings"
	"unicode/utf8"
)

// MaxMessageLength is the Discord limit for message content, in characters.
const MaxMessageLength = 2000

// SplitMessage cuts text into parts of at most limit characters, breaking
// between lines when possible. Lines longer than limit are cut hard on rune
// boundaries. Blank parts are dropped.
func SplitMessage(text string, limit int) []string {
	if limit <= 0 {
		limit = MaxMessageLength
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	var (
		parts []string
		cur   strings.Builder
		n     int
	)
	flush := func() {
		if part := strings.TrimRight(cur.String(), "\n"); strings.TrimSpace(part) != "" {
			parts = append(parts, part)
		}
		cur.Reset()
		n = 0
	}

	for _, line := range strings.SplitAfter(text, "\n") {
		size := utf8.RuneCountInString(line)
		if n+size > limit {
			flush()
		}
		for size > limit {
			head, tail := cutRunes(line, limit)
			cur.WriteString(head)
			n = limit
			flush()
			line, size = tail, size-limit
		}
		cur.WriteString(line)
		n += size
	}
	flush()
	return parts
}

// cutRunes splits s after its first n runes.
func cutRunes(s string, n int) (string, string) {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos], s[pos:]
		}
		i++
	}
	return s, ""
}
