package discord

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func TestSplitMessage_Short(t *testing.T) {
	require.Nil(t, SplitMessage("", 10))
	require.Nil(t, SplitMessage(" \n ", 10))
	require.Equal(t, []string{"hello"}, SplitMessage("hello", 10))
	require.Equal(t, []string{"hello"}, SplitMessage("hello", 0))
}

func TestSplitMessage_OnLineBoundaries(t *testing.T) {
	text := "aaaa\nbbbb\ncccc\ndddd"

	parts := SplitMessage(text, 10)
	require.Equal(t, []string{"aaaa\nbbbb", "cccc\ndddd"}, parts)
}

func TestSplitMessage_LongLine(t *testing.T) {
	text := strings.Repeat("x", 25)

	parts := SplitMessage(text, 10)
	require.Equal(t, []string{strings.Repeat("x", 10), strings.Repeat("x", 10), strings.Repeat("x", 5)}, parts)
}

func TestSplitMessage_KeepsRunesWhole(t *testing.T) {
	text := strings.Repeat("ж", 15) + "\n" + strings.Repeat("ß", 7)

	parts := SplitMessage(text, 6)
	require.NotEmpty(t, parts)
	var joined strings.Builder
	for _, p := range parts {
		require.True(t, utf8.ValidString(p))
		require.LessOrEqual(t, utf8.RuneCountInString(p), 6)
		joined.WriteString(p)
	}
	require.Equal(t, strings.ReplaceAll(text, "\n", ""), joined.String())
}

func TestSplitMessage_DiscordLimit(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 300; i++ {
		b.WriteString("hund  de>en  dog = der Hund\n")
	}

	parts := SplitMessage(b.String(), MaxMessageLength)
	require.Greater(t, len(parts), 1)
	lines := 0
	for _, p := range parts {
		require.LessOrEqual(t, utf8.RuneCountInString(p), MaxMessageLength)
		lines += strings.Count(p, "\n") + 1
	}
	require.Equal(t, 300, lines)
}
