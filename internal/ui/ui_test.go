package ui

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBox_Layout(t *testing.T) {
	out := Box("CHAIN EVENT TEST", []string{"Short line."}, 20)

	require.True(t, strings.HasPrefix(out, "\n\n"))
	require.True(t, strings.HasSuffix(out, "\n\n\n"))

	lines := strings.Split(strings.Trim(out, "\n"), "\n")
	want := []string{
		"████████████████████",
		"█                  █",
		"█ CHAIN EVENT TEST █",
		"█                  █",
		"█──────────────────█",
		"█                  █",
		"█ Short line.      █",
		"█                  █",
		"████████████████████",
	}
	assert.Equal(t, want, lines)
}

func TestBox_WrapsLongLines(t *testing.T) {
	out := Box("T", []string{"abcdefghijklmnopqrstuvwxyz"}, 14)
	assert.Contains(t, out, "█ abcdefghij █\n")
	assert.Contains(t, out, "█ klmnopqrst █\n")
	assert.Contains(t, out, "█ uvwxyz     █\n")

	for _, line := range strings.Split(strings.Trim(out, "\n"), "\n") {
		assert.Equal(t, 14, utf8.RuneCountInString(line), line)
	}
}

func TestBox_CentersTitle(t *testing.T) {
	out := Box("ab", nil, 10)
	assert.Contains(t, out, "█   ab   █\n")

	// odd padding: extra space left for an odd inner width, right for even
	assert.Contains(t, Box("ab", nil, 11), "█    ab   █\n")
	assert.Contains(t, Box("abc", nil, 10), "█  abc   █\n")
}

func TestBox_ClampsWidth(t *testing.T) {
	out := Box("", []string{"xyz"}, 2)
	assert.Contains(t, out, "██████\n")
	assert.Contains(t, out, "█ xy █\n")
	assert.Contains(t, out, "█ z  █\n")
}

func TestBox_EmptyLines(t *testing.T) {
	out := Box("EMPTY", []string{""}, 12)
	assert.Contains(t, out, "█          █\n█          █\n█          █\n")
}

func TestPrintBox(t *testing.T) {
	var buf bytes.Buffer
	PrintBox(&buf, "X", []string{"y"}, DefaultWidth)
	assert.Equal(t, Box("X", []string{"y"}, DefaultWidth), buf.String())
}

func TestTable(t *testing.T) {
	out := Table([]string{"date", "max temperature"}, [][]string{{"2026-01-27", "10.0"}, {"2026-01-28", "8.3"}})
	assert.Contains(t, out, "date")
	assert.Contains(t, out, "max temperature")
	assert.Contains(t, out, "2026-01-28")
	assert.Contains(t, out, "┌")
	assert.Equal(t, 6, strings.Count(out, "\n")+1)
}
