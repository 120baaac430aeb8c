// Package ui renders console output: framed result boxes and data tables.
package ui

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// DefaultWidth is the box width used by the demos.
const DefaultWidth = 60

const (
	blockChar = "█"
	ruleChar  = "─"
	minWidth  = 6
)

// Box frames title and lines in a full-block border. Lines wider than the
// inner width are hard-wrapped.
func Box(title string, lines []string, width int) string {
	if width < minWidth {
		width = minWidth
	}
	inner := width - 2
	text := width - 4

	border := strings.Repeat(blockChar, width)
	empty := blockChar + strings.Repeat(" ", inner) + blockChar

	var b strings.Builder
	b.WriteString("\n\n")
	writeLine(&b, border)
	writeLine(&b, empty)
	writeLine(&b, blockChar+center(title, inner)+blockChar)
	writeLine(&b, empty)
	writeLine(&b, blockChar+strings.Repeat(ruleChar, inner)+blockChar)
	writeLine(&b, empty)

	for _, line := range lines {
		for _, chunk := range chunkRunes(line, text) {
			writeLine(&b, blockChar+" "+ljust(chunk, text)+" "+blockChar)
		}
	}

	writeLine(&b, empty)
	writeLine(&b, border)
	b.WriteString("\n\n")
	return b.String()
}

// PrintBox writes Box(title, lines, width) to w.
func PrintBox(w io.Writer, title string, lines []string, width int) {
	fmt.Fprint(w, Box(title, lines, width))
}

// center pads s with spaces to n runes. When the padding is odd the extra
// space goes left if n is odd and right otherwise, as Python's str.center.
func center(s string, n int) string {
	c := utf8.RuneCountInString(s)
	if c >= n {
		return s
	}
	marg := n - c
	left := marg/2 + (marg & n & 1)
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", marg-left)
}

// ljust pads s with spaces to n runes.
func ljust(s string, n int) string {
	if c := utf8.RuneCountInString(s); c < n {
		return s + strings.Repeat(" ", n-c)
	}
	return s
}

func writeLine(b *strings.Builder, s string) {
	b.WriteString(s)
	b.WriteByte('\n')
}

// chunkRunes splits s into pieces of at most n runes. An empty string
// yields one empty chunk.
func chunkRunes(s string, n int) []string {
	r := []rune(s)
	if len(r) <= n {
		return []string{s}
	}
	var out []string
	for len(r) > n {
		out = append(out, string(r[:n]))
		r = r[n:]
	}
	return append(out, string(r))
}
