package main

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// wrapToWidth word-wraps s so no line exceeds max display columns. Emoji are
// double-width in most terminals, so wrapping goes by display width rather
// than rune count. Words wider than max are emitted on their own line.
func wrapToWidth(s string, max int) string {
	if max <= 0 {
		return s
	}

	var out []string
	for _, line := range strings.Split(s, "\n") {
		out = append(out, wrapLine(line, max)...)
	}

	return strings.Join(out, "\n")
}

func wrapLine(line string, max int) []string {
	if runewidth.StringWidth(line) <= max {
		return []string{line}
	}

	words := strings.Fields(line)
	if len(words) == 0 {
		return []string{line}
	}

	var (
		wrapped []string
		current string
		width   int
	)

	for _, w := range words {
		ww := runewidth.StringWidth(w)

		if current != "" && width+1+ww > max {
			wrapped = append(wrapped, current)
			current, width = "", 0
		}

		if current == "" {
			current, width = w, ww
			continue
		}

		current += " " + w
		width += 1 + ww
	}

	if current != "" {
		wrapped = append(wrapped, current)
	}

	return wrapped
}
