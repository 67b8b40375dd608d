package ui

import (
	"github.com/mattn/go-runewidth"
)

// truncateRunesHelper cuts s to at most maxWidth terminal cells, ending it
// with suffix when cut. Wide runes count as two cells.
func truncateRunesHelper(s string, maxWidth int, suffix string) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if runewidth.StringWidth(suffix) >= maxWidth {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, suffix)
}

// padRight pads s with spaces to width cells.
func padRight(s string, width int) string {
	return runewidth.FillRight(s, width)
}
