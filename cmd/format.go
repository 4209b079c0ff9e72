package cmd

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// formatElapsed renders a run duration compactly.
//
//	<1s  -> "0.Xs"
//	<1m  -> "X.Xs"
//	<1h  -> "XmYs"
//	else -> "XhYm"
func formatElapsed(d time.Duration) string {
	ms := d.Milliseconds()
	switch {
	case ms < 1000:
		return fmt.Sprintf("0.%ds", ms/100)
	case ms < 60000:
		return fmt.Sprintf("%d.%ds", ms/1000, (ms%1000)/100)
	case ms < 3600000:
		return fmt.Sprintf("%dm%ds", ms/60000, (ms%60000)/1000)
	default:
		return fmt.Sprintf("%dh%dm", ms/3600000, (ms%3600000)/60000)
	}
}

// truncID cuts an ID to at most max bytes plus an ellipsis, on a rune boundary.
func truncID(id string, max int) string {
	if len(id) <= max {
		return id
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(id[cut]) {
		cut--
	}
	return id[:cut] + "..."
}

// truncMiddle keeps both ends of a long entity ID ("pwc:dataset/...-2012"),
// where the type prefix and the distinguishing suffix live.
func truncMiddle(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	if maxRunes <= 3 {
		return string(runes[:maxRunes])
	}
	available := maxRunes - 3
	head := (available + 1) / 2
	tail := available / 2
	return string(runes[:head]) + "..." + string(runes[len(runes)-tail:])
}
