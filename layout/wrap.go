package layout

import "strings"

// Wrap greedily fills lines with whitespace-delimited words so that every
// line measures at most maxWidth. A word that alone exceeds maxWidth is
// broken by binary-search hyphenation: the longest prefix whose width
// including a trailing "-" still fits is emitted as its own line and the
// search repeats on the remainder. Empty input yields no lines.
//
// The wrapper has no knowledge of which backend consumes the lines; widths
// come exclusively from the Measurer.
func Wrap(m Measurer, role FontRole, text string, maxWidth float64) []Line {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []Line
	current := ""
	emit := func(s string) {
		lines = append(lines, Line{Text: s, Width: m.TextWidth(role, s)})
	}

	for _, word := range words {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if m.TextWidth(role, candidate) <= maxWidth {
			current = candidate
			continue
		}
		if current != "" {
			emit(current)
			current = ""
		}
		if m.TextWidth(role, word) > maxWidth {
			for _, chunk := range hyphenate(m, role, word, maxWidth) {
				emit(chunk)
			}
			continue
		}
		current = word
	}
	if current != "" {
		emit(current)
	}
	return lines
}

// hyphenate splits an oversized word into fitting chunks, each but the last
// carrying a trailing hyphen. Every chunk keeps at least one rune so the
// split always makes progress; a single rune wider than maxWidth comes back
// as-is (the degenerate case, clipped downstream).
func hyphenate(m Measurer, role FontRole, word string, maxWidth float64) []string {
	var chunks []string
	remaining := []rune(word)
	for len(remaining) > 0 {
		low, high := 1, len(remaining)
		best := 1
		for low <= high {
			mid := (low + high) / 2
			chunk := string(remaining[:mid])
			if mid < len(remaining) {
				chunk += "-"
			}
			if m.TextWidth(role, chunk) <= maxWidth {
				best = mid
				low = mid + 1
			} else {
				high = mid - 1
			}
		}
		chunk := string(remaining[:best])
		if best < len(remaining) {
			chunk += "-"
		}
		chunks = append(chunks, chunk)
		remaining = remaining[best:]
	}
	return chunks
}
