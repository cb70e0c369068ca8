package layout

import "strings"

const ellipsis = "..."

// Truncate shortens text to at most maxChars runes, cutting on word
// boundaries where it can. When the text is cut, "..." is appended and the
// ellipsis is counted against the budget, so the result never exceeds
// maxChars. If not even the first word fits, the text is cut mid-word.
//
// Unlike Wrap this enforces a single-line character budget and is what list
// items and compact cells go through; the two never share code. Budgets
// smaller than the ellipsis itself degrade to a bare hard cut.
func Truncate(text string, maxChars int) (string, bool) {
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text, false
	}
	if maxChars <= len(ellipsis) {
		if maxChars < 0 {
			maxChars = 0
		}
		return string(runes[:maxChars]), true
	}

	budget := maxChars - len(ellipsis)

	var b strings.Builder
	count := 0
	for _, word := range strings.Fields(text) {
		wordLen := len([]rune(word))
		sep := 0
		if count > 0 {
			sep = 1
		}
		if count+sep+wordLen > budget {
			break
		}
		if sep == 1 {
			b.WriteByte(' ')
		}
		b.WriteString(word)
		count += sep + wordLen
	}
	if count > 0 {
		return b.String() + ellipsis, true
	}
	return string(runes[:budget]) + ellipsis, true
}
