package layout

import (
	"math"
	"strings"
	"testing"
	"unicode/utf8"
)

// fixedMeasurer charges a flat per-rune width, so expected line breaks can be
// computed by hand. Hyphens cost the same as any other rune.
type fixedMeasurer struct {
	runeWidth float64
}

func (m fixedMeasurer) TextWidth(_ FontRole, s string) float64 {
	return float64(len([]rune(s))) * m.runeWidth
}

func TestWrapEmptyInputYieldsNoLines(t *testing.T) {
	m := fixedMeasurer{runeWidth: 10}
	for _, in := range []string{"", "   ", "\n\t "} {
		if lines := Wrap(m, RoleBody, in, 100); len(lines) != 0 {
			t.Fatalf("Wrap(%q) = %d lines, want 0", in, len(lines))
		}
	}
}

// TestWrapWidthInvariant asserts that every produced line measures within the
// budget, across a spread of widths and inputs.
func TestWrapWidthInvariant(t *testing.T) {
	m := fixedMeasurer{runeWidth: 7}
	inputs := []string{
		"a b c",
		"the quick brown fox jumps over the lazy dog",
		"ein einzelnesunglaublichlangeswort am ende",
		strings.Repeat("wort ", 60),
	}
	for _, in := range inputs {
		for _, width := range []float64{35, 70, 140, 280} {
			for _, ln := range Wrap(m, RoleBody, in, width) {
				if ln.Width > width+1e-6 {
					t.Fatalf("line %q: width %g exceeds budget %g", ln.Text, ln.Width, width)
				}
				if got := m.TextWidth(RoleBody, ln.Text); math.Abs(got-ln.Width) > 1e-6 {
					t.Fatalf("line %q: stored width %g, measured %g", ln.Text, ln.Width, got)
				}
			}
		}
	}
}

func TestWrapGreedyFill(t *testing.T) {
	m := fixedMeasurer{runeWidth: 10}
	// Budget of 11 runes per line.
	lines := Wrap(m, RoleBody, "aa bb cc dd ee", 110)
	want := []string{"aa bb cc dd", "ee"}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d: %+v", len(lines), len(want), lines)
	}
	for i, w := range want {
		if lines[i].Text != w {
			t.Fatalf("line %d = %q, want %q", i, lines[i].Text, w)
		}
	}
}

// TestWrapCollapsesWhitespace verifies that runs of spaces, tabs and
// newlines act as single separators.
func TestWrapCollapsesWhitespace(t *testing.T) {
	m := fixedMeasurer{runeWidth: 1}
	lines := Wrap(m, RoleBody, "eins\t zwei\n\ndrei", 1000)
	if len(lines) != 1 || lines[0].Text != "eins zwei drei" {
		t.Fatalf("got %+v, want a single collapsed line", lines)
	}
}

// TestWrapHyphenatesOversizedWord checks the binary-search break: each chunk
// except the last carries a trailing hyphen and fits the budget.
func TestWrapHyphenatesOversizedWord(t *testing.T) {
	m := fixedMeasurer{runeWidth: 10}
	// 10 runes per chunk budget; word of 24 runes.
	word := "abcdefghijklmnopqrstuvwx"
	lines := Wrap(m, RoleBody, word, 100)
	if len(lines) < 3 {
		t.Fatalf("expected >= 3 chunks, got %+v", lines)
	}
	var rebuilt strings.Builder
	for i, ln := range lines {
		if ln.Width > 100+1e-6 {
			t.Fatalf("chunk %q exceeds budget", ln.Text)
		}
		last := i == len(lines)-1
		if !last && !strings.HasSuffix(ln.Text, "-") {
			t.Fatalf("chunk %d %q missing trailing hyphen", i, ln.Text)
		}
		if last && strings.HasSuffix(ln.Text, "-") {
			t.Fatalf("final chunk %q must not carry a hyphen", ln.Text)
		}
		rebuilt.WriteString(strings.TrimSuffix(ln.Text, "-"))
	}
	if rebuilt.String() != word {
		t.Fatalf("chunks reassemble to %q, want %q", rebuilt.String(), word)
	}
}

// TestWrapHyphenationMakesProgress guards the degenerate budget: even when a
// single rune exceeds the width, wrapping terminates, consuming one rune per
// chunk.
func TestWrapHyphenationMakesProgress(t *testing.T) {
	m := fixedMeasurer{runeWidth: 50}
	lines := Wrap(m, RoleBody, "abc", 10)
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3: %+v", len(lines), lines)
	}
	if lines[2].Text != "c" {
		t.Fatalf("final chunk = %q, want %q", lines[2].Text, "c")
	}
}

// TestWrapThreeHundredCharParagraph pins the scenario of a 300-character
// paragraph at a width fitting 40 characters per line: greedy fill, no line
// over budget, and the word order preserved.
func TestWrapThreeHundredCharParagraph(t *testing.T) {
	m := fixedMeasurer{runeWidth: 1}
	var b strings.Builder
	for b.Len() < 300 {
		b.WriteString("wetter heute sonnig mit wolken am abend ")
	}
	text := strings.TrimSpace(b.String()[:300])

	lines := Wrap(m, RoleBody, text, 40)
	if len(lines) == 0 {
		t.Fatalf("no lines produced")
	}
	for _, ln := range lines {
		if ln.Width > 40 {
			t.Fatalf("line %q exceeds 40-char budget", ln.Text)
		}
	}
	joined := strings.Join(strings.Fields(text), " ")
	var parts []string
	for _, ln := range lines {
		parts = append(parts, ln.Text)
	}
	if strings.Join(parts, " ") != joined {
		t.Fatalf("wrapped lines do not reassemble the input")
	}
	// Greedy fill cannot do worse than one word per line and cannot beat the
	// ceiling of len/width.
	minLines := (len([]rune(joined)) + 39) / 40
	if len(lines) < minLines {
		t.Fatalf("got %d lines, below the %d-line floor", len(lines), minLines)
	}
}

func TestWrapRuneSafety(t *testing.T) {
	m := fixedMeasurer{runeWidth: 10}
	// Umlauts are multi-byte; a byte-indexed break would split them.
	lines := Wrap(m, RoleBody, "überüberlangergrüßwörter", 50)
	for _, ln := range lines {
		if !utf8.ValidString(ln.Text) {
			t.Fatalf("line %q is not valid UTF-8", ln.Text)
		}
	}
}
