package textout

import (
	"strings"
	"testing"

	"github.com/fkorte/briefroll/content"
	"github.com/fkorte/briefroll/layout"
)

type charMeasurer struct {
	runeWidth float64
}

func (m charMeasurer) TextWidth(_ layout.FontRole, s string) float64 {
	return float64(len([]rune(s))) * m.runeWidth
}

func renderDoc(t *testing.T, doc content.Document) string {
	t.Helper()
	comp := layout.Compose(charMeasurer{runeWidth: 6}, doc, 58)
	out, err := New().Render(comp)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	return string(out)
}

func TestRenderCentersWithinBudget(t *testing.T) {
	doc := content.Document{content.Header{Greeting: "Hallo!"}}
	text := renderDoc(t, doc)

	// budget 32, 6 runes: 13 leading spaces
	want := strings.Repeat(" ", 13) + "Hallo!\n"
	if !strings.Contains(text, want) {
		t.Fatalf("greeting not centered, output:\n%s", text)
	}
	for _, ln := range strings.Split(text, "\n") {
		if strings.HasSuffix(ln, " ") {
			t.Fatalf("line %q carries trailing padding", ln)
		}
	}
}

func TestRenderRules(t *testing.T) {
	comp := &layout.Composition{
		CharBudget: 32,
		Blocks: []layout.Block{
			{Kind: layout.BlockRule, Rule: layout.RuleAccent},
			{Kind: layout.BlockRule, Rule: layout.RuleDashed},
			{Kind: layout.BlockRule, Rule: layout.RuleDotted},
		},
	}
	out, err := New().Render(comp)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := strings.Repeat("=", 32) + "\n" +
		strings.Repeat("-", 32) + "\n" +
		strings.Repeat(". ", 16) + "\n"
	if string(out) != want {
		t.Fatalf("rules = %q, want %q", out, want)
	}
}

func TestRenderListItems(t *testing.T) {
	doc := content.Document{content.NewList("AUFGABEN", []string{"Milch", "Brot"})}
	text := renderDoc(t, doc)
	for _, want := range []string{"□ Milch\n", "□ Brot\n"} {
		if !strings.Contains(text, want) {
			t.Fatalf("output lacks %q:\n%s", want, text)
		}
	}
}

func TestRenderTruncatedItemsMirrorTheComposition(t *testing.T) {
	long := strings.Repeat("a", 80)
	doc := content.Document{content.NewList("AUFGABEN", []string{long})}
	text := renderDoc(t, doc)

	want := "□ " + strings.Repeat("a", 67) + "...\n"
	if !strings.Contains(text, want) {
		t.Fatalf("mirror does not carry the composed truncation:\n%s", text)
	}
	if strings.Contains(text, long) {
		t.Fatalf("mirror re-printed the untruncated item")
	}
}

func TestRenderDeterministic(t *testing.T) {
	doc := content.Document{
		content.Header{Greeting: "Guten Morgen!", Title: "KI-Tagesbrief", DateLine: "Montag"},
		content.Paragraph{Body: "Heute wird es sonnig bei 24 Grad mit etwas Wind aus Westen."},
		content.Footer{Text: "Erstellt um 07:30"},
	}
	if a, b := renderDoc(t, doc), renderDoc(t, doc); a != b {
		t.Fatalf("two passes over the same document diverged")
	}
}

func TestRenderTableMatchesCommandLayout(t *testing.T) {
	tbl, err := content.NewTable("WETTER", []string{"Zeit", "Lage"}, [][]string{
		{"09:00", "sonnig"},
	})
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	text := renderDoc(t, content.Document{tbl})

	border := "+" + strings.Repeat(strings.Repeat("-", 14)+"+", 2)
	if got := strings.Count(text, border+"\n"); got != 3 {
		t.Fatalf("got %d borders, want 3 (top, after header, after row):\n%s", got, text)
	}
	if !strings.Contains(text, "|Zeit          |") {
		t.Fatalf("header cell not padded to column width:\n%s", text)
	}
	if !strings.Contains(text, "|09:00         |sonnig        |\n") {
		t.Fatalf("data row mislaid:\n%s", text)
	}
}

func TestRenderSpacersBecomeBlankLines(t *testing.T) {
	comp := &layout.Composition{
		CharBudget: 32,
		Blocks: []layout.Block{
			{Kind: layout.BlockText, Role: layout.RoleBody, Lines: []layout.Line{{Text: "a"}}},
			{Kind: layout.BlockSpacer, Height: 20},
			{Kind: layout.BlockSpacer, Height: 6}, // collapses
			{Kind: layout.BlockText, Role: layout.RoleBody, Lines: []layout.Line{{Text: "b"}}},
		},
	}
	out, err := New().Render(comp)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got, want := string(out), "a\n\nb\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRenderNilComposition(t *testing.T) {
	if _, err := New().Render(nil); err == nil {
		t.Fatalf("nil composition should error")
	}
}

// TestMirrorsCommandStreamText checks the mirror carries exactly the lines
// the command backend prints, so the two outputs can be diffed.
func TestMirrorsCommandStreamText(t *testing.T) {
	doc := content.Document{
		content.Header{Greeting: "Guten Morgen!", Title: "KI-Tagesbrief", DateLine: "Montag"},
		content.Paragraph{Body: "Heute wird es sonnig."},
		content.Footer{Text: "Erstellt um 07:30"},
	}
	comp := layout.Compose(charMeasurer{runeWidth: 6}, doc, 58)
	out, err := New().Render(comp)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	text := string(out)
	for _, b := range comp.Blocks {
		for _, ln := range b.Lines {
			if !strings.Contains(text, ln.Text) {
				t.Fatalf("mirror lacks composed line %q", ln.Text)
			}
		}
	}
}
