// Package textout writes the UTF-8 mirror of a receipt: the same composed
// lines and truncations as the raster and command outputs, laid out with
// spaces inside the character budget. Useful for diffing briefs without
// rasterizing anything.
package textout

import (
	"errors"
	"strings"

	"github.com/fkorte/briefroll/layout"
	"github.com/fkorte/briefroll/render"
)

const spacerBlankPx = 15.0

// Renderer produces the plain-text mirror.
type Renderer struct{}

var _ render.Renderer = (*Renderer)(nil)

// New returns a text renderer.
func New() *Renderer { return &Renderer{} }

// Render implements render.Renderer.
func (r *Renderer) Render(comp *layout.Composition) ([]byte, error) {
	if comp == nil {
		return nil, errors.New("textout: nil composition")
	}
	var b strings.Builder
	budget := comp.CharBudget

	for _, blk := range comp.Blocks {
		switch blk.Kind {
		case layout.BlockText:
			for _, ln := range blk.Lines {
				b.WriteString(place(ln.Text, blk.Align, budget))
				b.WriteByte('\n')
			}
		case layout.BlockRule:
			b.WriteString(ruleLine(blk.Rule, budget))
			b.WriteByte('\n')
		case layout.BlockList:
			for _, it := range blk.Items {
				b.WriteString("□ " + it.Text)
				b.WriteByte('\n')
			}
		case layout.BlockTable:
			writeTable(&b, blk.Grid, budget)
		case layout.BlockSpacer:
			if blk.Height >= spacerBlankPx {
				b.WriteByte('\n')
			}
		}
	}
	return []byte(b.String()), nil
}

func place(s string, align layout.Align, budget int) string {
	n := len([]rune(s))
	switch align {
	case layout.AlignCenter:
		if pad := (budget - n) / 2; pad > 0 {
			return strings.Repeat(" ", pad) + s
		}
	case layout.AlignRight:
		if pad := budget - n; pad > 0 {
			return strings.Repeat(" ", pad) + s
		}
	}
	return s
}

func ruleLine(style layout.RuleStyle, budget int) string {
	switch style {
	case layout.RuleDashed:
		return strings.Repeat("-", budget)
	case layout.RuleDotted:
		return strings.Repeat(". ", budget/2)
	default:
		return strings.Repeat("=", budget)
	}
}

func writeTable(b *strings.Builder, g *layout.TableGrid, budget int) {
	if g == nil || g.Columns == 0 {
		return
	}
	colw := (budget - (g.Columns + 1)) / g.Columns
	if colw < 1 {
		colw = 1
	}
	border := "+" + strings.Repeat(strings.Repeat("-", colw)+"+", g.Columns)

	b.WriteString(border)
	b.WriteByte('\n')
	for _, row := range append([]layout.TableRow{g.Header}, g.Rows...) {
		depth := 1
		for _, cell := range row.Cells {
			if len(cell.Lines) > depth {
				depth = len(cell.Lines)
			}
		}
		for k := 0; k < depth; k++ {
			b.WriteByte('|')
			for _, cell := range row.Cells {
				var text string
				if k < len(cell.Lines) {
					text = cell.Lines[k].Text
				}
				b.WriteString(fit(text, colw))
				b.WriteByte('|')
			}
			b.WriteByte('\n')
		}
		b.WriteString(border)
		b.WriteByte('\n')
	}
}

// fit pads or clips s to exactly width character cells.
func fit(s string, width int) string {
	runes := []rune(s)
	if len(runes) > width {
		return string(runes[:width])
	}
	return s + strings.Repeat(" ", width-len(runes))
}
