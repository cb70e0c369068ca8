// Package escpos emits printer command streams for 58mm-class thermal heads.
// Text passes through as UTF-8 exactly as composed; the emitter adds control
// sequences only. Tables degrade to ASCII-bordered rows because the printer
// has no vector primitive for grid lines.
package escpos

import (
	"bytes"
	"errors"
	"strings"

	"github.com/fkorte/briefroll/layout"
	"github.com/fkorte/briefroll/render"
)

const (
	esc byte = 0x1B
	gs  byte = 0x1D
)

const (
	alignLeft   byte = 0
	alignCenter byte = 1
	alignRight  byte = 2
)

// Spacers at least this tall print as one blank line; smaller gaps collapse,
// since the printer advances in whole character lines anyway.
const spacerFeedPx = 15.0

// Renderer emits ESC/POS byte streams from composed blocks.
type Renderer struct{}

var _ render.Renderer = (*Renderer)(nil)

// New returns an ESC/POS renderer.
func New() *Renderer { return &Renderer{} }

// Render implements render.Renderer: init, the composed blocks as control
// sequences plus verbatim text, then feed and cut.
func (r *Renderer) Render(comp *layout.Composition) ([]byte, error) {
	if comp == nil {
		return nil, errors.New("escpos: nil composition")
	}
	w := &stream{budget: comp.CharBudget}
	w.raw(esc, '@') // init

	for _, b := range comp.Blocks {
		switch b.Kind {
		case layout.BlockText:
			w.textBlock(b)
		case layout.BlockRule:
			w.rule(b.Rule)
		case layout.BlockList:
			w.list(b)
		case layout.BlockTable:
			w.table(b.Grid)
		case layout.BlockSpacer:
			if b.Height >= spacerFeedPx {
				w.feed()
			}
		}
	}

	w.feed()
	w.feed()
	w.raw(gs, 'V', 'B', 0) // feed to cut position and cut
	return w.buf.Bytes(), nil
}

type stream struct {
	buf    bytes.Buffer
	budget int
}

func (w *stream) raw(bs ...byte)   { w.buf.Write(bs) }
func (w *stream) align(n byte)     { w.raw(esc, 'a', n) }
func (w *stream) size(n byte)      { w.raw(gs, '!', n) }
func (w *stream) emphasis(on bool) { w.raw(esc, 'E', flag(on)) }
func (w *stream) feed()            { w.buf.WriteByte('\n') }

func (w *stream) line(s string) {
	w.buf.WriteString(s)
	w.buf.WriteByte('\n')
}

func flag(on bool) byte {
	if on {
		return 1
	}
	return 0
}

func (w *stream) textBlock(b layout.Block) {
	switch b.Align {
	case layout.AlignCenter:
		w.align(alignCenter)
	case layout.AlignRight:
		w.align(alignRight)
	default:
		w.align(alignLeft)
	}
	if b.Role == layout.RoleTitle {
		w.size(0x11) // double width and height
	} else {
		w.size(0x00)
	}
	if b.Role.Bold() {
		w.emphasis(true)
	}
	for _, ln := range b.Lines {
		w.line(ln.Text)
	}
	if b.Role.Bold() {
		w.emphasis(false)
	}
	w.size(0x00)
}

func (w *stream) rule(style layout.RuleStyle) {
	w.align(alignLeft)
	w.size(0x00)
	switch style {
	case layout.RuleDashed:
		w.line(strings.Repeat("-", w.budget))
	case layout.RuleDotted:
		w.line(strings.Repeat(". ", w.budget/2))
	default: // solid and accent
		w.line(strings.Repeat("=", w.budget))
	}
}

func (w *stream) list(b layout.Block) {
	w.align(alignLeft)
	w.size(0x00)
	for _, it := range b.Items {
		w.line("□ " + it.Text)
	}
}

func (w *stream) table(g *layout.TableGrid) {
	if g == nil || g.Columns == 0 {
		return
	}
	colw := (w.budget - (g.Columns + 1)) / g.Columns
	if colw < 1 {
		colw = 1
	}
	border := "+" + strings.Repeat(strings.Repeat("-", colw)+"+", g.Columns)

	w.align(alignLeft)
	w.size(0x00)
	w.line(border)
	for _, row := range append([]layout.TableRow{g.Header}, g.Rows...) {
		if row.Role.Bold() {
			w.emphasis(true)
		}
		depth := 1
		for _, cell := range row.Cells {
			if len(cell.Lines) > depth {
				depth = len(cell.Lines)
			}
		}
		for k := 0; k < depth; k++ {
			var sb strings.Builder
			sb.WriteByte('|')
			for _, cell := range row.Cells {
				var text string
				if k < len(cell.Lines) {
					text = cell.Lines[k].Text
				}
				sb.WriteString(padClip(text, colw))
				sb.WriteByte('|')
			}
			w.line(sb.String())
		}
		if row.Role.Bold() {
			w.emphasis(false)
		}
		w.line(border)
	}
}

// padClip fits s into exactly width character cells: right-padded with
// spaces, clipped on rune boundaries when longer.
func padClip(s string, width int) string {
	runes := []rune(s)
	if len(runes) > width {
		return string(runes[:width])
	}
	return s + strings.Repeat(" ", width-len(runes))
}
