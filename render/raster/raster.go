// Package raster draws compositions with github.com/tdewolff/canvas and
// produces the PNG receipt image. The engine doubles as the layout Measurer,
// so the widths the compositor wraps against are the widths the canvas
// actually draws.
//
// Canvas units are treated as pixels at the nominal 203dpi head resolution;
// font faces are sized in points so one em spans exactly the role's pixel
// size. Rasterization happens at the supersample factor and is downsampled
// to the nominal width for the anti-aliased look thermal heads print well.
package raster

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"math"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"
	xdraw "golang.org/x/image/draw"

	"github.com/fkorte/briefroll/fonts"
	"github.com/fkorte/briefroll/layout"
	"github.com/fkorte/briefroll/render"
)

// Options configures the engine. Paths override the built-in faces.
type Options struct {
	FontRegular string
	FontBold    string
}

// Engine renders compositions and measures text for the layout pass.
type Engine struct {
	regular *canvas.FontFamily
	bold    *canvas.FontFamily

	mu    sync.Mutex
	faces map[faceKey]*canvas.FontFace
}

var (
	_ render.Renderer = (*Engine)(nil)
	_ layout.Measurer = (*Engine)(nil)
)

type faceKey struct {
	role  layout.FontRole
	muted bool
}

var inkGray = canvas.Hex("#666666")

// New loads the regular and bold faces and returns a ready engine.
func New(opts Options) (*Engine, error) {
	regData, err := fonts.Regular(opts.FontRegular)
	if err != nil {
		return nil, err
	}
	boldData, err := fonts.Bold(opts.FontBold)
	if err != nil {
		return nil, err
	}

	regular := canvas.NewFontFamily("briefroll")
	if err := regular.LoadFont(regData, 0, canvas.FontRegular); err != nil {
		return nil, fmt.Errorf("load regular face: %w", err)
	}
	bold := canvas.NewFontFamily("briefroll-bold")
	if err := bold.LoadFont(boldData, 0, canvas.FontBold); err != nil {
		return nil, fmt.Errorf("load bold face: %w", err)
	}
	return &Engine{
		regular: regular,
		bold:    bold,
		faces:   map[faceKey]*canvas.FontFace{},
	}, nil
}

// TextWidth implements layout.Measurer against the real font faces.
func (e *Engine) TextWidth(role layout.FontRole, s string) float64 {
	return e.face(role, false).TextWidth(s)
}

// Render implements render.Renderer: the composition rasterized at the
// supersample factor, downsampled to nominal size and encoded as PNG.
func (e *Engine) Render(comp *layout.Composition) ([]byte, error) {
	img, err := e.Draw(comp)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Draw rasterizes the composition to an image at its nominal pixel size.
// Zero blocks yield a white margins-only strip.
func (e *Engine) Draw(comp *layout.Composition) (image.Image, error) {
	if comp == nil {
		return nil, errors.New("raster: nil composition")
	}

	c := canvas.New(comp.Width, comp.Height)
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV)

	ctx.SetFillColor(canvas.White)
	ctx.SetStrokeColor(canvas.Transparent)
	ctx.DrawPath(0, 0, canvas.Rectangle(comp.Width, comp.Height))

	y := layout.Margin
	for _, b := range comp.Blocks {
		switch b.Kind {
		case layout.BlockText:
			e.drawText(ctx, comp, b, y)
		case layout.BlockRule:
			e.drawRule(ctx, comp, b, y)
		case layout.BlockList:
			e.drawList(ctx, b, y)
		case layout.BlockTable:
			e.drawTable(ctx, b.Grid, y)
		}
		y += b.Height
	}

	big := rasterizer.Draw(c, canvas.DPMM(layout.Supersample), nil)

	dst := image.NewRGBA(image.Rect(0, 0, int(math.Round(comp.Width)), int(math.Round(comp.Height))))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), big, big.Bounds(), xdraw.Src, nil)
	return dst, nil
}

func (e *Engine) drawText(ctx *canvas.Context, comp *layout.Composition, b layout.Block, y float64) {
	face := e.face(b.Role, b.Muted)
	ascent := face.Metrics().Ascent
	var anchor float64
	var align canvas.TextAlign
	switch b.Align {
	case layout.AlignCenter:
		anchor, align = comp.Width/2, canvas.Center
	case layout.AlignRight:
		anchor, align = comp.Width-layout.Margin, canvas.Right
	default:
		anchor, align = layout.Margin, canvas.Left
	}
	for i, ln := range b.Lines {
		top := y + float64(i)*b.LineAdvance
		ctx.DrawText(anchor, top+ascent, canvas.NewTextLine(face, ln.Text, align))
	}
}

func (e *Engine) drawRule(ctx *canvas.Context, comp *layout.Composition, b layout.Block, y float64) {
	left := layout.Margin
	right := comp.Width - layout.Margin
	width := b.RuleWidth
	if width <= 0 {
		width = 1
	}

	if b.Rule == layout.RuleDotted {
		ctx.SetFillColor(canvas.Black)
		ctx.SetStrokeColor(canvas.Transparent)
		for x := left; x < right; x += 6 {
			ctx.DrawPath(x, y-1, canvas.Circle(1))
		}
		return
	}

	ctx.SetStrokeColor(canvas.Black)
	ctx.SetStrokeWidth(width)
	p := &canvas.Path{}
	switch b.Rule {
	case layout.RuleDashed:
		for x := 0.0; x < right-left; x += 8 {
			p.MoveTo(x, 0)
			p.LineTo(math.Min(x+4, right-left), 0)
		}
	case layout.RuleAccent:
		for i := 0; i < 3; i++ {
			p.MoveTo(0, float64(i))
			p.LineTo(right-left, float64(i))
		}
	default:
		p.MoveTo(0, 0)
		p.LineTo(right-left, 0)
	}
	ctx.DrawPath(left, y, p)
}

func (e *Engine) drawList(ctx *canvas.Context, b layout.Block, y float64) {
	face := e.face(b.Role, false)
	ascent := face.Metrics().Ascent
	boxX := layout.Margin + layout.ListIndent
	textX := boxX + layout.CheckboxSize + layout.CheckboxGap

	for i, it := range b.Items {
		top := y + float64(i)*b.RowAdvance
		ctx.SetFillColor(canvas.Transparent)
		ctx.SetStrokeColor(canvas.Black)
		ctx.SetStrokeWidth(1)
		ctx.DrawPath(boxX, top, canvas.Rectangle(layout.CheckboxSize, layout.CheckboxSize))
		ctx.DrawText(textX, top+ascent, canvas.NewTextLine(face, it.Text, canvas.Left))
	}
}

func (e *Engine) drawTable(ctx *canvas.Context, g *layout.TableGrid, y float64) {
	if g == nil || g.Columns == 0 {
		return
	}
	left := layout.Margin
	bounds := g.Boundaries()

	ctx.SetStrokeColor(canvas.Black)
	ctx.SetStrokeWidth(1)
	line := func(x1, y1, x2, y2 float64) {
		p := &canvas.Path{}
		p.MoveTo(0, 0)
		p.LineTo(x2-x1, y2-y1)
		ctx.DrawPath(x1, y1, p)
	}

	line(left, y, left+g.Width, y)

	rowTop := y
	for _, row := range append([]layout.TableRow{g.Header}, g.Rows...) {
		face := e.face(row.Role, false)
		ascent := face.Metrics().Ascent

		for _, bx := range bounds {
			line(left+bx, rowTop, left+bx, rowTop+row.Height)
		}
		for j, cell := range row.Cells {
			cellX := left + bounds[j] + g.CellPad
			for k, ln := range cell.Lines {
				baseline := rowTop + g.CellPad + float64(k)*row.Advance + ascent
				ctx.DrawText(cellX, baseline, canvas.NewTextLine(face, ln.Text, canvas.Left))
			}
		}
		line(left, rowTop+row.Height, left+g.Width, rowTop+row.Height)
		rowTop += row.Height + g.RowGap
	}
}

// face returns the cached font face for a role. Unknown roles resolve to the
// regular family at the default body size, so a bad role degrades instead of
// failing the render.
func (e *Engine) face(role layout.FontRole, muted bool) *canvas.FontFace {
	e.mu.Lock()
	defer e.mu.Unlock()

	key := faceKey{role: role, muted: muted}
	if f, ok := e.faces[key]; ok {
		return f
	}

	family, style := e.regular, canvas.FontRegular
	if role.Bold() {
		family, style = e.bold, canvas.FontBold
	}
	ink := canvas.Black
	if muted {
		ink = inkGray
	}
	f := family.Face(toPt(role.Size()), ink, style, canvas.FontNormal)
	e.faces[key] = f
	return f
}

// toPt sizes a face in points so its em spans the given number of canvas
// units (treated as px).
func toPt(px float64) float64 { return px * 72.0 / 25.4 }
