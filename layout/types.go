// Package layout turns a content.Document into measured, renderable blocks.
//
// All geometry is in pixels at the nominal printer resolution (203dpi, 8
// dots/mm). Text is measured through the Measurer interface so the engine
// stays independent of any particular font backend; every wrapping and
// truncation decision is made exactly once, here, and the render backends
// consume the finished blocks verbatim.
package layout

// FontRole names the fixed set of type styles a receipt uses. Sizes are the
// original 1x pixel sizes; the raster backend supersamples internally.
type FontRole int

const (
	RoleTitle     FontRole = iota // greeting line
	RoleBody                      // paragraphs, header title
	RoleSmall                     // section titles, date line
	RoleSmallBold                 // table header row
	RoleTiny                      // list items, table cells, footer
)

// Size returns the em size of the role in pixels.
func (r FontRole) Size() float64 {
	switch r {
	case RoleTitle:
		return 26
	case RoleBody:
		return 16
	case RoleSmall, RoleSmallBold:
		return 14
	case RoleTiny:
		return 12
	default:
		return 16
	}
}

// Bold reports whether the role uses the bold face.
func (r FontRole) Bold() bool {
	return r == RoleTitle || r == RoleSmallBold
}

func (r FontRole) String() string {
	switch r {
	case RoleTitle:
		return "title"
	case RoleBody:
		return "body"
	case RoleSmall:
		return "small"
	case RoleSmallBold:
		return "small-bold"
	case RoleTiny:
		return "tiny"
	default:
		return "unknown"
	}
}

// Baseline advance multipliers applied to the role size. Paragraphs breathe
// more than table cells; centered footer lines are tighter still.
const (
	spacingLoose = 1.4
	spacingBody  = 1.35
	spacingTight = 1.25
)

// Measurer reports the rendered pixel width of text in a font role. The
// raster engine implements it against real font faces; tests use a stub.
type Measurer interface {
	TextWidth(role FontRole, s string) float64
}

// Line is a single wrapped line. Width never exceeds the wrap budget except
// for a lone glyph that is wider than the budget by itself; that line is
// clipped by the backends rather than re-broken.
type Line struct {
	Text  string  `json:"text"`
	Width float64 `json:"width"`
}

// Align is the horizontal placement of a text block.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// RuleStyle selects the drawing of a horizontal separator.
type RuleStyle int

const (
	RuleSolid  RuleStyle = iota
	RuleDashed           // 4px dash on an 8px period
	RuleDotted           // dots on a 6px period
	RuleAccent           // decorative triple rule around header and footer
)

// BlockKind discriminates the Block union.
type BlockKind int

const (
	BlockText   BlockKind = iota // Lines at Role/Align, advancing LineAdvance per line
	BlockRule                    // full-width separator in Rule style
	BlockList                    // checkbox rows, one truncated Line per item
	BlockTable                   // Grid
	BlockSpacer                  // vertical gap only
)

// Block is one fully measured unit in the composed sequence. A Block belongs
// to exactly one position in a Composition and is consumed identically by the
// raster, command and text backends.
type Block struct {
	Kind   BlockKind `json:"kind"`
	Height float64   `json:"height"`

	Role        FontRole `json:"role,omitempty"`
	Align       Align    `json:"align,omitempty"`
	Lines       []Line   `json:"lines,omitempty"`
	LineAdvance float64  `json:"lineAdvance,omitempty"`
	Muted       bool     `json:"muted,omitempty"` // gray ink on raster output

	Rule      RuleStyle `json:"rule,omitempty"`
	RuleWidth float64   `json:"ruleWidth,omitempty"` // stroke thickness in px

	Items      []Line  `json:"items,omitempty"`
	RowAdvance float64 `json:"rowAdvance,omitempty"`

	Grid *TableGrid `json:"grid,omitempty"`
}

// TableGrid is a laid-out table: equal column spans, rows as tall as their
// tallest wrapped cell. All offsets are relative to the grid origin so it
// composes like any other block.
type TableGrid struct {
	Columns  int        `json:"columns"`
	ColWidth float64    `json:"colWidth"`
	Width    float64    `json:"width"`
	Height   float64    `json:"height"`
	CellPad  float64    `json:"cellPad"`
	RowGap   float64    `json:"rowGap"`
	Header   TableRow   `json:"header"`
	Rows     []TableRow `json:"rows"`
}

// TableRow is one laid-out row. Height includes the vertical cell padding;
// Advance is the baseline step between the wrapped lines inside a cell.
type TableRow struct {
	Height  float64     `json:"height"`
	Role    FontRole    `json:"role"`
	Advance float64     `json:"advance"`
	Cells   []TableCell `json:"cells"`
}

// TableCell carries the wrapped lines of one cell.
type TableCell struct {
	Lines []Line `json:"lines"`
}

// Boundaries returns the x offsets of the vertical grid lines, including both
// outer edges (len == Columns+1).
func (g *TableGrid) Boundaries() []float64 {
	bs := make([]float64, g.Columns+1)
	for i := 0; i <= g.Columns; i++ {
		bs[i] = float64(i) * g.ColWidth
	}
	return bs
}

// Composition is the output of Compose: the block sequence plus the final
// canvas geometry. CharBudget is the character line width the byte-oriented
// backends use for separators and centering (32 for 58mm paper).
type Composition struct {
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	CharBudget int     `json:"charBudget"`
	Blocks     []Block `json:"blocks"`
}
