package layout

import "github.com/fkorte/briefroll/content"

// List row geometry in pixels. The checkbox is inset from the left margin,
// item text starts right of the box, and rows keep a small gap between them.
const (
	ListIndent   = 10.0
	CheckboxSize = 12.0
	CheckboxGap  = 8.0

	listRowGap       = 5.0
	listItemMaxChars = 70
)

// Compose walks doc in order and turns every section into measured blocks.
// The result is the single source of truth for all backends: raster, command
// stream and text mirror consume the same wrapped lines, the same truncated
// items and the same heights, so their outputs cannot diverge. Degenerate
// sections (empty paragraph, zero-item list, zero-row table) contribute no
// blocks; an empty document composes to bare margins.
func Compose(m Measurer, doc content.Document, paperMM int) *Composition {
	width := PaperWidthPx(paperMM)
	c := &composer{m: m, inner: width - 2*Margin}

	for _, sec := range doc {
		switch s := sec.(type) {
		case content.Header:
			c.header(s)
		case content.Paragraph:
			c.paragraph(s)
		case content.List:
			c.list(s)
		case content.Table:
			c.table(s)
		case content.Footer:
			c.footer(s)
		}
	}

	comp := &Composition{
		Width:      width,
		CharBudget: CharBudget(paperMM),
		Blocks:     c.blocks,
	}
	comp.Height = 2 * Margin
	for _, b := range c.blocks {
		comp.Height += b.Height
	}
	return comp
}

type composer struct {
	m      Measurer
	inner  float64
	blocks []Block
}

func (c *composer) push(b Block) { c.blocks = append(c.blocks, b) }

func (c *composer) spacer(h float64) {
	c.push(Block{Kind: BlockSpacer, Height: h})
}

func (c *composer) rule(style RuleStyle, strokeWidth float64) {
	h := strokeWidth + 2
	if style == RuleAccent {
		h = 5 // three stacked hairlines plus clearance
	}
	c.push(Block{Kind: BlockRule, Height: h, Rule: style, RuleWidth: strokeWidth})
}

// centered emits a single unwrapped line advancing by the bare em size.
func (c *composer) centered(role FontRole, text string, muted bool) {
	c.push(Block{
		Kind:        BlockText,
		Height:      role.Size(),
		Role:        role,
		Align:       AlignCenter,
		Lines:       []Line{{Text: text, Width: c.m.TextWidth(role, text)}},
		LineAdvance: role.Size(),
		Muted:       muted,
	})
}

func (c *composer) header(h content.Header) {
	if h.Greeting == "" && h.Title == "" && h.DateLine == "" {
		return
	}
	c.rule(RuleAccent, 1)
	c.spacer(15)
	if h.Greeting != "" {
		c.centered(RoleTitle, h.Greeting, false)
		c.spacer(15)
	}
	if h.Title != "" {
		c.centered(RoleBody, h.Title, true)
		c.spacer(10)
	}
	if h.DateLine != "" {
		c.centered(RoleSmall, h.DateLine, false)
		c.spacer(20)
	}
	c.rule(RuleSolid, 2)
	c.spacer(25)
}

func (c *composer) paragraph(p content.Paragraph) {
	lines := Wrap(c.m, RoleBody, p.Body, c.inner)
	if len(lines) == 0 {
		return
	}
	adv := RoleBody.Size() * spacingLoose
	c.push(Block{
		Kind:        BlockText,
		Height:      float64(len(lines)) * adv,
		Role:        RoleBody,
		Align:       AlignLeft,
		Lines:       lines,
		LineAdvance: adv,
	})
	c.spacer(25)
}

func (c *composer) list(l content.List) {
	if len(l.Items) == 0 {
		return
	}
	c.rule(RuleDashed, 1)
	c.spacer(15)
	if l.Title != "" {
		c.centered(RoleSmall, l.Title, true)
		c.spacer(15)
	}

	items := make([]Line, 0, len(l.Items))
	for _, it := range l.Items {
		text, _ := Truncate(it.Text, listItemMaxChars)
		items = append(items, Line{Text: text, Width: c.m.TextWidth(RoleTiny, text)})
	}

	// Every row consumes the checkbox height plus its clearance; the gap is
	// added between rows only, so the last row ends flush.
	rowStep := CheckboxSize + CheckboxGap
	c.push(Block{
		Kind:       BlockList,
		Height:     float64(len(items)-1)*(rowStep+listRowGap) + rowStep,
		Role:       RoleTiny,
		Items:      items,
		RowAdvance: rowStep + listRowGap,
	})
	c.spacer(15)
}

func (c *composer) table(t content.Table) {
	if len(t.Columns) == 0 || len(t.Rows) == 0 {
		return
	}
	if t.Title != "" {
		c.centered(RoleSmall, t.Title, true)
		c.spacer(6)
	}
	g := LayoutTable(c.m, t, c.inner)
	c.push(Block{Kind: BlockTable, Height: g.Height, Grid: g})
	c.spacer(15)
}

func (c *composer) footer(f content.Footer) {
	if f.Text == "" {
		return
	}
	c.rule(RuleAccent, 1)
	c.spacer(23)
	lines := Wrap(c.m, RoleTiny, f.Text, c.inner)
	adv := RoleTiny.Size() * spacingTight
	c.push(Block{
		Kind:        BlockText,
		Height:      float64(len(lines)) * adv,
		Role:        RoleTiny,
		Align:       AlignCenter,
		Lines:       lines,
		LineAdvance: adv,
		Muted:       true,
	})
}
