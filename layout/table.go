package layout

import "github.com/fkorte/briefroll/content"

// Grid geometry in pixels. Cell text is inset by the pad on every side; the
// gap keeps consecutive row borders from fusing into a smear at print
// resolution.
const (
	tableCellPad = 4.0
	tableRowGap  = 2.0
)

// LayoutTable lays out t across innerWidth. Columns get equal spans, each
// header and cell wraps independently inside its span minus padding, and a
// row is as tall as its tallest wrapped cell. Every laid-out row carries
// exactly Columns cells: short rows are padded with empty cells, surplus
// cells are dropped. All offsets are relative to the grid origin; a table
// without columns lays out as an empty grid.
func LayoutTable(m Measurer, t content.Table, innerWidth float64) *TableGrid {
	cols := len(t.Columns)
	if cols == 0 {
		return &TableGrid{}
	}

	g := &TableGrid{
		Columns:  cols,
		ColWidth: innerWidth / float64(cols),
		Width:    innerWidth,
		CellPad:  tableCellPad,
		RowGap:   tableRowGap,
	}
	wrapWidth := g.ColWidth - 2*tableCellPad

	g.Header = layoutRow(m, RoleSmallBold, t.Columns, cols, wrapWidth)
	g.Rows = make([]TableRow, 0, len(t.Rows))
	for _, cells := range t.Rows {
		g.Rows = append(g.Rows, layoutRow(m, RoleTiny, cells, cols, wrapWidth))
	}

	g.Height = g.Header.Height + tableRowGap
	for _, r := range g.Rows {
		g.Height += r.Height + tableRowGap
	}
	return g
}

func layoutRow(m Measurer, role FontRole, cells []string, cols int, wrapWidth float64) TableRow {
	row := TableRow{
		Role:    role,
		Advance: role.Size() * spacingBody,
		Cells:   make([]TableCell, cols),
	}
	var tallest float64
	for i := 0; i < cols; i++ {
		var text string
		if i < len(cells) {
			text = cells[i]
		}
		lines := Wrap(m, role, text, wrapWidth)
		row.Cells[i] = TableCell{Lines: lines}
		if h := float64(len(lines)) * row.Advance; h > tallest {
			tallest = h
		}
	}
	row.Height = tallest + 2*tableCellPad
	return row
}
