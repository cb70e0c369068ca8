// Package content defines the document model consumed by the layout engine.
//
// A Document is an ordered list of sections produced once per receipt
// generation, consumed exactly once by the compositor, and discarded. All
// strings are opaque UTF-8: section titles, greetings and labels may arrive in
// any language, and nothing here assumes Latin-script semantics beyond
// whitespace word boundaries.
package content

import "fmt"

// Document is the root value passed into rendering.
type Document []Section

// Section is one renderable unit of a Document. The set of implementations is
// closed: Header, Paragraph, List, Table, Footer.
type Section interface {
	section()
}

// Header opens the receipt: greeting, title and a formatted date line, all
// centered.
type Header struct {
	Greeting string
	Title    string
	DateLine string
}

// Paragraph is free text wrapped to the page width.
type Paragraph struct {
	Body string
}

// List is a titled sequence of checkbox items. Each item stays on one line and
// is truncated independently.
type List struct {
	Title string
	Items []ListItem
}

// ListItem is a single checkbox row.
type ListItem struct {
	Text string
}

// Table is a titled grid with column headers. Every row must carry exactly
// len(Columns) cells; use NewTable to enforce that at construction time.
type Table struct {
	Title   string // optional, empty means untitled
	Columns []string
	Rows    [][]string
}

// Footer closes the receipt.
type Footer struct {
	Text string
}

func (Header) section()    {}
func (Paragraph) section() {}
func (List) section()      {}
func (Table) section()     {}
func (Footer) section()    {}

// NewTable builds a Table and rejects malformed input: a row with a cell count
// different from len(columns) is a caller bug and is surfaced here, never
// silently fixed at render time.
func NewTable(title string, columns []string, rows [][]string) (Table, error) {
	if len(columns) == 0 && len(rows) > 0 {
		return Table{}, fmt.Errorf("table %q has %d rows but no columns", title, len(rows))
	}
	for i, row := range rows {
		if len(row) != len(columns) {
			return Table{}, fmt.Errorf("table %q row %d has %d cells, want %d", title, i, len(row), len(columns))
		}
	}
	return Table{Title: title, Columns: columns, Rows: rows}, nil
}

// NewList builds a List from plain item strings.
func NewList(title string, items []string) List {
	l := List{Title: title, Items: make([]ListItem, 0, len(items))}
	for _, it := range items {
		l.Items = append(l.Items, ListItem{Text: it})
	}
	return l
}
