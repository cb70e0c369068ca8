// Package dsl parses .brief files, a small block language for authoring
// receipts by hand. A file holds one brief: named sections in print order,
// strings quoted Go-style. Parsing yields an AST; Content lowers it into a
// validated content.Document, interpolating ${path} placeholders against an
// optional data value.
package dsl

import (
	"fmt"
	"io"
	"strconv"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	briefLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		{Name: "HashComment", Pattern: `#[^\n]*`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Punct", Pattern: `[{}:]`},
	})

	documentParser = participle.MustBuild[Document](
		participle.Lexer(briefLexer),
		participle.Elide("Whitespace", "LineComment", "HashComment"),
	)
)

// Document is the root AST node for a .brief file.
type Document struct {
	Pos      lexer.Position `parser:"" json:"-"`
	Name     StringLiteral  `parser:"'brief' @String"`
	Sections []*Section     `parser:"'{' @@* '}'"`
}

// Section is one receipt section in print order.
type Section struct {
	Header *HeaderSection `parser:"  @@"`
	Para   *ParaSection   `parser:"| @@"`
	List   *ListSection   `parser:"| @@"`
	Table  *TableSection  `parser:"| @@"`
	Footer *FooterSection `parser:"| @@"`
}

// Kind returns the human-readable section type.
func (s *Section) Kind() string {
	switch {
	case s == nil:
		return "unknown"
	case s.Header != nil:
		return "header"
	case s.Para != nil:
		return "para"
	case s.List != nil:
		return "list"
	case s.Table != nil:
		return "table"
	case s.Footer != nil:
		return "footer"
	default:
		return "unknown"
	}
}

// HeaderSection carries keyed header entries in any order.
type HeaderSection struct {
	Entries []*HeaderEntry `parser:"'header' '{' @@* '}'"`
}

// HeaderEntry is one header assignment (greeting/title/date).
type HeaderEntry struct {
	Key   string        `parser:"@('greeting' | 'title' | 'date')"`
	Value StringLiteral `parser:"':' @String"`
}

// ParaSection is one wrapped paragraph.
type ParaSection struct {
	Body StringLiteral `parser:"'para' @String"`
}

// ListSection is a titled checkbox list.
type ListSection struct {
	Title StringLiteral   `parser:"'list' @String"`
	Items []StringLiteral `parser:"'{' ( 'item' @String )* '}'"`
}

// TableSection is a titled grid. Column headers are mandatory; every row must
// match their count, which the lowering step enforces.
type TableSection struct {
	Pos     lexer.Position  `parser:"" json:"-"`
	Title   StringLiteral   `parser:"'table' @String"`
	Columns []StringLiteral `parser:"'{' 'columns' @String+"`
	Rows    []*TableRow     `parser:"@@* '}'"`
}

// TableRow is one data row.
type TableRow struct {
	Cells []StringLiteral `parser:"'row' @String+"`
}

// FooterSection closes the receipt.
type FooterSection struct {
	Text StringLiteral `parser:"'footer' @String"`
}

// StringLiteral unquotes Go-style strings on capture.
type StringLiteral string

// Capture implements participle.Capture.
func (s *StringLiteral) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("string literal capture requires value")
	}
	val, err := strconv.Unquote(values[0])
	if err != nil {
		return err
	}
	*s = StringLiteral(val)
	return nil
}

// Parse reads a .brief document from r.
func Parse(r io.Reader) (*Document, error) {
	return documentParser.Parse("", r)
}

// ParseString parses a .brief document from a string.
func ParseString(input string) (*Document, error) {
	return documentParser.ParseString("", input)
}
