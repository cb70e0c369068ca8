package dsl

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/fkorte/briefroll/content"
)

var placeholderPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Content lowers the AST into a validated content.Document. Every string is
// interpolated against data first; a malformed table surfaces here with its
// source position, so renderers never see one.
func (d *Document) Content(data any) (content.Document, error) {
	doc := make(content.Document, 0, len(d.Sections))
	for _, s := range d.Sections {
		switch {
		case s.Header != nil:
			var h content.Header
			for _, e := range s.Header.Entries {
				v := Interpolate(string(e.Value), data)
				switch e.Key {
				case "greeting":
					h.Greeting = v
				case "title":
					h.Title = v
				case "date":
					h.DateLine = v
				}
			}
			doc = append(doc, h)
		case s.Para != nil:
			doc = append(doc, content.Paragraph{Body: Interpolate(string(s.Para.Body), data)})
		case s.List != nil:
			items := make([]string, 0, len(s.List.Items))
			for _, it := range s.List.Items {
				items = append(items, Interpolate(string(it), data))
			}
			doc = append(doc, content.NewList(Interpolate(string(s.List.Title), data), items))
		case s.Table != nil:
			cols := interpolateAll(s.Table.Columns, data)
			rows := make([][]string, 0, len(s.Table.Rows))
			for _, r := range s.Table.Rows {
				rows = append(rows, interpolateAll(r.Cells, data))
			}
			tbl, err := content.NewTable(Interpolate(string(s.Table.Title), data), cols, rows)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", s.Table.Pos, err)
			}
			doc = append(doc, tbl)
		case s.Footer != nil:
			doc = append(doc, content.Footer{Text: Interpolate(string(s.Footer.Text), data)})
		}
	}
	return doc, nil
}

func interpolateAll(vals []StringLiteral, data any) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		out = append(out, Interpolate(string(v), data))
	}
	return out
}

// Interpolate replaces ${path.to[0].value} placeholders in text with values
// looked up in data (maps keyed by string, slices indexed numerically, as
// produced by encoding/json). Placeholders whose path does not resolve stay
// verbatim, so a missing binding is visible on the printout instead of
// silently blank.
func Interpolate(text string, data any) string {
	if data == nil {
		return text
	}
	return placeholderPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := placeholderPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		path := strings.TrimSpace(groups[1])
		if path == "" {
			return match
		}
		if val, ok := resolvePath(data, path); ok {
			return fmt.Sprint(val)
		}
		return match
	})
}

func resolvePath(data any, path string) (any, bool) {
	current := data
	for _, segment := range strings.Split(path, ".") {
		name, indexes := parseSegment(segment)
		if name != "" {
			var ok bool
			current, ok = descendMap(current, name)
			if !ok {
				return nil, false
			}
		}
		for _, idxStr := range indexes {
			idx, err := strconv.Atoi(idxStr)
			if err != nil {
				return nil, false
			}
			var ok bool
			current, ok = descendIndex(current, idx)
			if !ok {
				return nil, false
			}
		}
	}
	return current, true
}

// parseSegment splits "name[0][1]" into the name and its index strings.
func parseSegment(segment string) (string, []string) {
	name := segment
	var indexes []string
	if i := strings.Index(segment, "["); i != -1 {
		name = segment[:i]
		rest := segment[i:]
		for len(rest) > 0 && rest[0] == '[' {
			end := strings.IndexByte(rest, ']')
			if end == -1 {
				break
			}
			indexes = append(indexes, rest[1:end])
			rest = rest[end+1:]
		}
	}
	return name, indexes
}

func descendMap(current any, key string) (any, bool) {
	m, ok := current.(map[string]any)
	if !ok {
		return nil, false
	}
	val, ok := m[key]
	return val, ok
}

func descendIndex(current any, idx int) (any, bool) {
	s, ok := current.([]any)
	if !ok || idx < 0 || idx >= len(s) {
		return nil, false
	}
	return s[idx], true
}
