package assay

import "strings"

// Cell is one table cell. Valid is false for cells the table detector left
// empty (no text at all), which is distinct from a cell holding "".
type Cell struct {
	Text  string
	Valid bool
}

// TextCell returns a populated cell.
func TextCell(s string) Cell {
	return Cell{Text: s, Valid: true}
}

// String returns the cell text, or "" for an absent cell.
func (c Cell) String() string {
	if !c.Valid {
		return ""
	}
	return c.Text
}

// empty reports whether the cell carries no text.
func (c Cell) empty() bool {
	return !c.Valid || c.Text == ""
}

// Table is a grid of cells in row-major order. Rows may differ in length.
type Table [][]Cell

// NewTable builds a Table from plain strings; handy for sources that have no
// notion of absent cells.
func NewTable(rows ...[]string) Table {
	t := make(Table, len(rows))
	for i, r := range rows {
		t[i] = make([]Cell, len(r))
		for j, s := range r {
			t[i][j] = TextCell(s)
		}
	}
	return t
}

// Page is one page of a decoded document.
type Page struct {
	Number int // 1-indexed
	Text   string
	Tables []Table
}

// Document is the decoded input of one extraction: page-ordered text and the
// tables detected on each page.
type Document struct {
	Pages []Page
}

// FullText joins the page texts with newlines, in page order.
func (d Document) FullText() string {
	parts := make([]string, len(d.Pages))
	for i, p := range d.Pages {
		parts[i] = p.Text
	}
	return strings.Join(parts, "\n")
}
