package models

import "strings"

// CellKind discriminates the value held by a Cell.
type CellKind int

const (
	CellMissing CellKind = iota
	CellText
	CellNumber
)

// Cell is a single tabular value. Raw always holds the original text so
// that downstream coercion (e.g. date parsing) can reinterpret it.
type Cell struct {
	Kind   CellKind
	Raw    string
	Number float64
}

func MissingCell() Cell {
	return Cell{Kind: CellMissing}
}

func TextCell(s string) Cell {
	return Cell{Kind: CellText, Raw: s}
}

func NumberCell(raw string, v float64) Cell {
	return Cell{Kind: CellNumber, Raw: raw, Number: v}
}

func (c Cell) IsMissing() bool {
	return c.Kind == CellMissing
}

// Text returns the trimmed textual value, empty for missing cells.
func (c Cell) Text() string {
	return strings.TrimSpace(c.Raw)
}

// Dataset is an uploaded table after parsing: ordered column names and
// rows of cells aligned to those columns. It lives only for the duration
// of one analysis request and is never persisted.
type Dataset struct {
	Columns []string
	Rows    [][]Cell
}

// ColumnIndex returns the position of the named column, or -1.
func (d *Dataset) ColumnIndex(name string) int {
	for i, c := range d.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Cell returns the cell at (row, column index), or a missing cell when the
// row is shorter than the header.
func (d *Dataset) Cell(row, col int) Cell {
	if col < 0 || row < 0 || row >= len(d.Rows) || col >= len(d.Rows[row]) {
		return MissingCell()
	}
	return d.Rows[row][col]
}
