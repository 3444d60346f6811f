// Package sheet reads wordlist spreadsheets into cells with A1 coordinates.
//
// A wordlist has language names across its header rows and concepts down its
// leftmost columns; every other non-empty cell holds the forms of one language
// for one concept.
package sheet

import (
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/teranos/lexcell/errors"
)

// Cell is one spreadsheet cell. Row and Col are 1-based.
type Cell struct {
	Coordinate string `json:"cell"`
	Row        int    `json:"row"`
	Col        int    `json:"col"`
	Value      string `json:"value"`
	Comment    string `json:"comment,omitempty"`
}

// Sheet is a fully loaded worksheet.
type Sheet struct {
	Name string
	Path string
	Rows [][]Cell
}

// Open loads a worksheet from path, choosing the reader by extension. An
// empty name selects the first worksheet of a workbook.
func Open(path, name string) (*Sheet, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return OpenXLSX(path, name)
	case ".csv":
		return OpenCSV(path, ',')
	case ".tsv", ".tab":
		return OpenCSV(path, '\t')
	default:
		return nil, errors.WithHint(
			errors.Wrapf(errors.ErrUnsupportedFormat, "cannot read %s", path),
			"wordlists must be .xlsx, .xlsm, .csv or .tsv files")
	}
}

// Coordinate returns the A1 name of a 1-based column and row.
func Coordinate(col, row int) string {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return ""
	}
	return name
}

// CleanValue trims a raw cell value and turns line breaks into ";\t" so that
// a multi-line cell separates like a semicolon-separated one.
func CleanValue(v string) string {
	v = strings.TrimSpace(v)
	v = strings.ReplaceAll(v, "\r\n", "\n")
	return strings.ReplaceAll(v, "\n", ";\t")
}

// Cell returns the cell at a 1-based position, or a blank cell.
func (s *Sheet) Cell(col, row int) Cell {
	if row >= 1 && row <= len(s.Rows) && col >= 1 && col <= len(s.Rows[row-1]) {
		return s.Rows[row-1][col-1]
	}
	return Cell{Coordinate: Coordinate(col, row), Row: row, Col: col}
}

// Width is the number of columns of the widest row.
func (s *Sheet) Width() int {
	w := 0
	for _, r := range s.Rows {
		w = max(w, len(r))
	}
	return w
}

func buildRows(values [][]string, comments map[string]string) [][]Cell {
	rows := make([][]Cell, len(values))
	for r, vals := range values {
		cells := make([]Cell, len(vals))
		for c, v := range vals {
			coord := Coordinate(c+1, r+1)
			cells[c] = Cell{
				Coordinate: coord,
				Row:        r + 1,
				Col:        c + 1,
				Value:      v,
				Comment:    comments[coord],
			}
		}
		rows[r] = cells
	}
	return rows
}
