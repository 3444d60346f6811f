package sheet

import (
	"strings"

	"github.com/teranos/lexcell/errors"
)

// Layout says where the header rows and concept columns of a wordlist end.
type Layout struct {
	HeaderRows     int
	ConceptColumns int
}

// Language is a language column. Name comes from the first header row,
// Curator from the second when there is one.
type Language struct {
	Column  int
	Name    string
	Curator string
	Cell    string
	Comment string
}

// Entry is one concept row: the concept cells and the non-empty form cells.
type Entry struct {
	Row     int
	Concept []Cell
	Forms   []Cell
}

// Gloss is the rightmost non-empty concept cell of the row, so that leading
// set numbers or codes are passed over.
func (e Entry) Gloss() string {
	for i := len(e.Concept) - 1; i >= 0; i-- {
		if v := strings.TrimSpace(e.Concept[i].Value); v != "" {
			return v
		}
	}
	return ""
}

// Split divides the sheet by layout into language columns and concept rows.
// Rows without a concept and cells under unnamed columns are skipped.
func (s *Sheet) Split(l Layout) ([]Language, []Entry, error) {
	if l.HeaderRows < 1 {
		return nil, nil, errors.Newf("layout needs at least one header row, got %d", l.HeaderRows)
	}
	if l.ConceptColumns < 1 {
		return nil, nil, errors.Newf("layout needs at least one concept column, got %d", l.ConceptColumns)
	}

	var langs []Language
	byCol := make(map[int]bool)
	for col := l.ConceptColumns + 1; col <= s.Width(); col++ {
		head := s.Cell(col, 1)
		name := strings.TrimSpace(head.Value)
		if name == "" {
			continue
		}
		lang := Language{Column: col, Name: name, Cell: head.Coordinate, Comment: head.Comment}
		if l.HeaderRows >= 2 {
			lang.Curator = strings.TrimSpace(s.Cell(col, 2).Value)
		}
		langs = append(langs, lang)
		byCol[col] = true
	}
	if len(langs) == 0 {
		return nil, nil, errors.WithHint(
			errors.Newf("no language names in row 1 of %s right of column %d", s.Name, l.ConceptColumns),
			"check [import] concept_columns and header_rows")
	}

	var entries []Entry
	for row := l.HeaderRows + 1; row <= len(s.Rows); row++ {
		e := Entry{Row: row}
		for col := 1; col <= l.ConceptColumns; col++ {
			e.Concept = append(e.Concept, s.Cell(col, row))
		}
		if e.Gloss() == "" {
			continue
		}
		for _, c := range s.Rows[row-1] {
			if byCol[c.Col] && strings.TrimSpace(c.Value) != "" {
				e.Forms = append(e.Forms, c)
			}
		}
		entries = append(entries, e)
	}
	return langs, entries, nil
}
