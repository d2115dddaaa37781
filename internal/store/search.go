package store

import (
	"strings"

	"github.com/gabrieli/tamhui/internal/schema"
)

// Mode selects how a query is matched against a cell value.
type Mode int

const (
	// MatchSubstring is the default containment match. An empty query
	// matches every non-null cell, which is the documented way to list
	// all records.
	MatchSubstring Mode = iota
	// MatchExact requires full equality.
	MatchExact
	// MatchEmpty matches only null/blank cells; the query is ignored.
	// Used to find records with an unset column, e.g. driverless
	// families.
	MatchEmpty
)

type match struct {
	row int // offset within the content rows
	col int // the candidate column that matched
}

// scan is the search core: for each row, candidate columns are tried in
// order until the first hit, so a row is emitted at most once. Null cells
// never match except in MatchEmpty mode, where they are exactly what must
// match. norm, when non-nil, normalizes both sides before comparing.
func scan(rows [][]string, cols []int, query string, mode Mode, norm func(string) string) []match {
	q := query
	if norm != nil {
		q = norm(q)
	}
	var matches []match
	for i, row := range rows {
		for _, col := range cols {
			v := cellAt(row, col)
			if v == "" {
				if mode == MatchEmpty {
					matches = append(matches, match{row: i, col: col})
					break
				}
				continue
			}
			if mode == MatchEmpty {
				continue
			}
			if norm != nil {
				v = norm(v)
			}
			hit := false
			switch mode {
			case MatchExact:
				hit = v == q
			default:
				hit = strings.Contains(v, q)
			}
			if hit {
				matches = append(matches, match{row: i, col: col})
				break
			}
		}
	}
	return matches
}

func cellAt(row []string, col int) string {
	if col < len(row) {
		return row[col]
	}
	return ""
}

// normalizePhone strips the hyphen separator so "050-1234567" and
// "0501234567" compare equal. Applied only to the phone category.
func normalizePhone(v string) string {
	return strings.ReplaceAll(v, "-", "")
}

func (s *Store) normFor(by schema.Category) func(string) string {
	if by == schema.ByPhone && s.schema.HasCategory(schema.ByPhone) {
		return normalizePhone
	}
	return nil
}

func materialize(headers, row []string) Record {
	rec := make(Record, len(headers))
	for i, h := range headers {
		rec[h] = cellAt(row, i)
	}
	return rec
}

// Search returns every record whose cell in one of the search-by columns
// matches the query. An unknown or empty category falls back to the
// schema's default category. Matching rows are materialized whole against
// the current headers.
func (s *Store) Search(query string, by schema.Category, mode Mode) ([]Record, error) {
	rows, err := s.Rows()
	if err != nil {
		return nil, err
	}
	headers, err := s.Headers()
	if err != nil {
		return nil, err
	}
	cols := s.schema.Columns(by)
	var out []Record
	for _, m := range scan(rows, cols, query, mode, s.normFor(by)) {
		out = append(out, materialize(headers, rows[m.row]))
	}
	return out, nil
}

// SearchColumn is the column-projection variant: it returns only the raw
// cell values of the matching column, not whole records.
func (s *Store) SearchColumn(query string, by schema.Category, mode Mode) ([]string, error) {
	rows, err := s.Rows()
	if err != nil {
		return nil, err
	}
	cols := s.schema.Columns(by)
	var out []string
	for _, m := range scan(rows, cols, query, mode, s.normFor(by)) {
		out = append(out, cellAt(rows[m.row], m.col))
	}
	return out, nil
}

// StyleSearch behaves like Search, except the schema's style-encoded
// column carries the style-mapped tri-state value instead of the raw cell
// text. Styles missing from the map resolve to Unset.
func (s *Store) StyleSearch(query string, by schema.Category, mode Mode, styles StyleMap) ([]Record, error) {
	rows, err := s.Rows()
	if err != nil {
		return nil, err
	}
	headers, err := s.Headers()
	if err != nil {
		return nil, err
	}
	styleCol, hasStyleCol := s.schema.Column(s.schema.StyleField)
	cols := s.schema.Columns(by)
	var out []Record
	for _, m := range scan(rows, cols, query, mode, s.normFor(by)) {
		rec := materialize(headers, rows[m.row])
		if hasStyleCol && styleCol < len(headers) {
			name, err := s.wb.CellStyleName(styleCol+1, m.row+firstContentRow)
			if err != nil {
				return nil, err
			}
			rec[headers[styleCol]] = styles[name]
		}
		out = append(out, rec)
	}
	return out, nil
}
