// Package store binds one tabular workbook file to a schema and exposes row
// iteration, search and record lifecycle operations over it.
//
// Stores follow an open-mutate-save lifecycle: every logical operation opens
// the file fresh, mutates the in-memory workbook, and rewrites the whole file
// on save. There is no caching across operations and no cross-process
// locking; concurrent writers to one file race and the last save wins.
package store

import (
	"fmt"

	"github.com/gabrieli/tamhui/internal/apperr"
	"github.com/gabrieli/tamhui/internal/schema"
	"github.com/gabrieli/tamhui/internal/workbook"
)

// firstContentRow is the first record row; row 1 holds the headers.
const firstContentRow = 2

// Record maps field names to cell values. Values are strings as read from
// the file ("" is the null cell), except style-encoded fields which carry a
// TriState.
type Record map[string]any

// Key returns the record's key field value, or "" when absent.
func (r Record) Key(s *schema.Schema) string {
	v, _ := r[s.Key].(string)
	return v
}

// RowFunc casts a record to an ordered row of cell values. A nil value
// leaves the cell blank but styled.
type RowFunc func(Record) ([]any, error)

// SchemaRow returns a RowFunc that lays record values out in the schema's
// field order. Absent fields and empty strings become null cells.
func SchemaRow(sc *schema.Schema) RowFunc {
	return func(rec Record) ([]any, error) {
		row := make([]any, len(sc.Fields))
		for i, f := range sc.Fields {
			if v, ok := rec[f]; ok && v != "" && v != nil {
				row[i] = v
			}
		}
		return row, nil
	}
}

// Store is a schema-bound handle to one workbook file.
type Store struct {
	wb     *workbook.File
	schema *schema.Schema
}

// Create builds a fresh workbook file satisfying the schema's file
// contract: header row, record cell style and, when the schema names one,
// the table range.
func Create(path string, sc *schema.Schema) error {
	wb, err := workbook.Create(path, "Sheet1", sc.Fields)
	if err != nil {
		return err
	}
	if err := wb.EnsureStyle(workbook.StyleRecord, workbook.RecordStyle(sc.Border)); err != nil {
		return err
	}
	if sc.TableName != "" {
		if err := wb.AddTable(sc.TableName, len(sc.Fields), firstContentRow); err != nil {
			return err
		}
	}
	if err := wb.Save(); err != nil {
		return err
	}
	return wb.Close()
}

// Open binds a workbook file to a schema and checks the file contract: the
// record cell style must exist (it is created when absent) and, when the
// schema names a table range, that range must be present. Open reads no
// rows.
func Open(path string, sc *schema.Schema) (*Store, error) {
	wb, err := workbook.Open(path)
	if err != nil {
		return nil, err
	}
	if !wb.HasStyle(workbook.StyleRecord) {
		if err := wb.EnsureStyle(workbook.StyleRecord, workbook.RecordStyle(sc.Border)); err != nil {
			return nil, err
		}
		if err := wb.Save(); err != nil {
			return nil, err
		}
	}
	if sc.TableName != "" && !wb.HasTable(sc.TableName) {
		return nil, fmt.Errorf("file %s must contain a table named %q: %w",
			path, sc.TableName, apperr.ErrMissingResource)
	}
	return &Store{wb: wb, schema: sc}, nil
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.wb.Path() }

// Schema returns the bound schema.
func (s *Store) Schema() *schema.Schema { return s.schema }

// Workbook exposes the underlying file for adapters that need style or
// flag access (reports).
func (s *Store) Workbook() *workbook.File { return s.wb }

// Close releases the underlying workbook.
func (s *Store) Close() error { return s.wb.Close() }

// RowCount returns the total row count including the header row.
func (s *Store) RowCount() (int, error) {
	return s.wb.RowCount()
}

// Headers returns the first-row cell values, the canonical field-name
// order when materializing records.
func (s *Store) Headers() ([]string, error) {
	return s.wb.Headers()
}

// Rows returns a fresh snapshot of the content rows (header excluded).
// The snapshot is bounded by the row count at call time, not a live view.
func (s *Store) Rows() ([][]string, error) {
	rows, err := s.wb.Rows()
	if err != nil {
		return nil, err
	}
	if len(rows) < firstContentRow {
		return nil, nil
	}
	return rows[firstContentRow-1:], nil
}

// FindRow scans for an exact match on the key column and returns the
// 1-based row number of the first match, or apperr.ErrRecordNotFound.
func (s *Store) FindRow(key string) (int, error) {
	rows, err := s.Rows()
	if err != nil {
		return 0, err
	}
	cols := s.schema.Columns(schema.ByName)
	matches := scan(rows, cols, key, MatchExact, nil)
	if len(matches) == 0 {
		return 0, fmt.Errorf("record %q: %w", key, apperr.ErrRecordNotFound)
	}
	return matches[0].row + firstContentRow, nil
}

// Append grows the sheet by one row per record at the end. Every new cell
// gets the record style, the named table range is re-stretched, and the
// file is saved once per batch. The row-by-row writes are sequential, so a
// failure mid-batch leaves prior rows committed in memory; only the final
// save can fail wholesale.
func (s *Store) Append(records []Record, toRow RowFunc) error {
	base, err := s.wb.RowCount()
	if err != nil {
		return err
	}
	width := len(s.schema.Fields)
	for i, rec := range records {
		row := base + 1 + i
		vals, err := toRow(rec)
		if err != nil {
			return err
		}
		for col := 0; col < width; col++ {
			var v any
			if col < len(vals) {
				v = vals[col]
			}
			if v != nil {
				if err := s.wb.SetCellValue(col+1, row, v); err != nil {
					return err
				}
			}
			if err := s.wb.SetCellStyle(col+1, row, workbook.StyleRecord); err != nil {
				return err
			}
		}
		if s.schema.TableName != "" {
			if err := s.wb.StretchTable(s.schema.TableName, width, row); err != nil {
				return err
			}
		}
	}
	return s.wb.Save()
}

// ReplaceRow overwrites the cells of one row with the given field values.
// Field names outside the schema are silently ignored; partial updates
// rely on this.
func (s *Store) ReplaceRow(row int, fields Record) error {
	for field, value := range fields {
		col, ok := s.schema.Column(field)
		if !ok {
			continue
		}
		if err := s.wb.SetCellValue(col+1, row, value); err != nil {
			return err
		}
	}
	return s.wb.Save()
}

// CellPatch overwrites either a cell's value or its style. Exactly one of
// the two should be set; a style patch never touches the cell's text.
type CellPatch struct {
	Value any
	Style string
}

// ReplaceCell patches one cell of one row. An unknown field name is a
// silent no-op.
func (s *Store) ReplaceCell(row int, field string, patch CellPatch) error {
	col, ok := s.schema.Column(field)
	if !ok {
		return nil
	}
	if patch.Style != "" {
		if err := s.wb.SetCellStyle(col+1, row, patch.Style); err != nil {
			return err
		}
	} else {
		if err := s.wb.SetCellValue(col+1, row, patch.Value); err != nil {
			return err
		}
	}
	return s.wb.Save()
}

// DeleteRow removes the physical row; all subsequent rows shift up by one,
// so callers must re-resolve any cached row indices. The table range, when
// present, shrinks to the new last row.
func (s *Store) DeleteRow(row int) error {
	if err := s.wb.RemoveRow(row); err != nil {
		return err
	}
	if s.schema.TableName != "" {
		last, err := s.wb.RowCount()
		if err != nil {
			return err
		}
		if err := s.wb.StretchTable(s.schema.TableName, len(s.schema.Fields), last); err != nil {
			return err
		}
	}
	return s.wb.Save()
}

// recordAt materializes one row as a field-name to value record using the
// current headers, reading cell by cell rather than snapshotting the sheet.
func (s *Store) recordAt(row int) (Record, error) {
	last, err := s.wb.RowCount()
	if err != nil {
		return nil, err
	}
	if row < firstContentRow || row > last {
		return nil, fmt.Errorf("row %d out of range: %w", row, apperr.ErrRecordNotFound)
	}
	headers, err := s.wb.Headers()
	if err != nil {
		return nil, err
	}
	rec := make(Record, len(headers))
	for i, h := range headers {
		v, err := s.wb.CellValue(i+1, row)
		if err != nil {
			return nil, err
		}
		rec[h] = v
	}
	return rec, nil
}

// Move transfers one record between stores: delete from src, then append
// to dst through mapRow, which may add or drop fields. The two halves are
// sequential, not atomic; when the append fails after the delete
// succeeded, a MoveError reports the moved-but-not-added state. The delete
// is never rolled back.
func Move(src, dst *Store, key string, mapRow RowFunc) error {
	row, err := src.FindRow(key)
	if err != nil {
		return err
	}
	rec, err := src.recordAt(row)
	if err != nil {
		return err
	}
	if err := src.DeleteRow(row); err != nil {
		return err
	}
	if err := dst.Append([]Record{rec}, mapRow); err != nil {
		return &apperr.MoveError{Key: key, Src: src.Path(), Dst: dst.Path(), Err: err}
	}
	return nil
}
