package workbook

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// HasTable reports whether the sheet carries a named table range.
func (w *File) HasTable(name string) bool {
	tables, err := w.f.GetTables(w.sheet)
	if err != nil {
		return false
	}
	for _, t := range tables {
		if t.Name == name {
			return true
		}
	}
	return false
}

// AddTable creates the named table range covering columns 1..cols down to
// lastRow. lastRow is clamped so the range always spans at least the header
// row plus one data row, which is the minimum a table accepts.
func (w *File) AddTable(name string, cols, lastRow int) error {
	if lastRow < 2 {
		lastRow = 2
	}
	ref, err := tableRef(cols, lastRow)
	if err != nil {
		return err
	}
	if err := w.f.AddTable(w.sheet, &excelize.Table{Range: ref, Name: name}); err != nil {
		return fmt.Errorf("workbook %s: table %s: %w", w.path, name, err)
	}
	return nil
}

// StretchTable re-anchors the named table range to cover the current last
// row. excelize has no in-place resize, so the table is dropped and
// re-added under the same name.
func (w *File) StretchTable(name string, cols, lastRow int) error {
	if err := w.f.DeleteTable(name); err != nil {
		return fmt.Errorf("workbook %s: table %s: %w", w.path, name, err)
	}
	return w.AddTable(name, cols, lastRow)
}

func tableRef(cols, lastRow int) (string, error) {
	last, err := excelize.ColumnNumberToName(cols)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("A1:%s%d", last, lastRow), nil
}
