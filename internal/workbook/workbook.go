// Package workbook wraps excelize with the small surface the stores need:
// cell values, named cell styles, a named growable table range, a per-file
// boolean flag, and atomic whole-file saves.
//
// excelize styles are numeric IDs with no name attached, so logical style
// names are persisted as workbook defined names ("style_<name>" holding the
// style ID). The per-file flag lives in a defined name as well, keeping both
// outside any cell.
package workbook

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/natefinch/atomic"
	"github.com/xuri/excelize/v2"

	"github.com/gabrieli/tamhui/internal/apperr"
)

const (
	styleNamePrefix = "style_"
	flagNamePrefix  = "flag_"
)

// File is an open workbook bound to its first sheet.
type File struct {
	path  string
	sheet string
	f     *excelize.File

	styleIDs   map[string]int // logical name -> style ID
	styleNames map[int]string // style ID -> logical name
}

// pathLocks serializes in-process writers per file path. Two processes
// writing the same file still race, last save wins; that contract is
// documented, not fixed here.
var pathLocks sync.Map

func pathLock(path string) *sync.Mutex {
	mu, _ := pathLocks.LoadOrStore(path, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// Open opens an existing workbook. It fails with apperr.ErrFileNotFound
// when the path does not exist.
func Open(path string) (*File, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("workbook %s: %w", path, apperr.ErrFileNotFound)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("workbook %s: open: %w", path, err)
	}
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s: no sheets: %w", path, apperr.ErrMissingResource)
	}
	wb := &File{
		path:       path,
		sheet:      sheets[0],
		f:          f,
		styleIDs:   make(map[string]int),
		styleNames: make(map[int]string),
	}
	wb.loadStyleRegistry()
	return wb, nil
}

// Create writes a fresh workbook with the given header row and returns it
// still open. The sheet is named after sheetTitle.
func Create(path, sheetTitle string, headers []string) (*File, error) {
	f := excelize.NewFile()
	defaultSheet := f.GetSheetList()[0]
	if sheetTitle != "" && sheetTitle != defaultSheet {
		if err := f.SetSheetName(defaultSheet, sheetTitle); err != nil {
			return nil, fmt.Errorf("workbook %s: rename sheet: %w", path, err)
		}
		defaultSheet = sheetTitle
	}
	wb := &File{
		path:       path,
		sheet:      defaultSheet,
		f:          f,
		styleIDs:   make(map[string]int),
		styleNames: make(map[int]string),
	}
	for i, h := range headers {
		if err := wb.SetCellValue(i+1, 1, h); err != nil {
			return nil, err
		}
	}
	if err := wb.Save(); err != nil {
		return nil, err
	}
	return wb, nil
}

// Path returns the backing file path.
func (w *File) Path() string { return w.path }

// Save rewrites the whole file: serialize to memory, then atomically
// replace the file on disk (write-temp-then-rename).
func (w *File) Save() error {
	mu := pathLock(w.path)
	mu.Lock()
	defer mu.Unlock()

	buf, err := w.f.WriteToBuffer()
	if err != nil {
		return fmt.Errorf("workbook %s: serialize: %w", w.path, err)
	}
	if err := atomic.WriteFile(w.path, buf); err != nil {
		return fmt.Errorf("workbook %s: save: %w", w.path, err)
	}
	return nil
}

// SaveAs writes the current in-memory workbook to another path, leaving the
// original file untouched. Used to duplicate a table file.
func (w *File) SaveAs(path string) error {
	buf, err := w.f.WriteToBuffer()
	if err != nil {
		return fmt.Errorf("workbook %s: serialize: %w", w.path, err)
	}
	if err := atomic.WriteFile(path, buf); err != nil {
		return fmt.Errorf("workbook %s: save as %s: %w", w.path, path, err)
	}
	return nil
}

// Close releases the underlying file handles.
func (w *File) Close() error {
	return w.f.Close()
}

// RowCount returns the number of rows including the header row.
func (w *File) RowCount() (int, error) {
	rows, err := w.f.GetRows(w.sheet)
	if err != nil {
		return 0, fmt.Errorf("workbook %s: rows: %w", w.path, err)
	}
	return len(rows), nil
}

// Headers returns the first-row cell values.
func (w *File) Headers() ([]string, error) {
	rows, err := w.f.GetRows(w.sheet)
	if err != nil {
		return nil, fmt.Errorf("workbook %s: rows: %w", w.path, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// Rows returns a snapshot of all rows. Absent cells read as "", which is
// the null cell value throughout.
func (w *File) Rows() ([][]string, error) {
	rows, err := w.f.GetRows(w.sheet)
	if err != nil {
		return nil, fmt.Errorf("workbook %s: rows: %w", w.path, err)
	}
	return rows, nil
}

// CellValue reads one cell by 1-based column and row.
func (w *File) CellValue(col, row int) (string, error) {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return "", err
	}
	v, err := w.f.GetCellValue(w.sheet, cell)
	if err != nil {
		return "", fmt.Errorf("workbook %s: read %s: %w", w.path, cell, err)
	}
	return v, nil
}

// SetCellValue writes one cell by 1-based column and row. A nil value
// leaves the cell blank but present.
func (w *File) SetCellValue(col, row int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if err := w.f.SetCellValue(w.sheet, cell, value); err != nil {
		return fmt.Errorf("workbook %s: write %s: %w", w.path, cell, err)
	}
	return nil
}

// RemoveRow deletes a physical row, shifting subsequent rows up.
func (w *File) RemoveRow(row int) error {
	if err := w.f.RemoveRow(w.sheet, row); err != nil {
		return fmt.Errorf("workbook %s: remove row %d: %w", w.path, row, err)
	}
	return nil
}
