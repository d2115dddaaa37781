package workbook

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// setDefinedName upserts a workbook-scoped defined name.
func (w *File) setDefinedName(name, value string) error {
	dn := excelize.DefinedName{Name: name, RefersTo: value, Scope: "Workbook"}
	// SetDefinedName refuses duplicates, so drop any existing entry first.
	_ = w.f.DeleteDefinedName(&excelize.DefinedName{Name: name, Scope: "Workbook"})
	if err := w.f.SetDefinedName(&dn); err != nil {
		return fmt.Errorf("workbook %s: defined name %s: %w", w.path, name, err)
	}
	return nil
}

func (w *File) definedName(name string) (string, bool) {
	for _, dn := range w.f.GetDefinedName() {
		if dn.Name == name {
			return dn.RefersTo, true
		}
	}
	return "", false
}

// SetFlag persists a boolean file property outside any cell.
func (w *File) SetFlag(name string, value bool) error {
	v := "0"
	if value {
		v = "1"
	}
	return w.setDefinedName(flagNamePrefix+name, v)
}

// Flag reads a boolean file property; an absent flag reads false.
func (w *File) Flag(name string) bool {
	v, ok := w.definedName(flagNamePrefix + name)
	return ok && v == "1"
}
