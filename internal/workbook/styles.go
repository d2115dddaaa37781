package workbook

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Logical style names.
const (
	StyleRecord      = "record"
	StyleReceived    = "received"
	StyleNotReceived = "not_received"
)

// Fill colors of the receipt status styles.
const (
	receivedColor    = "6BCF6B"
	notReceivedColor = "E0503D"
)

// excelize border style indices.
const (
	borderThin   = 1
	borderMedium = 2
)

func borderIndex(thickness string) int {
	if thickness == "medium" {
		return borderMedium
	}
	return borderThin
}

func boxBorder(style int) []excelize.Border {
	sides := []string{"top", "bottom", "left", "right"}
	borders := make([]excelize.Border, 0, len(sides))
	for _, side := range sides {
		borders = append(borders, excelize.Border{Type: side, Color: "000000", Style: style})
	}
	return borders
}

// RecordStyle is the style every record cell carries: boxed border,
// centered, right-to-left reading order.
func RecordStyle(thickness string) *excelize.Style {
	return &excelize.Style{
		Font:   &excelize.Font{Family: "Calibri", Size: 11},
		Border: boxBorder(borderIndex(thickness)),
		Alignment: &excelize.Alignment{
			Horizontal:   "center",
			Vertical:     "center",
			ReadingOrder: 2,
		},
	}
}

// ReceivedStyle builds the solid-fill style used to encode receipt status.
func ReceivedStyle(color string) *excelize.Style {
	return &excelize.Style{
		Font:   &excelize.Font{Family: "Calibri", Size: 11},
		Border: boxBorder(borderThin),
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{color},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	}
}

// ReceivedStyleDef returns the style definition for a receipt status style
// name, or nil for unknown names.
func ReceivedStyleDef(name string) *excelize.Style {
	switch name {
	case StyleReceived:
		return ReceivedStyle(receivedColor)
	case StyleNotReceived:
		return ReceivedStyle(notReceivedColor)
	default:
		return nil
	}
}

// HasStyle reports whether a logical style name is registered in the file.
func (w *File) HasStyle(name string) bool {
	_, ok := w.styleIDs[name]
	return ok
}

// EnsureStyle registers a named style if the file does not carry it yet.
// The style ID is recorded in a defined name so reopening the file finds
// the same mapping.
func (w *File) EnsureStyle(name string, def *excelize.Style) error {
	if _, ok := w.styleIDs[name]; ok {
		return nil
	}
	id, err := w.f.NewStyle(def)
	if err != nil {
		return fmt.Errorf("workbook %s: style %s: %w", w.path, name, err)
	}
	if err := w.setDefinedName(styleNamePrefix+name, strconv.Itoa(id)); err != nil {
		return err
	}
	w.styleIDs[name] = id
	w.styleNames[id] = name
	return nil
}

// SetCellStyle applies a registered named style to one cell.
func (w *File) SetCellStyle(col, row int, name string) error {
	id, ok := w.styleIDs[name]
	if !ok {
		return fmt.Errorf("workbook %s: style %s not registered", w.path, name)
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if err := w.f.SetCellStyle(w.sheet, cell, cell, id); err != nil {
		return fmt.Errorf("workbook %s: style %s on %s: %w", w.path, name, cell, err)
	}
	return nil
}

// CellStyleName resolves the logical style name of one cell, or "" when
// the cell carries no registered style.
func (w *File) CellStyleName(col, row int) (string, error) {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return "", err
	}
	id, err := w.f.GetCellStyle(w.sheet, cell)
	if err != nil {
		return "", fmt.Errorf("workbook %s: style of %s: %w", w.path, cell, err)
	}
	return w.styleNames[id], nil
}

// loadStyleRegistry rebuilds the name<->ID maps from defined names.
func (w *File) loadStyleRegistry() {
	for _, dn := range w.f.GetDefinedName() {
		if !strings.HasPrefix(dn.Name, styleNamePrefix) {
			continue
		}
		id, err := strconv.Atoi(dn.RefersTo)
		if err != nil {
			continue
		}
		name := strings.TrimPrefix(dn.Name, styleNamePrefix)
		w.styleIDs[name] = id
		w.styleNames[id] = name
	}
}
