package report

import (
	"fmt"
	"regexp"

	"github.com/gabrieli/tamhui/internal/apperr"
	"github.com/gabrieli/tamhui/internal/schema"
	"github.com/gabrieli/tamhui/internal/store"
	"github.com/gabrieli/tamhui/internal/workbook"
)

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// StyleMap maps the report's cell styles to the receipt tri-state they
// encode. The plain record style reads as unset.
func StyleMap() store.StyleMap {
	return store.StyleMap{
		workbook.StyleRecord:      store.Unset,
		workbook.StyleReceived:    store.Received,
		workbook.StyleNotReceived: store.NotReceived,
	}
}

// Receipt is the tracked receipt state of one family.
type Receipt struct {
	Date   string         `json:"date"`
	Status store.TriState `json:"status"`
}

// DefaultReceipt is the fixed shape reported for families the report does
// not know: empty date, status false.
func DefaultReceipt() Receipt {
	return Receipt{Date: "", Status: store.NotReceived}
}

// NamedReceipt couples a receipt with the family it belongs to.
type NamedReceipt struct {
	Name string `json:"name"`
	Receipt
}

// ReceiptUpdate is a requested change to one family's receipt. Date is
// mandatory; a nil Status leaves the status style untouched.
type ReceiptUpdate struct {
	Date   string `json:"date"`
	Status *bool  `json:"status"`
}

// DriverReceiptUpdate addresses a receipt update at a family by name.
type DriverReceiptUpdate struct {
	Name string `json:"name"`
	ReceiptUpdate
}

func toReceipt(rec store.Record) Receipt {
	date, _ := rec[schema.FieldDate].(string)
	status, _ := rec[schema.FieldReceived].(store.TriState)
	return Receipt{Date: date, Status: status}
}

// Search returns report rows matching the query, with the status column
// carrying the style-decoded tri-state.
func (r *Report) Search(query string, by schema.Category) ([]store.Record, error) {
	return r.st.StyleSearch(query, by, store.MatchSubstring, StyleMap())
}

// SearchColumn returns the raw values of the matched column.
func (r *Report) SearchColumn(query string, by schema.Category) ([]string, error) {
	return r.st.SearchColumn(query, by, store.MatchSubstring)
}

// FamilyReceipt returns the receipt state of one family, or the default
// receipt when the family is not in the report.
func (r *Report) FamilyReceipt(name string) (Receipt, error) {
	if name == "" {
		return DefaultReceipt(), nil
	}
	recs, err := r.st.StyleSearch(name, schema.ByName, store.MatchSubstring, StyleMap())
	if err != nil {
		return Receipt{}, err
	}
	if len(recs) == 0 {
		return DefaultReceipt(), nil
	}
	rec := toReceipt(recs[0])
	// A receipt never written reads back as the default shape.
	if rec.Status == store.Unset {
		rec.Status = store.NotReceived
	}
	return rec, nil
}

// DriverReceipts returns the receipt state of every family the driver
// delivers to. An unknown or empty driver yields an empty list.
func (r *Report) DriverReceipts(driver string) ([]NamedReceipt, error) {
	if driver == "" {
		return nil, nil
	}
	recs, err := r.st.StyleSearch(driver, schema.ByDriver, store.MatchExact, StyleMap())
	if err != nil {
		return nil, err
	}
	var out []NamedReceipt
	for _, rec := range recs {
		name, _ := rec[schema.FieldFullName].(string)
		if name == "" {
			continue
		}
		out = append(out, NamedReceipt{Name: name, Receipt: toReceipt(rec)})
	}
	return out, nil
}

// UpdateFamilyReceipt writes one family's receipt: the date as a cell
// value, the status purely as a cell style. The date is mandatory and must
// be yyyy-mm-dd.
func (r *Report) UpdateFamilyReceipt(name string, upd ReceiptUpdate) error {
	if name == "" {
		return fmt.Errorf("receipt update without a family name: %w", apperr.ErrRecordNotFound)
	}
	row, err := r.st.FindRow(name)
	if err != nil {
		return err
	}
	if upd.Date == "" {
		return &apperr.ValidationError{
			Reason:      apperr.ReasonMissingDate,
			Description: "a receipt update must carry a date",
		}
	}
	if !datePattern.MatchString(upd.Date) {
		return &apperr.ValidationError{
			Reason:      apperr.ReasonDateMalformed,
			Description: "receipt date must be yyyy-mm-dd",
		}
	}
	if err := r.st.ReplaceCell(row, schema.FieldDate, store.CellPatch{Value: upd.Date}); err != nil {
		return err
	}
	if upd.Status != nil {
		style := workbook.StyleNotReceived
		if *upd.Status {
			style = workbook.StyleReceived
		}
		if err := r.st.ReplaceCell(row, schema.FieldReceived, store.CellPatch{Style: style}); err != nil {
			return err
		}
	}
	return nil
}

// UpdateDriverReceipts applies a batch of receipt updates, continuing
// through every item. The aggregate outcome distinguishes all succeeded
// (nil), none succeeded (BatchNone) and partial (BatchPartial).
func (r *Report) UpdateDriverReceipts(updates []DriverReceiptUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	var firstErr error
	failures := 0
	for _, upd := range updates {
		if err := r.UpdateFamilyReceipt(upd.Name, upd.ReceiptUpdate); err != nil {
			failures++
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	switch {
	case failures == 0:
		return nil
	case failures == len(updates):
		return &apperr.BatchError{Outcome: apperr.BatchNone, Err: firstErr}
	default:
		return &apperr.BatchError{Outcome: apperr.BatchPartial, Err: firstErr}
	}
}

// CompletionFamilies returns the families that should be revisited: those
// marked not-received, and driverless families never marked at all. Each
// completion entry joins the family's street from the main table.
func (r *Report) CompletionFamilies(families []store.Record) ([]store.Record, error) {
	rows, err := r.Search("", schema.ByName)
	if err != nil {
		return nil, err
	}
	streets := make(map[string]string, len(families))
	for _, f := range families {
		name, _ := f[schema.FieldFullName].(string)
		street, _ := f[schema.FieldStreet].(string)
		streets[name] = street
	}
	var out []store.Record
	for _, row := range rows {
		name, _ := row[schema.FieldFullName].(string)
		if name == "" {
			continue
		}
		driver, _ := row[schema.FieldDriver].(string)
		status, _ := row[schema.FieldReceived].(store.TriState)
		notReceived := status == store.NotReceived
		neverVisited := driver == "" && status == store.Unset
		if !notReceived && !neverVisited {
			continue
		}
		street, known := streets[name]
		if !known {
			continue
		}
		out = append(out, store.Record{
			schema.FieldFullName: name,
			schema.FieldStreet:   street,
			schema.FieldDriver:   driver,
		})
	}
	return out, nil
}
