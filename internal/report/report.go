// Package report manages the directory of receipt report files: generation
// from the current families table, the single-active-report state machine,
// and style-encoded receipt tracking per beneficiary.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gabrieli/tamhui/internal/apperr"
	"github.com/gabrieli/tamhui/internal/manager"
	"github.com/gabrieli/tamhui/internal/schema"
	"github.com/gabrieli/tamhui/internal/store"
	"github.com/gabrieli/tamhui/internal/workbook"
)

// Report file naming: a fixed prefix, the user-chosen name, a fixed suffix.
const (
	FilePrefix = "receipt-report-"
	FileSuffix = ".xlsx"
)

const activeFlag = "active"

// Report is a store over one report file.
type Report struct {
	Name string
	st   *store.Store
}

// Path returns the report file path for a name.
func Path(dir, name string) string {
	return filepath.Join(dir, FilePrefix+name+FileSuffix)
}

// Exists reports whether a report with the name was already generated.
func Exists(dir, name string) bool {
	_, err := os.Stat(Path(dir, name))
	return err == nil
}

// Names lists the generated report names, sorted for stable output.
func Names(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reports dir %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		n := e.Name()
		if e.IsDir() || !strings.HasPrefix(n, FilePrefix) || !strings.HasSuffix(n, FileSuffix) {
			continue
		}
		names = append(names, strings.TrimSuffix(strings.TrimPrefix(n, FilePrefix), FileSuffix))
	}
	sort.Strings(names)
	return names, nil
}

// Open connects to a generated report and makes sure the receipt status
// styles are registered in the file.
func Open(dir, name string) (*Report, error) {
	st, err := store.Open(Path(dir, name), schema.Report())
	if err != nil {
		return nil, err
	}
	wb := st.Workbook()
	added := false
	for _, sn := range []string{workbook.StyleReceived, workbook.StyleNotReceived} {
		if wb.HasStyle(sn) {
			continue
		}
		if err := wb.EnsureStyle(sn, workbook.ReceivedStyleDef(sn)); err != nil {
			st.Close()
			return nil, err
		}
		added = true
	}
	if added {
		if err := wb.Save(); err != nil {
			st.Close()
			return nil, err
		}
	}
	return &Report{Name: name, st: st}, nil
}

// Store exposes the underlying store.
func (r *Report) Store() *store.Store { return r.st }

// Close releases the underlying workbook.
func (r *Report) Close() error { return r.st.Close() }

// Generate creates a new report named name: one row per family, with the
// manager resolved from the roster by the family's driver. A fresh report
// becomes active iff it is the only report in the collection. An existing
// name is refused unless override is set.
func Generate(dir, name string, families []store.Record, roster *manager.Roster, override bool) (*Report, error) {
	if name == "" {
		return nil, &apperr.ValidationError{
			Reason:      apperr.ReasonMissingName,
			Description: "a report cannot be generated without a name",
		}
	}
	if !override && Exists(dir, name) {
		return nil, fmt.Errorf("report %q: %w", name, apperr.ErrReportExists)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("reports dir %s: %w", dir, err)
	}

	wb, err := workbook.Create(Path(dir, name), FilePrefix+name, schema.Report().Fields)
	if err != nil {
		return nil, err
	}
	if err := wb.Close(); err != nil {
		return nil, err
	}

	r, err := Open(dir, name)
	if err != nil {
		return nil, err
	}
	if err := r.st.Append(families, reportRow(roster)); err != nil {
		r.Close()
		return nil, err
	}

	names, err := Names(dir)
	if err != nil {
		r.Close()
		return nil, err
	}
	if len(names) == 1 {
		if err := r.setActive(true); err != nil {
			r.Close()
			return nil, err
		}
	}
	return r, nil
}

// reportRow casts a family record to a report row. A family without a
// driver still gets a row, with the manager left blank.
func reportRow(roster *manager.Roster) store.RowFunc {
	return func(rec store.Record) ([]any, error) {
		name, _ := rec[schema.FieldFullName].(string)
		if name == "" {
			return nil, fmt.Errorf("family without a name: %w", apperr.ErrRecordNotFound)
		}
		driver, _ := rec[schema.FieldDriver].(string)
		var mgr string
		if roster != nil && driver != "" {
			mgr = roster.FindManager(driver)
		}
		row := make([]any, len(schema.Report().Fields))
		row[0] = name
		if mgr != "" {
			row[1] = mgr
		}
		if driver != "" {
			row[2] = driver
		}
		return row, nil
	}
}

// LateAppend adds families generated after the report was created. Late
// rows carry neither driver nor manager.
func (r *Report) LateAppend(families []store.Record) error {
	return r.st.Append(families, func(rec store.Record) ([]any, error) {
		name, _ := rec[schema.FieldFullName].(string)
		if name == "" {
			return nil, fmt.Errorf("family without a name: %w", apperr.ErrRecordNotFound)
		}
		row := make([]any, len(schema.Report().Fields))
		row[0] = name
		return row, nil
	})
}
