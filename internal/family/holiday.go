package family

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gabrieli/tamhui/internal/schema"
	"github.com/gabrieli/tamhui/internal/store"
)

// HolidayFileName is the families file inside each holiday folder.
const HolidayFileName = "families.xlsx"

// InitHoliday generates the editable families source file for one holiday:
// the current families workbook duplicated into root/name, plus the
// selected candidates appended. candidates usually come from a previous
// holiday's table; selected filters them by full name.
func InitHoliday(families *store.Store, candidates []store.Record, root, name string, selected []string) (string, error) {
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("holiday %s: create folder: %w", name, err)
	}
	path := filepath.Join(dir, HolidayFileName)
	if err := families.Workbook().SaveAs(path); err != nil {
		return "", err
	}

	st, err := store.Open(path, schema.Holiday())
	if err != nil {
		return "", err
	}
	defer st.Close()

	wanted := make(map[string]struct{}, len(selected))
	for _, s := range selected {
		wanted[s] = struct{}{}
	}
	var extra []store.Record
	for _, rec := range candidates {
		if _, ok := wanted[rec.Key(st.Schema())]; ok {
			extra = append(extra, rec)
		}
	}
	if len(extra) == 0 {
		return path, nil
	}
	if err := AddMany(st, extra); err != nil {
		return path, err
	}
	return path, nil
}
