package family

import (
	"fmt"

	"github.com/gabrieli/tamhui/internal/apperr"
	"github.com/gabrieli/tamhui/internal/manager"
	"github.com/gabrieli/tamhui/internal/schema"
	"github.com/gabrieli/tamhui/internal/store"
)

// Drivers collects driver names across the given stores and the roster,
// deduplicated in first-seen order. Order is kept stable deliberately;
// clients render the list as-is.
func Drivers(roster *manager.Roster, stores ...*store.Store) ([]string, error) {
	var all []string
	for _, st := range stores {
		vals, err := st.SearchColumn("", schema.ByDriver, store.MatchSubstring)
		if err != nil {
			return nil, err
		}
		all = append(all, vals...)
	}
	if roster != nil {
		all = append(all, roster.Drivers()...)
	}
	return uniqueInOrder(all), nil
}

// DriverTally is a driver name with the number of families it serves.
type DriverTally struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// NoManagerDrivers returns the drivers assigned in the store that the
// roster covers with no manager, in first-seen order, each with the
// number of families it serves. A nil roster leaves every assigned
// driver uncovered. Keyless and driverless records are skipped.
func NoManagerDrivers(st *store.Store, roster *manager.Roster) ([]DriverTally, error) {
	recs, err := st.Search("", schema.ByName, store.MatchSubstring)
	if err != nil {
		return nil, err
	}
	index := make(map[string]int)
	var out []DriverTally
	for _, rec := range recs {
		if rec.Key(st.Schema()) == "" {
			continue
		}
		driver, _ := rec[driverField(st.Schema())].(string)
		if driver == "" {
			continue
		}
		if roster != nil && roster.FindManager(driver) != "" {
			continue
		}
		if i, ok := index[driver]; ok {
			out[i].Count++
			continue
		}
		index[driver] = len(out)
		out = append(out, DriverTally{Name: driver, Count: 1})
	}
	return out, nil
}

// Driverless returns the families without a driver.
func Driverless(st *store.Store) ([]store.Record, error) {
	return st.Search("", schema.ByDriver, store.MatchEmpty)
}

// DriverFamilies returns the families whose driver is exactly driverName.
func DriverFamilies(st *store.Store, driverName string) ([]store.Record, error) {
	return st.Search(driverName, schema.ByDriver, store.MatchExact)
}

// RenameDriver renames a driver across every given store and on the
// roster. The new name is validated first; the old name must drive at
// least one record somewhere, else ErrNoSuchDriver. Updates run store by
// store and record by record; a mid-way failure leaves the stores already
// touched renamed, with no rollback.
func RenameDriver(stores []*store.Store, roster *manager.Roster, oldName, newName string) error {
	if err := validateDriverName(newName); err != nil {
		return err
	}

	exists := false
	for _, st := range stores {
		recs, err := DriverFamilies(st, oldName)
		if err != nil {
			return err
		}
		if len(recs) > 0 {
			exists = true
			break
		}
	}
	if !exists {
		return fmt.Errorf("driver %q: %w", oldName, apperr.ErrNoSuchDriver)
	}

	if roster != nil && roster.RenameDriver(oldName, newName) {
		if err := roster.Save(); err != nil {
			return err
		}
	}

	for _, st := range stores {
		recs, err := DriverFamilies(st, oldName)
		if err != nil {
			return err
		}
		field := driverField(st.Schema())
		for _, rec := range recs {
			row, err := st.FindRow(rec.Key(st.Schema()))
			if err != nil {
				return err
			}
			if err := st.ReplaceCell(row, field, store.CellPatch{Value: newName}); err != nil {
				return err
			}
		}
	}
	return nil
}

// driverField resolves the field backing the driver category, which the
// history table calls "Original Driver".
func driverField(sc *schema.Schema) string {
	cols := sc.Columns(schema.ByDriver)
	return sc.Fields[cols[0]]
}

func uniqueInOrder(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	var out []string
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
