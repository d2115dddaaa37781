package family_test

import (
	"errors"
	"testing"

	"github.com/gabrieli/tamhui/internal/apperr"
	"github.com/gabrieli/tamhui/internal/family"
	"github.com/gabrieli/tamhui/internal/schema"
	"github.com/gabrieli/tamhui/internal/store"
	"github.com/gabrieli/tamhui/internal/testutil"
)

func TestAddAndCount(t *testing.T) {
	st := testutil.FamiliesStore(t)

	if err := family.Add(st, testutil.Family("Cohen", nil)); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := family.Add(st, testutil.Family("Levi", map[string]string{
		schema.FieldHomePhone: "050-1234567",
	})); err != nil {
		t.Fatalf("Add: %v", err)
	}

	n, err := family.Count(st)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 2 {
		t.Errorf("Count = %d, want 2", n)
	}
}

func TestAddDuplicateKey(t *testing.T) {
	st := testutil.FamiliesStore(t)
	if err := family.Add(st, testutil.Family("Cohen", nil)); err != nil {
		t.Fatalf("Add: %v", err)
	}
	err := family.Add(st, testutil.Family("Cohen", nil))
	if !errors.Is(err, apperr.ErrDuplicateKey) {
		t.Fatalf("err = %v, want ErrDuplicateKey", err)
	}
}

func TestAddValidation(t *testing.T) {
	st := testutil.FamiliesStore(t)
	cases := []struct {
		name   string
		rec    store.Record
		reason string
	}{
		{"no name", store.Record{}, apperr.ReasonMissingFullName},
		{"letters in phone", testutil.Family("Levi", map[string]string{
			schema.FieldMobilePhone: "05o-1234567",
		}), apperr.ReasonPhoneMalformed},
		{"phone too short", testutil.Family("Levi", map[string]string{
			schema.FieldHomePhone: "123456",
		}), apperr.ReasonPhoneMalformed},
		{"phone too long", testutil.Family("Levi", map[string]string{
			schema.FieldHomePhone: "0501-1234567",
		}), apperr.ReasonPhoneMalformed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := family.Add(st, tc.rec)
			var verr *apperr.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
			if verr.Reason != tc.reason {
				t.Errorf("reason = %q, want %q", verr.Reason, tc.reason)
			}
		})
	}
}

func TestAddManyStopsAtFirstFailure(t *testing.T) {
	st := testutil.FamiliesStore(t)
	err := family.AddMany(st, []store.Record{
		testutil.Family("Cohen", nil),
		store.Record{}, // missing name
		testutil.Family("Levi", nil),
	})
	var batch *apperr.BatchError
	if !errors.As(err, &batch) {
		t.Fatalf("err = %v, want BatchError", err)
	}
	if batch.Outcome != apperr.BatchPartial {
		t.Errorf("outcome = %v, want BatchPartial", batch.Outcome)
	}

	// Cohen committed before the failure, Levi never reached.
	if _, err := st.FindRow("Cohen"); err != nil {
		t.Errorf("Cohen missing after partial batch: %v", err)
	}
	if _, err := st.FindRow("Levi"); !errors.Is(err, apperr.ErrRecordNotFound) {
		t.Errorf("Levi present after aborted batch: %v", err)
	}
}

func TestAddManyFirstItemFails(t *testing.T) {
	st := testutil.FamiliesStore(t)
	err := family.AddMany(st, []store.Record{
		store.Record{},
		testutil.Family("Levi", nil),
	})
	var batch *apperr.BatchError
	if !errors.As(err, &batch) {
		t.Fatalf("err = %v, want BatchError", err)
	}
	if batch.Outcome != apperr.BatchNone {
		t.Errorf("outcome = %v, want BatchNone", batch.Outcome)
	}
}

func TestUpdatePartial(t *testing.T) {
	st := testutil.FamiliesStore(t)
	if err := family.Add(st, testutil.Family("Cohen", map[string]string{
		schema.FieldStreet: "Main",
	})); err != nil {
		t.Fatalf("Add: %v", err)
	}

	err := family.Update(st, "Cohen", store.Record{
		schema.FieldDriver: "Moshe",
		"Favorite Color":   "blue", // ignored
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := family.Search(st, "Cohen", schema.ByName)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d records", len(got))
	}
	if got[0][schema.FieldDriver] != "Moshe" {
		t.Errorf("driver = %v, want Moshe", got[0][schema.FieldDriver])
	}
	if got[0][schema.FieldStreet] != "Main" {
		t.Errorf("street = %v, want untouched Main", got[0][schema.FieldStreet])
	}
}

func TestRemoveToHistory(t *testing.T) {
	families := testutil.FamiliesStore(t)
	history := testutil.HistoryStore(t)
	if err := family.Add(families, testutil.Family("Cohen", map[string]string{
		schema.FieldDriver: "Moshe",
	})); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if err := family.Remove(families, history, "Cohen", "2026-01-15"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := families.FindRow("Cohen"); !errors.Is(err, apperr.ErrRecordNotFound) {
		t.Fatalf("Cohen still in main table: %v", err)
	}
	got, err := history.Search("Cohen", schema.ByName, store.MatchExact)
	if err != nil {
		t.Fatalf("history search: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("history holds %d records, want 1", len(got))
	}
	if got[0][schema.FieldOriginalDriver] != "Moshe" {
		t.Errorf("original driver = %v", got[0][schema.FieldOriginalDriver])
	}
	if got[0][schema.FieldExitDate] != "2026-01-15" {
		t.Errorf("exit date = %v", got[0][schema.FieldExitDate])
	}
}

func TestRestoreFromHistory(t *testing.T) {
	families := testutil.FamiliesStore(t)
	history := testutil.HistoryStore(t)
	if err := family.Add(families, testutil.Family("Cohen", map[string]string{
		schema.FieldDriver: "Moshe",
	})); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := family.Remove(families, history, "Cohen", "2026-01-15"); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	if err := family.Restore(history, families, "Cohen"); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	got, err := family.Search(families, "Cohen", schema.ByName)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 || got[0][schema.FieldDriver] != "Moshe" {
		t.Errorf("restored record = %v", got)
	}
	if _, err := history.FindRow("Cohen"); !errors.Is(err, apperr.ErrRecordNotFound) {
		t.Errorf("Cohen still in history: %v", err)
	}
}
