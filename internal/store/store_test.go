package store_test

import (
	"errors"
	"testing"

	"github.com/gabrieli/tamhui/internal/apperr"
	"github.com/gabrieli/tamhui/internal/schema"
	"github.com/gabrieli/tamhui/internal/store"
	"github.com/gabrieli/tamhui/internal/testutil"
)

func names(records []store.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i], _ = r[schema.FieldFullName].(string)
	}
	return out
}

func TestOpenMissingFile(t *testing.T) {
	_, err := store.Open("no-such-dir/families.xlsx", schema.Families())
	if !errors.Is(err, apperr.ErrFileNotFound) {
		t.Fatalf("err = %v, want ErrFileNotFound", err)
	}
}

func TestOpenMissingTableRange(t *testing.T) {
	// A report-shaped file has no table range, so opening it with the
	// families schema must fail the file contract.
	path := testutil.TableFile(t, t.TempDir(), "families.xlsx", schema.Report())
	_, err := store.Open(path, schema.Families())
	if !errors.Is(err, apperr.ErrMissingResource) {
		t.Fatalf("err = %v, want ErrMissingResource", err)
	}
}

func TestAppendThenFind(t *testing.T) {
	st := testutil.FamiliesStore(t)
	records := []store.Record{
		testutil.Family("Cohen", map[string]string{schema.FieldStreet: "Main"}),
		testutil.Family("Levi", nil),
		testutil.Family("Mizrahi", nil),
	}
	testutil.Append(t, st, records)

	n, err := st.RowCount()
	if err != nil {
		t.Fatalf("RowCount: %v", err)
	}
	if n-1 != len(records) {
		t.Errorf("content rows = %d, want %d", n-1, len(records))
	}

	for _, rec := range records {
		key := rec.Key(schema.Families())
		got, err := st.Search(key, schema.ByName, store.MatchExact)
		if err != nil {
			t.Fatalf("Search(%q): %v", key, err)
		}
		if len(got) != 1 || got[0][schema.FieldFullName] != key {
			t.Errorf("Search(%q) = %v, want exactly that record", key, names(got))
		}
	}
}

func TestSearchEmptyQueryReturnsAll(t *testing.T) {
	st := testutil.FamiliesStore(t)
	testutil.Append(t, st, []store.Record{
		testutil.Family("Cohen", nil),
		testutil.Family("Levi", nil),
	})

	// Searching twice must be idempotent: no mutation on read.
	for i := 0; i < 2; i++ {
		got, err := st.Search("", schema.ByName, store.MatchSubstring)
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if len(got) != 2 {
			t.Errorf("pass %d: got %d records, want 2", i, len(got))
		}
	}
}

func TestSearchNullCellNeverMatches(t *testing.T) {
	st := testutil.FamiliesStore(t)
	testutil.Append(t, st, []store.Record{
		testutil.Family("Cohen", map[string]string{schema.FieldDriver: "Moshe"}),
		testutil.Family("Levi", nil), // no driver
	})

	got, err := st.Search("", schema.ByDriver, store.MatchSubstring)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 || got[0][schema.FieldFullName] != "Cohen" {
		t.Errorf("empty query on driver = %v, want only Cohen", names(got))
	}

	// Explicit empty-match mode inverts that: only the null cell matches.
	got, err = st.Search("anything", schema.ByDriver, store.MatchEmpty)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 || got[0][schema.FieldFullName] != "Levi" {
		t.Errorf("empty-match on driver = %v, want only Levi", names(got))
	}
}

func TestUnknownCategoryFallsBackToName(t *testing.T) {
	st := testutil.FamiliesStore(t)
	testutil.Append(t, st, []store.Record{testutil.Family("Cohen", nil)})

	got, err := st.Search("Coh", "no-such-category", store.MatchSubstring)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("fallback search = %v, want Cohen", names(got))
	}
}

func TestPhoneSearchNormalizesHyphens(t *testing.T) {
	st := testutil.FamiliesStore(t)
	testutil.Append(t, st, []store.Record{
		testutil.Family("Cohen", map[string]string{schema.FieldHomePhone: "050-1234567"}),
		testutil.Family("Levi", map[string]string{schema.FieldMobilePhone: "0527654321"}),
	})

	cases := []struct {
		query string
		want  string
	}{
		{"050-1234567", "Cohen"},
		{"0501234567", "Cohen"},
		{"052-7654321", "Levi"},
		{"0527654321", "Levi"},
	}
	for _, tc := range cases {
		got, err := st.Search(tc.query, schema.ByPhone, store.MatchSubstring)
		if err != nil {
			t.Fatalf("Search(%q): %v", tc.query, err)
		}
		if len(got) != 1 || got[0][schema.FieldFullName] != tc.want {
			t.Errorf("Search(%q) = %v, want %s", tc.query, names(got), tc.want)
		}
	}
}

func TestNonPhoneCategoriesKeepHyphens(t *testing.T) {
	st := testutil.FamiliesStore(t)
	testutil.Append(t, st, []store.Record{
		testutil.Family("Bar-Lev", nil),
	})

	got, err := st.Search("BarLev", schema.ByName, store.MatchSubstring)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("name search must not strip hyphens, got %v", names(got))
	}
	got, err = st.Search("Bar-Lev", schema.ByName, store.MatchSubstring)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("literal hyphen search = %v, want Bar-Lev", names(got))
	}
}

func TestSearchColumnProjection(t *testing.T) {
	st := testutil.FamiliesStore(t)
	testutil.Append(t, st, []store.Record{
		testutil.Family("Cohen", map[string]string{schema.FieldDriver: "Moshe"}),
		testutil.Family("Levi", map[string]string{schema.FieldDriver: "Dan"}),
		testutil.Family("Katz", nil),
	})

	got, err := st.SearchColumn("", schema.ByDriver, store.MatchSubstring)
	if err != nil {
		t.Fatalf("SearchColumn: %v", err)
	}
	want := []string{"Moshe", "Dan"}
	if len(got) != len(want) {
		t.Fatalf("SearchColumn = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("SearchColumn[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFindRowNotFound(t *testing.T) {
	st := testutil.FamiliesStore(t)
	testutil.Append(t, st, []store.Record{testutil.Family("Cohen", nil)})

	if _, err := st.FindRow("Nobody"); !errors.Is(err, apperr.ErrRecordNotFound) {
		t.Fatalf("err = %v, want ErrRecordNotFound", err)
	}
	// Partial names are not keys.
	if _, err := st.FindRow("Coh"); !errors.Is(err, apperr.ErrRecordNotFound) {
		t.Fatalf("partial key: err = %v, want ErrRecordNotFound", err)
	}
	row, err := st.FindRow("Cohen")
	if err != nil {
		t.Fatalf("FindRow: %v", err)
	}
	if row != 2 {
		t.Errorf("row = %d, want 2", row)
	}
}

func TestReplaceRowIgnoresUnknownFields(t *testing.T) {
	st := testutil.FamiliesStore(t)
	testutil.Append(t, st, []store.Record{testutil.Family("Cohen", nil)})

	row, err := st.FindRow("Cohen")
	if err != nil {
		t.Fatalf("FindRow: %v", err)
	}
	err = st.ReplaceRow(row, store.Record{
		schema.FieldStreet: "Herzl",
		"Shoe Size":        "45", // not part of the schema, silently dropped
	})
	if err != nil {
		t.Fatalf("ReplaceRow: %v", err)
	}

	got, err := st.Search("Cohen", schema.ByName, store.MatchExact)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 || got[0][schema.FieldStreet] != "Herzl" {
		t.Errorf("street not updated: %v", got)
	}
	if _, ok := got[0]["Shoe Size"]; ok {
		t.Error("unknown field leaked into the record")
	}
}

func TestReplaceCellUnknownFieldIsNoop(t *testing.T) {
	st := testutil.FamiliesStore(t)
	testutil.Append(t, st, []store.Record{testutil.Family("Cohen", nil)})

	if err := st.ReplaceCell(2, "Shoe Size", store.CellPatch{Value: "45"}); err != nil {
		t.Fatalf("ReplaceCell on unknown field: %v", err)
	}
}

func TestDeleteRowShiftsFollowing(t *testing.T) {
	st := testutil.FamiliesStore(t)
	testutil.Append(t, st, []store.Record{
		testutil.Family("Cohen", nil),
		testutil.Family("Levi", nil),
		testutil.Family("Katz", nil),
	})

	row, err := st.FindRow("Levi")
	if err != nil {
		t.Fatalf("FindRow: %v", err)
	}
	if err := st.DeleteRow(row); err != nil {
		t.Fatalf("DeleteRow: %v", err)
	}

	if _, err := st.FindRow("Levi"); !errors.Is(err, apperr.ErrRecordNotFound) {
		t.Fatalf("Levi still present after delete: %v", err)
	}
	// Katz shifted up into Levi's old row.
	row, err = st.FindRow("Katz")
	if err != nil {
		t.Fatalf("FindRow(Katz): %v", err)
	}
	if row != 3 {
		t.Errorf("Katz row = %d, want 3", row)
	}
	n, err := st.RowCount()
	if err != nil {
		t.Fatalf("RowCount: %v", err)
	}
	if n != 3 {
		t.Errorf("RowCount = %d, want 3", n)
	}
}

func TestMove(t *testing.T) {
	families := testutil.FamiliesStore(t)
	history := testutil.HistoryStore(t)
	testutil.Append(t, families, []store.Record{
		testutil.Family("Cohen", map[string]string{schema.FieldDriver: "Moshe"}),
	})

	mapRow := func(rec store.Record) ([]any, error) {
		out := store.Record{}
		for k, v := range rec {
			out[k] = v
		}
		out[schema.FieldOriginalDriver] = rec[schema.FieldDriver]
		out[schema.FieldExitDate] = "2026-08-31"
		return store.SchemaRow(schema.History())(out)
	}
	if err := store.Move(families, history, "Cohen", mapRow); err != nil {
		t.Fatalf("Move: %v", err)
	}

	if _, err := families.FindRow("Cohen"); !errors.Is(err, apperr.ErrRecordNotFound) {
		t.Fatalf("Cohen still in source: %v", err)
	}
	got, err := history.Search("Cohen", schema.ByName, store.MatchExact)
	if err != nil {
		t.Fatalf("history search: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("history = %v, want Cohen", names(got))
	}
	if got[0][schema.FieldOriginalDriver] != "Moshe" {
		t.Errorf("original driver = %v, want Moshe", got[0][schema.FieldOriginalDriver])
	}
	if got[0][schema.FieldExitDate] != "2026-08-31" {
		t.Errorf("exit date = %v", got[0][schema.FieldExitDate])
	}
}

func TestMoveIncomplete(t *testing.T) {
	families := testutil.FamiliesStore(t)
	history := testutil.HistoryStore(t)
	testutil.Append(t, families, []store.Record{testutil.Family("Cohen", nil)})

	failRow := func(store.Record) ([]any, error) {
		return nil, errors.New("mapper exploded")
	}
	err := store.Move(families, history, "Cohen", failRow)

	var moveErr *apperr.MoveError
	if !errors.As(err, &moveErr) {
		t.Fatalf("err = %v, want MoveError", err)
	}
	if moveErr.Key != "Cohen" {
		t.Errorf("MoveError.Key = %q, want Cohen", moveErr.Key)
	}
	// The record is gone from the source and never reached the
	// destination; recovery is manual by design.
	if _, err := families.FindRow("Cohen"); !errors.Is(err, apperr.ErrRecordNotFound) {
		t.Errorf("source still holds Cohen: %v", err)
	}
	if _, err := history.FindRow("Cohen"); !errors.Is(err, apperr.ErrRecordNotFound) {
		t.Errorf("destination holds Cohen: %v", err)
	}
}

func TestMoveMissingKey(t *testing.T) {
	families := testutil.FamiliesStore(t)
	history := testutil.HistoryStore(t)

	err := store.Move(families, history, "Nobody", store.SchemaRow(schema.History()))
	if !errors.Is(err, apperr.ErrRecordNotFound) {
		t.Fatalf("err = %v, want ErrRecordNotFound", err)
	}
}
