package store_test

import (
	"testing"

	"github.com/gabrieli/tamhui/internal/schema"
	"github.com/gabrieli/tamhui/internal/store"
	"github.com/gabrieli/tamhui/internal/testutil"
	"github.com/gabrieli/tamhui/internal/workbook"
)

func reportStyleMap() store.StyleMap {
	return store.StyleMap{
		workbook.StyleRecord:      store.Unset,
		workbook.StyleReceived:    store.Received,
		workbook.StyleNotReceived: store.NotReceived,
	}
}

func reportStore(t *testing.T) *store.Store {
	t.Helper()
	path := testutil.TableFile(t, t.TempDir(), "report.xlsx", schema.Report())
	st := testutil.OpenStore(t, path, schema.Report())
	for _, name := range []string{workbook.StyleReceived, workbook.StyleNotReceived} {
		if err := st.Workbook().EnsureStyle(name, workbook.ReceivedStyleDef(name)); err != nil {
			t.Fatalf("style %s: %v", name, err)
		}
	}
	return st
}

func TestStyleSearchDefaultsToUnset(t *testing.T) {
	st := reportStore(t)
	testutil.Append(t, st, []store.Record{testutil.Family("Cohen", nil)})

	got, err := st.StyleSearch("Cohen", schema.ByName, store.MatchExact, reportStyleMap())
	if err != nil {
		t.Fatalf("StyleSearch: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d records, want 1", len(got))
	}
	if got[0][schema.FieldReceived] != store.Unset {
		t.Errorf("status = %v, want Unset", got[0][schema.FieldReceived])
	}
}

func TestStyleEncodedRoundTrip(t *testing.T) {
	st := reportStore(t)
	testutil.Append(t, st, []store.Record{testutil.Family("Cohen", nil)})

	cases := []struct {
		style string
		want  store.TriState
	}{
		{workbook.StyleReceived, store.Received},
		{workbook.StyleNotReceived, store.NotReceived},
	}
	for _, tc := range cases {
		row, err := st.FindRow("Cohen")
		if err != nil {
			t.Fatalf("FindRow: %v", err)
		}
		// Writing a boolean is a pure formatting operation: only the
		// style changes, never the cell text.
		if err := st.ReplaceCell(row, schema.FieldReceived, store.CellPatch{Style: tc.style}); err != nil {
			t.Fatalf("ReplaceCell(%s): %v", tc.style, err)
		}
		got, err := st.StyleSearch("Cohen", schema.ByName, store.MatchExact, reportStyleMap())
		if err != nil {
			t.Fatalf("StyleSearch: %v", err)
		}
		if len(got) != 1 || got[0][schema.FieldReceived] != tc.want {
			t.Errorf("after %s: status = %v, want %v", tc.style, got[0][schema.FieldReceived], tc.want)
		}
	}
}

func TestTriStateJSON(t *testing.T) {
	cases := []struct {
		in   store.TriState
		want string
	}{
		{store.Unset, "null"},
		{store.Received, "true"},
		{store.NotReceived, "false"},
	}
	for _, tc := range cases {
		b, err := tc.in.MarshalJSON()
		if err != nil {
			t.Fatalf("MarshalJSON: %v", err)
		}
		if string(b) != tc.want {
			t.Errorf("TriState(%d) = %s, want %s", tc.in, b, tc.want)
		}
	}
}
