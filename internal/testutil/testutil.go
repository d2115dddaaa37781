// Package testutil provides shared test helpers for creating workbook
// fixtures and schema-bound stores.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/gabrieli/tamhui/internal/schema"
	"github.com/gabrieli/tamhui/internal/store"
)

// TableFile creates a workbook fixture in dir satisfying the schema's file
// contract (headers, record style, table range) and returns its path.
func TableFile(t *testing.T, dir, name string, sc *schema.Schema) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := store.Create(path, sc); err != nil {
		t.Fatalf("create workbook %s: %v", path, err)
	}
	return path
}

// OpenStore opens a store over a fixture file and fails the test on error.
func OpenStore(t *testing.T, path string, sc *schema.Schema) *store.Store {
	t.Helper()
	st, err := store.Open(path, sc)
	if err != nil {
		t.Fatalf("open store %s: %v", path, err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

// FamiliesStore creates a families fixture in a temp dir and opens it.
func FamiliesStore(t *testing.T) *store.Store {
	t.Helper()
	path := TableFile(t, t.TempDir(), "families.xlsx", schema.Families())
	return OpenStore(t, path, schema.Families())
}

// HistoryStore creates a history fixture in a temp dir and opens it.
func HistoryStore(t *testing.T) *store.Store {
	t.Helper()
	path := TableFile(t, t.TempDir(), "history.xlsx", schema.History())
	return OpenStore(t, path, schema.History())
}

// Append writes records through the schema's default row layout.
func Append(t *testing.T, st *store.Store, records []store.Record) {
	t.Helper()
	if err := st.Append(records, store.SchemaRow(st.Schema())); err != nil {
		t.Fatalf("append: %v", err)
	}
}

// Family builds a minimal family record.
func Family(name string, fields map[string]string) store.Record {
	rec := store.Record{schema.FieldFullName: name}
	for k, v := range fields {
		rec[k] = v
	}
	return rec
}
