// Package family implements the beneficiary record lifecycle over the main,
// history and holiday tables: add, update, search, removal to history, and
// driver bookkeeping across stores.
package family

import (
	"errors"
	"fmt"

	"github.com/gabrieli/tamhui/internal/apperr"
	"github.com/gabrieli/tamhui/internal/schema"
	"github.com/gabrieli/tamhui/internal/store"
)

// Add validates and appends one family. The full name is the table key and
// must be unique; inserting an existing name fails with ErrDuplicateKey.
func Add(st *store.Store, rec store.Record) error {
	if err := validateRecord(rec); err != nil {
		return err
	}
	key := rec.Key(st.Schema())
	if _, err := st.FindRow(key); err == nil {
		return fmt.Errorf("family %q: %w", key, apperr.ErrDuplicateKey)
	} else if !errors.Is(err, apperr.ErrRecordNotFound) {
		return err
	}
	return st.Append([]store.Record{rec}, store.SchemaRow(st.Schema()))
}

// AddMany appends families one by one and stops at the first failure,
// reporting which key failed. Families added before the failure stay
// committed; the batch is not atomic.
func AddMany(st *store.Store, records []store.Record) error {
	for i, rec := range records {
		if err := Add(st, rec); err != nil {
			outcome := apperr.BatchNone
			if i > 0 {
				outcome = apperr.BatchPartial
			}
			return &apperr.BatchError{
				Outcome:   outcome,
				FailedKey: rec.Key(st.Schema()),
				Err:       err,
			}
		}
	}
	return nil
}

// Update overwrites the family's cells with the given fields. Unknown
// field names are silently ignored, which partial updates rely on.
func Update(st *store.Store, key string, fields store.Record) error {
	row, err := st.FindRow(key)
	if err != nil {
		return err
	}
	return st.ReplaceRow(row, fields)
}

// Search returns families whose search-by cell matches the query. An empty
// query lists all families with a value in that cell.
func Search(st *store.Store, query string, by schema.Category) ([]store.Record, error) {
	return st.Search(query, by, store.MatchSubstring)
}

// Count returns the number of families: content rows, header excluded.
func Count(st *store.Store) (int, error) {
	n, err := st.RowCount()
	if err != nil {
		return 0, err
	}
	return n - 1, nil
}

// Remove moves a family from the main table to the history table, turning
// its driver into the original driver and stamping the exit date. The move
// is delete-then-append; an append-side failure surfaces as a MoveError
// and is not rolled back.
func Remove(families, history *store.Store, key, exitDate string) error {
	mapRow := func(rec store.Record) ([]any, error) {
		out := store.Record{}
		for k, v := range rec {
			out[k] = v
		}
		out[schema.FieldOriginalDriver] = rec[schema.FieldDriver]
		out[schema.FieldExitDate] = exitDate
		return store.SchemaRow(history.Schema())(out)
	}
	return store.Move(families, history, key, mapRow)
}

// Restore moves a family back from the history table into the main table,
// reinstating the original driver and dropping the exit date.
func Restore(history, families *store.Store, key string) error {
	mapRow := func(rec store.Record) ([]any, error) {
		out := store.Record{}
		for k, v := range rec {
			out[k] = v
		}
		out[schema.FieldDriver] = rec[schema.FieldOriginalDriver]
		return store.SchemaRow(families.Schema())(out)
	}
	return store.Move(history, families, key, mapRow)
}
