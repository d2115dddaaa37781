// Package apperr defines the error kinds shared across the application and
// their mapping to structured, user-visible results.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrFileNotFound    = errors.New("file not found")
	ErrMissingResource = errors.New("file resource missing")
	ErrRecordNotFound  = errors.New("record not found")
	ErrDuplicateKey    = errors.New("record already exists")
	ErrReportExists    = errors.New("report already exists")
	ErrNoActiveReport  = errors.New("no active report")
	ErrNoSuchDriver    = errors.New("no such driver")
)

// Validation sub-reasons.
const (
	ReasonMissingFullName = "missing-full-name"
	ReasonPhoneMalformed  = "phone-malformed"
	ReasonDriverTooShort  = "driver-name-too-short"
	ReasonMissingDate     = "missing-date"
	ReasonDateMalformed   = "date-malformed"
	ReasonMissingName     = "missing-report-name"
)

// ValidationError reports malformed user input with a specific sub-reason.
type ValidationError struct {
	Reason      string
	Description string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed (%s): %s", e.Reason, e.Description)
}

// BatchOutcome classifies how much of a batch operation was applied.
type BatchOutcome int

const (
	// BatchNone means the batch failed before any item was applied.
	BatchNone BatchOutcome = iota
	// BatchPartial means some but not all items were applied.
	BatchPartial
)

// BatchError reports a batch operation that did not fully succeed.
// FailedKey carries the first failing key for stop-at-first-failure
// batches; continue-through batches leave it empty and report only
// the aggregate Outcome.
type BatchError struct {
	Outcome   BatchOutcome
	FailedKey string
	Err       error
}

func (e *BatchError) Error() string {
	switch {
	case e.FailedKey != "" && e.Outcome == BatchPartial:
		return fmt.Sprintf("batch partially applied, failed at %q: %v", e.FailedKey, e.Err)
	case e.FailedKey != "":
		return fmt.Sprintf("batch failed at %q: %v", e.FailedKey, e.Err)
	case e.Outcome == BatchPartial:
		return fmt.Sprintf("batch partially applied: %v", e.Err)
	default:
		return fmt.Sprintf("batch failed: %v", e.Err)
	}
}

func (e *BatchError) Unwrap() error {
	return e.Err
}

// MoveError reports a record move whose delete half succeeded but whose
// append half failed. The record is gone from the source and was never
// written to the destination; there is no rollback.
type MoveError struct {
	Key string
	Src string
	Dst string
	Err error
}

func (e *MoveError) Error() string {
	return fmt.Sprintf("record %q removed from %s but not added to %s: %v", e.Key, e.Src, e.Dst, e.Err)
}

func (e *MoveError) Unwrap() error {
	return e.Err
}
