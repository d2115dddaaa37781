package apperr

import (
	"errors"
	"net/http"
)

// Result is the structured outcome surfaced at the API boundary instead of a
// raw error: an HTTP-like status code plus a human-readable title and
// description.
type Result struct {
	Status      int    `json:"status"`
	Title       string `json:"title"`
	Description string `json:"description"`
	FailedKey   string `json:"failedKey,omitempty"`
}

// ResultOf maps any error produced by the core packages to a Result.
// Unrecognized errors map to a generic internal error so internals never
// leak to clients.
func ResultOf(err error) Result {
	var (
		validation *ValidationError
		batch      *BatchError
		move       *MoveError
	)

	// Batch and move errors may wrap a validation error; check the
	// aggregate kinds before the per-record one.
	switch {
	case errors.As(err, &move):
		return Result{
			Status:      http.StatusInternalServerError,
			Title:       "Move Incomplete",
			Description: err.Error(),
			FailedKey:   move.Key,
		}
	case errors.As(err, &batch):
		title := "Batch Failed"
		if batch.Outcome == BatchPartial {
			title = "Batch Partially Applied"
		}
		return Result{
			Status:      http.StatusConflict,
			Title:       title,
			Description: err.Error(),
			FailedKey:   batch.FailedKey,
		}
	case errors.As(err, &validation):
		return Result{
			Status:      http.StatusBadRequest,
			Title:       "Validation Failed",
			Description: validation.Description,
			FailedKey:   validation.Reason,
		}
	case errors.Is(err, ErrFileNotFound):
		return Result{Status: http.StatusNotFound, Title: "File Not Found", Description: err.Error()}
	case errors.Is(err, ErrMissingResource):
		return Result{Status: http.StatusNotFound, Title: "File Resource Missing", Description: err.Error()}
	case errors.Is(err, ErrRecordNotFound):
		return Result{Status: http.StatusNotFound, Title: "Record Not Found", Description: err.Error()}
	case errors.Is(err, ErrDuplicateKey):
		return Result{Status: http.StatusConflict, Title: "Record Exists", Description: err.Error()}
	case errors.Is(err, ErrReportExists):
		return Result{Status: http.StatusConflict, Title: "Report Exists", Description: err.Error()}
	case errors.Is(err, ErrNoActiveReport):
		return Result{Status: http.StatusNotFound, Title: "No Active Report", Description: err.Error()}
	case errors.Is(err, ErrNoSuchDriver):
		return Result{Status: http.StatusNotFound, Title: "No Such Driver", Description: err.Error()}
	default:
		return Result{Status: http.StatusInternalServerError, Title: "Internal Server Error", Description: "an unexpected error occurred"}
	}
}
