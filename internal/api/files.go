package api

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabrieli/tamhui/internal/report"
)

// FileHandler serves the raw workbook files for download, so volunteers can
// print a report or open the tables in Excel.
type FileHandler struct {
	paths Paths
}

// NewFileHandler creates a handler over the configured data files.
func NewFileHandler(paths Paths) *FileHandler {
	return &FileHandler{paths: paths}
}

// safeReportName validates that name is a plain report name (no path
// separators, no traversal) and returns the absolute workbook path.
func (h *FileHandler) safeReportName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("report name is required")
	}
	cleaned := filepath.Clean(name)
	if cleaned != filepath.Base(cleaned) || strings.Contains(cleaned, "..") {
		return "", fmt.Errorf("invalid report name: %s", name)
	}
	abs := report.Path(h.paths.Reports, cleaned)
	if filepath.Dir(abs) != filepath.Clean(h.paths.Reports) {
		return "", fmt.Errorf("report name escapes reports directory")
	}
	return abs, nil
}

func (h *FileHandler) serve(w http.ResponseWriter, r *http.Request, path string) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", filepath.Base(path)))
	http.ServeFile(w, r, path)
}

// Families handles GET /api/files/families.
func (h *FileHandler) Families(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.paths.Families)
}

// History handles GET /api/files/history.
func (h *FileHandler) History(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.paths.History)
}

// Report handles GET /api/files/reports/{name}.
func (h *FileHandler) Report(w http.ResponseWriter, r *http.Request) {
	abs, err := h.safeReportName(pathName(r, "name"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.serve(w, r, abs)
}
