// Package manager holds the JSON-backed manager roster: which delivery
// drivers report to which manager. It is a plain key-value document, loaded
// and rewritten whole.
package manager

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/natefinch/atomic"

	"github.com/gabrieli/tamhui/internal/apperr"
)

// Driver is one delivery driver under a manager.
type Driver struct {
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
}

// Manager groups the drivers one person is responsible for.
type Manager struct {
	Name    string   `json:"name"`
	Drivers []Driver `json:"drivers"`
}

// Roster is the whole roster document bound to its file path.
type Roster struct {
	path     string
	Managers []Manager
}

// New returns an empty roster bound to path, for when no document exists yet.
func New(path string) *Roster {
	return &Roster{path: path}
}

// Load reads the roster document. A missing file is apperr.ErrFileNotFound.
func Load(path string) (*Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("roster %s: %w", path, apperr.ErrFileNotFound)
		}
		return nil, fmt.Errorf("roster %s: read: %w", path, err)
	}
	var managers []Manager
	if err := json.Unmarshal(data, &managers); err != nil {
		return nil, fmt.Errorf("roster %s: parse: %w", path, err)
	}
	return &Roster{path: path, Managers: managers}, nil
}

// Save rewrites the whole document atomically.
func (r *Roster) Save() error {
	data, err := json.MarshalIndent(r.Managers, "", "  ")
	if err != nil {
		return fmt.Errorf("roster %s: marshal: %w", r.path, err)
	}
	if err := atomic.WriteFile(r.path, bytes.NewReader(append(data, '\n'))); err != nil {
		return fmt.Errorf("roster %s: save: %w", r.path, err)
	}
	return nil
}

// FindManager returns the name of the manager responsible for the driver,
// or "" when the driver is not on the roster.
func (r *Roster) FindManager(driver string) string {
	for _, m := range r.Managers {
		for _, d := range m.Drivers {
			if d.Name == driver {
				return m.Name
			}
		}
	}
	return ""
}

// Drivers lists every driver name on the roster, in document order.
func (r *Roster) Drivers() []string {
	var out []string
	for _, m := range r.Managers {
		for _, d := range m.Drivers {
			out = append(out, d.Name)
		}
	}
	return out
}

// RenameDriver renames a driver wherever it appears on the roster and
// reports whether anything changed. The file is not saved here.
func (r *Roster) RenameDriver(oldName, newName string) bool {
	changed := false
	for mi := range r.Managers {
		for di := range r.Managers[mi].Drivers {
			if r.Managers[mi].Drivers[di].Name == oldName {
				r.Managers[mi].Drivers[di].Name = newName
				changed = true
			}
		}
	}
	return changed
}
