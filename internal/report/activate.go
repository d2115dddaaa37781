package report

import (
	"fmt"

	"github.com/gabrieli/tamhui/internal/apperr"
)

// IsActive reports whether this report carries the persisted active flag.
func (r *Report) IsActive() bool {
	return r.st.Workbook().Flag(activeFlag)
}

func (r *Report) setActive(v bool) error {
	if err := r.st.Workbook().SetFlag(activeFlag, v); err != nil {
		return err
	}
	return r.st.Workbook().Save()
}

// Activate flags the named report active and every other report inactive.
// An unknown name is a no-op, not an error. The sweep is sequential, one
// file rewrite per report, and not transactional: a failure mid-sweep can
// leave more than one report flagged, which callers observe through the
// returned error.
func Activate(dir, name string) error {
	names, err := Names(dir)
	if err != nil {
		return err
	}
	known := false
	for _, n := range names {
		if n == name {
			known = true
			break
		}
	}
	if !known {
		return nil
	}
	for _, n := range names {
		r, err := Open(dir, n)
		if err != nil {
			return fmt.Errorf("activation sweep at %q: %w", n, err)
		}
		err = r.setActive(n == name)
		r.Close()
		if err != nil {
			return fmt.Errorf("activation sweep at %q: %w", n, err)
		}
	}
	return nil
}

// Active returns the first report flagged active, or ErrNoActiveReport
// when the collection is empty or none has been activated.
func Active(dir string) (*Report, error) {
	names, err := Names(dir)
	if err != nil {
		return nil, err
	}
	for _, n := range names {
		r, err := Open(dir, n)
		if err != nil {
			return nil, err
		}
		if r.IsActive() {
			return r, nil
		}
		r.Close()
	}
	return nil, fmt.Errorf("reports dir %s: %w", dir, apperr.ErrNoActiveReport)
}
