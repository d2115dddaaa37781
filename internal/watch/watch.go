// Package watch observes the data and reports directories for workbook
// changes made outside the server (e.g. a volunteer editing a file in
// Excel) and reports them through a callback.
package watch

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/gabrieli/tamhui/internal/report"
	"github.com/gabrieli/tamhui/internal/sse"
)

// EventCallback is called after a debounced file change.
// kind is one of the sse change kinds; file is the base file name.
type EventCallback func(kind, file string)

// Config names the watched locations and files.
type Config struct {
	DataDir      string
	ReportsDir   string
	FamiliesFile string
	HistoryFile  string
	ManagersFile string
}

// Watch starts an fsnotify watcher on the data and reports directories and
// processes change events until ctx is cancelled. Changes are debounced:
// a workbook save produces a burst of write/rename events which collapse
// into a single callback per file.
func Watch(ctx context.Context, cfg Config, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(cfg.DataDir); err != nil {
		return err
	}
	if err := w.Add(cfg.ReportsDir); err != nil {
		return err
	}

	logger.Info("watcher: started",
		slog.String("data", cfg.DataDir),
		slog.String("reports", cfg.ReportsDir))

	// pending collects per-file kinds between flushes; one timer debounces
	// the whole batch.
	pending := make(map[string]string)
	var flushTimer *time.Timer
	var flushCh <-chan time.Time

	scheduleFlush := func() {
		if flushTimer == nil {
			flushTimer = time.NewTimer(200 * time.Millisecond)
			flushCh = flushTimer.C
		} else {
			flushTimer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if flushTimer != nil {
				flushTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-flushCh:
			for file, kind := range pending {
				logger.Debug("watcher: changed",
					slog.String("kind", kind), slog.String("file", file))
				if cb != nil {
					cb(kind, file)
				}
			}
			pending = make(map[string]string)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			kind, file := cfg.classify(ev.Name)
			if kind == "" {
				continue
			}
			pending[file] = kind
			scheduleFlush()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// classify maps an event path to a change kind and base file name.
// Unrecognized files (editor temp files, lock files) yield "".
func (c Config) classify(path string) (kind, file string) {
	base := filepath.Base(path)
	switch base {
	case c.FamiliesFile:
		return sse.KindFamilies, base
	case c.HistoryFile:
		return sse.KindHistory, base
	case c.ManagersFile:
		return sse.KindManagers, base
	}
	if strings.HasPrefix(base, report.FilePrefix) && strings.HasSuffix(base, report.FileSuffix) {
		return sse.KindReport, base
	}
	return "", ""
}
