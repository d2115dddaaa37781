package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gabrieli/tamhui/internal/sse"
)

func watchTestEnv(t *testing.T) Config {
	t.Helper()
	root := t.TempDir()
	dataDir := filepath.Join(root, "data")
	reportsDir := filepath.Join(root, "reports")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(reportsDir, 0o755); err != nil {
		t.Fatal(err)
	}
	return Config{
		DataDir:      dataDir,
		ReportsDir:   reportsDir,
		FamiliesFile: "families.xlsx",
		HistoryFile:  "history.xlsx",
		ManagersFile: "managers.json",
	}
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func TestWatchReportsWorkbookChanges(t *testing.T) {
	cfg := watchTestEnv(t)
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var events []string

	go Watch(ctx, cfg, logger, func(kind, file string) {
		mu.Lock()
		events = append(events, kind+":"+file)
		mu.Unlock()
	})

	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(cfg.DataDir, "families.xlsx"), []byte("x"), 0o644)
	_ = os.WriteFile(filepath.Join(cfg.ReportsDir, "receipt-report-january.xlsx"), []byte("x"), 0o644)

	has := func(want string) func() bool {
		return func() bool {
			mu.Lock()
			defer mu.Unlock()
			for _, e := range events {
				if e == want {
					return true
				}
			}
			return false
		}
	}
	eventually(t, 5*time.Second, 50*time.Millisecond,
		has(sse.KindFamilies+":families.xlsx"), "expected families change callback")
	eventually(t, 5*time.Second, 50*time.Millisecond,
		has(sse.KindReport+":receipt-report-january.xlsx"), "expected report change callback")
}

func TestWatchDebouncesBursts(t *testing.T) {
	cfg := watchTestEnv(t)
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	count := 0

	go Watch(ctx, cfg, logger, func(kind, file string) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	time.Sleep(100 * time.Millisecond)

	// A workbook save is a burst of writes; the watcher should collapse it.
	path := filepath.Join(cfg.DataDir, "families.xlsx")
	for i := 0; i < 5; i++ {
		_ = os.WriteFile(path, []byte("x"), 0o644)
		time.Sleep(10 * time.Millisecond)
	}

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return count >= 1
	}, "expected at least one callback")

	time.Sleep(500 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if count > 2 {
		t.Errorf("burst produced %d callbacks, want coalesced", count)
	}
}

func TestClassifyIgnoresForeignFiles(t *testing.T) {
	cfg := watchTestEnv(t)
	cases := []string{
		filepath.Join(cfg.DataDir, "notes.txt"),
		filepath.Join(cfg.DataDir, ".~lock.families.xlsx#"),
		filepath.Join(cfg.ReportsDir, "other.xlsx"),
	}
	for _, path := range cases {
		if kind, _ := cfg.classify(path); kind != "" {
			t.Errorf("classify(%q) = %q, want ignored", path, kind)
		}
	}
	if kind, file := cfg.classify(filepath.Join(cfg.DataDir, "managers.json")); kind != sse.KindManagers || file != "managers.json" {
		t.Errorf("classify managers = %q/%q", kind, file)
	}
}
