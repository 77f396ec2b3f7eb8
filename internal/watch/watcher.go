package watch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"

	"github.com/obsplane/observer/internal/hub"
	"github.com/obsplane/observer/internal/lock"
	"github.com/obsplane/observer/internal/verdict"
)

// SidecarSuffix marks drop-directory files the watcher ingests.
const SidecarSuffix = ".run.v1.json"

// Watcher ingests sidecar files from a drop directory and produces one
// verdict per artifact. A process flock keeps a hub to a single watcher;
// a per-artifact mutex serializes duplicate events for the same file.
type Watcher struct {
	hub    *hub.Hub
	cfg    Config
	engine *verdict.Engine

	fileLock *lock.FileLock
	lockMap  *lock.MutexMap

	// Debounce state for burst fsnotify events.
	debounceMu    sync.Mutex
	debounceTimer *time.Timer
}

func NewWatcher(h *hub.Hub, cfg Config) *Watcher {
	return &Watcher{
		hub:      h,
		cfg:      cfg,
		engine:   verdict.NewEngine(h),
		fileLock: lock.NewFileLock(filepath.Join(h.BasePath, "observer.lock")),
		lockMap:  lock.NewMutexMap(),
	}
}

// DropDir resolves the watched directory. Relative paths are anchored at the
// hub base path.
func (w *Watcher) DropDir() string {
	dir := w.cfg.Watcher.DropDir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(w.hub.BasePath, dir)
	}
	return dir
}

// Run blocks until ctx is cancelled, ingesting sidecar files as they appear
// and rescanning the drop directory at the configured interval.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.fileLock.TryLock(); err != nil {
		return fmt.Errorf("watcher lock: %w", err)
	}
	defer w.fileLock.Unlock()

	dropDir := w.DropDir()
	if err := os.MkdirAll(dropDir, 0755); err != nil {
		return fmt.Errorf("ensure drop dir %s: %w", dropDir, err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	defer fsw.Close()
	if err := fsw.Add(dropDir); err != nil {
		return fmt.Errorf("watch %s: %w", dropDir, err)
	}

	log.Printf("watcher started pid=%d dir=%s interval=%ds",
		os.Getpid(), dropDir, w.cfg.Watcher.ScanIntervalSec)

	// Pick up anything already dropped before the watcher started.
	w.Scan()

	ticker := time.NewTicker(time.Duration(w.cfg.Watcher.ScanIntervalSec) * time.Second)
	defer ticker.Stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case event, ok := <-fsw.Events:
				if !ok {
					return nil
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
					w.handleFileEvent(event.Name)
				}
			case err, ok := <-fsw.Errors:
				if !ok {
					return nil
				}
				log.Printf("fsnotify error: %v", err)
			}
		}
	})

	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				w.Scan()
			}
		}
	})

	err = g.Wait()
	w.stopDebounce()
	if errors.Is(err, context.Canceled) {
		log.Printf("watcher stopped")
		return nil
	}
	return err
}

// handleFileEvent debounces fsnotify bursts before triggering a scan. The
// scan, not the event, is the unit of work: events only tell us the drop
// directory changed.
func (w *Watcher) handleFileEvent(path string) {
	if !strings.HasSuffix(filepath.Base(path), SidecarSuffix) {
		return
	}

	debounce := time.Duration(w.cfg.Watcher.DebounceSec * float64(time.Second))
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(debounce, func() { w.Scan() })
}

func (w *Watcher) stopDebounce() {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
		w.debounceTimer = nil
	}
}

// Scan ingests every sidecar file currently in the drop directory. Artifacts
// that already have a verdict are skipped, so repeated scans are idempotent.
func (w *Watcher) Scan() {
	paths, err := filepath.Glob(filepath.Join(w.DropDir(), "*"+SidecarSuffix))
	if err != nil {
		log.Printf("scan drop dir: %v", err)
		return
	}
	for _, path := range paths {
		if err := w.Ingest(path); err != nil {
			log.Printf("ingest %s: %v", filepath.Base(path), err)
		}
	}
}

// Ingest produces a verdict for one sidecar file. An unreadable or malformed
// sidecar still produces a verdict, in degraded fail-open form.
func (w *Watcher) Ingest(path string) error {
	artifactID := strings.TrimSuffix(filepath.Base(path), SidecarSuffix)
	if artifactID == "" {
		return fmt.Errorf("cannot derive artifact id from %s", path)
	}

	w.lockMap.Lock(artifactID)
	defer w.lockMap.Unlock(artifactID)

	if w.engine.Exists(artifactID) {
		return nil
	}

	sidecar := readSidecar(path)
	v := w.engine.Generate(artifactID, sidecar)
	if _, err := w.engine.Write(v); err != nil {
		return err
	}
	log.Printf("verdict written: artifact=%s verdict=%s degraded=%v",
		artifactID, v.Verdict, v.Degraded)
	return nil
}

// readSidecar returns nil on any read or parse failure, which the engine
// maps to a degraded verdict.
func readSidecar(path string) verdict.Sidecar {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("read sidecar %s: %v", filepath.Base(path), err)
		return nil
	}
	var sc verdict.Sidecar
	if err := json.Unmarshal(data, &sc); err != nil {
		log.Printf("parse sidecar %s: %v", filepath.Base(path), err)
		return nil
	}
	return sc
}
