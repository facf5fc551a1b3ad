package scheduler

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/MrSnakeDoc/navkit/internal/logger"
)

// DefaultDebounce coalesces editor save bursts into one reload
const DefaultDebounce = 500 * time.Millisecond

// ChangeFunc is called after a debounced change
type ChangeFunc func(ctx context.Context) error

// Watcher monitors the site declaration and, optionally, the content tree.
// A change to the declaration triggers onSite; a change anywhere under the
// content directory triggers onContent.
type Watcher struct {
	sitePath   string
	contentDir string
	watcher    *fsnotify.Watcher
	logger     logger.Logger
	debounce   time.Duration
	onSite     ChangeFunc
	onContent  ChangeFunc

	mu        sync.Mutex
	stopCh    chan struct{}
	siteCh    chan struct{}
	contentCh chan struct{}
	stopped   bool
}

// NewWatcher creates a watcher. contentDir and onContent may be empty/nil.
func NewWatcher(sitePath, contentDir string, debounce time.Duration, log logger.Logger, onSite, onContent ChangeFunc) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	// Resolve absolute paths for consistent matching
	absSite, err := filepath.Abs(sitePath)
	if err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("failed to resolve site path: %w", err)
	}
	absContent := ""
	if contentDir != "" && onContent != nil {
		if absContent, err = filepath.Abs(contentDir); err != nil {
			_ = w.Close()
			return nil, fmt.Errorf("failed to resolve content dir: %w", err)
		}
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	return &Watcher{
		sitePath:   absSite,
		contentDir: absContent,
		watcher:    w,
		logger:     log,
		debounce:   debounce,
		onSite:     onSite,
		onContent:  onContent,
		stopCh:     make(chan struct{}),
		siteCh:     make(chan struct{}, 1),
		contentCh:  make(chan struct{}, 1),
	}, nil
}

// Start begins monitoring
func (cw *Watcher) Start(ctx context.Context) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	// Watch the directory: editors replace files, which drops a file watch
	siteDir := filepath.Dir(cw.sitePath)
	if err := cw.watcher.Add(siteDir); err != nil {
		return fmt.Errorf("failed to watch site directory %s: %w", siteDir, err)
	}
	if cw.contentDir != "" {
		if err := cw.addTree(cw.contentDir); err != nil {
			return err
		}
	}

	cw.logger.Info("watching site declaration",
		logger.String("site_path", cw.sitePath),
		logger.String("content_dir", cw.contentDir),
		logger.Bool("flush_on_content_change", cw.onContent != nil))

	go cw.watchLoop(ctx)
	go cw.debounceLoop(ctx, cw.siteCh, cw.onSite, "site")
	if cw.contentDir != "" {
		go cw.debounceLoop(ctx, cw.contentCh, cw.onContent, "content")
	}
	return nil
}

// Stop stops the watcher
func (cw *Watcher) Stop() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if cw.stopped {
		return nil
	}
	cw.stopped = true
	close(cw.stopCh)
	return cw.watcher.Close()
}

// addTree watches dir and every sub-directory (fsnotify is not recursive)
func (cw *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := cw.watcher.Add(p); err != nil {
			return fmt.Errorf("failed to watch %s: %w", p, err)
		}
		return nil
	})
}

func (cw *Watcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-cw.stopCh:
			return
		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			cw.handle(event)
		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			cw.logger.Error("file watcher error", logger.Error(err))
		}
	}
}

func (cw *Watcher) handle(event fsnotify.Event) {
	if event.Op == fsnotify.Chmod {
		return
	}

	if filepath.Clean(event.Name) == cw.sitePath {
		if event.Has(fsnotify.Remove) {
			cw.logger.Warn("site declaration removed", logger.String("file", event.Name))
			return
		}
		cw.logger.Debug("site declaration change detected", logger.String("file", event.Name))
		trigger(cw.siteCh)
		return
	}

	if cw.contentDir == "" || !strings.HasPrefix(event.Name, cw.contentDir+string(filepath.Separator)) {
		return
	}
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := cw.addTree(event.Name); err != nil {
				cw.logger.Warn("failed to watch new directory", logger.Error(err))
			}
		}
	}
	cw.logger.Debug("content change detected", logger.String("file", event.Name))
	trigger(cw.contentCh)
}

// trigger schedules a debounced callback, dropping it when one is already pending
func trigger(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

func (cw *Watcher) debounceLoop(ctx context.Context, ch <-chan struct{}, fn ChangeFunc, kind string) {
	var timer *time.Timer
	stop := func() {
		if timer != nil {
			timer.Stop()
		}
	}

	for {
		select {
		case <-ctx.Done():
			stop()
			return
		case <-cw.stopCh:
			stop()
			return
		case <-ch:
			stop()
			timer = time.AfterFunc(cw.debounce, func() {
				if err := fn(ctx); err != nil {
					cw.logger.Error("change handler failed",
						logger.String("kind", kind),
						logger.Error(err))
				}
			})
		}
	}
}
