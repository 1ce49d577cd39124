// Package watch notices branch changes made outside reaper (another terminal,
// an IDE, a background fetch) by watching the repository's ref storage.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Debounce is the minimum interval between two refreshes triggered by the watcher
const Debounce = 600 * time.Millisecond

// GitDirResolver runs git to locate the common directory
type GitDirResolver interface {
	Run(ctx context.Context, args ...string) (string, error)
	WorkingDir() string
}

// RefWatcher watches refs/, logs/ and packed-refs under the git common
// directory and signals Events when any of them change. Events is buffered
// with room for one signal; bursts collapse into it.
type RefWatcher struct {
	Events chan struct{}

	started     bool
	waiting     bool
	commonDir   string
	roots       []string
	done        chan struct{}
	paths       map[string]struct{}
	mu          sync.Mutex
	watcher     *fsnotify.Watcher
	lastRefresh time.Time
	git         GitDirResolver
	logf        func(string, ...any)
}

// NewRefWatcher creates a RefWatcher. logf may be nil.
func NewRefWatcher(git GitDirResolver, logf func(string, ...any)) *RefWatcher {
	return &RefWatcher{
		git:  git,
		logf: logf,
	}
}

// Start resolves the common directory and begins watching. It reports false
// without error when the directory cannot be resolved.
func (w *RefWatcher) Start(ctx context.Context) (bool, error) {
	if w.started {
		return false, nil
	}
	commonDir := w.resolveGitCommonDir(ctx)
	if commonDir == "" {
		w.debugf("ref watcher: unable to resolve git common dir")
		return false, nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return false, err
	}

	w.started = true
	w.watcher = watcher
	w.commonDir = commonDir
	w.Events = make(chan struct{}, 1)
	w.done = make(chan struct{})
	w.paths = make(map[string]struct{})
	w.roots = []string{
		filepath.Join(commonDir, "refs"),
		filepath.Join(commonDir, "logs"),
	}
	// packed-refs and HEAD live directly in the common dir
	w.addWatchDir(commonDir)
	for _, root := range w.roots {
		w.addWatchTree(root)
	}

	go w.run()
	return true, nil
}

// Stop stops watching. It is safe to call more than once.
func (w *RefWatcher) Stop() {
	if !w.started {
		return
	}
	close(w.done)
	w.started = false
	if w.watcher != nil {
		_ = w.watcher.Close()
	}
}

// CommonDir returns the watched git common directory
func (w *RefWatcher) CommonDir() string {
	return w.commonDir
}

// NextEvent returns the event channel, or nil while a previous event is still
// being handled. Call ResetWaiting once the event has been processed.
func (w *RefWatcher) NextEvent() <-chan struct{} {
	if w.Events == nil || w.waiting {
		return nil
	}
	w.waiting = true
	return w.Events
}

// ResetWaiting clears the waiting flag after an event is processed
func (w *RefWatcher) ResetWaiting() {
	w.waiting = false
}

// ShouldRefresh applies the debounce window and records now when it passes
func (w *RefWatcher) ShouldRefresh(now time.Time) bool {
	if !w.lastRefresh.IsZero() && now.Sub(w.lastRefresh) < Debounce {
		return false
	}
	w.lastRefresh = now
	return true
}

// Signal notifies listeners without blocking
func (w *RefWatcher) Signal() {
	select {
	case <-w.done:
		return
	default:
	}
	select {
	case w.Events <- struct{}{}:
	default:
	}
}

func (w *RefWatcher) isUnderRoot(path string) bool {
	for _, root := range w.roots {
		if path == root || strings.HasPrefix(path, root+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func (w *RefWatcher) relevant(path string) bool {
	if w.isUnderRoot(path) {
		return true
	}
	switch filepath.Base(path) {
	case "packed-refs", "HEAD", "FETCH_HEAD":
		return filepath.Dir(path) == w.commonDir
	}
	return false
}

func (w *RefWatcher) run() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if event.Op&fsnotify.Create != 0 && w.isUnderRoot(event.Name) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					w.addWatchTree(event.Name)
				}
			}
			if !w.relevant(event.Name) {
				continue
			}
			w.Signal()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.debugf("ref watcher error: %v", err)
		}
	}
}

func (w *RefWatcher) addWatchDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.paths[path]; ok {
		return
	}
	if err := w.watcher.Add(path); err != nil {
		w.debugf("ref watcher add failed for %s: %v", path, err)
		return
	}
	w.paths[path] = struct{}{}
}

func (w *RefWatcher) addWatchTree(root string) {
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		w.addWatchDir(path)
		return nil
	})
}

func (w *RefWatcher) resolveGitCommonDir(ctx context.Context) string {
	if w.git == nil {
		return ""
	}
	commonDir, err := w.git.Run(ctx, "rev-parse", "--git-common-dir")
	if err != nil || commonDir == "" {
		return ""
	}
	if !filepath.IsAbs(commonDir) {
		// relative to the directory git ran in
		base := w.git.WorkingDir()
		if base == "" {
			if wd, err := os.Getwd(); err == nil {
				base = wd
			}
		}
		commonDir = filepath.Join(base, commonDir)
	}
	if resolved, err := filepath.EvalSymlinks(commonDir); err == nil {
		commonDir = resolved
	}
	return filepath.Clean(commonDir)
}

func (w *RefWatcher) debugf(format string, args ...any) {
	if w.logf == nil {
		return
	}
	w.logf(format, args...)
}
