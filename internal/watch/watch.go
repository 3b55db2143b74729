// Package watch reloads bundle files when they change on disk.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Faultbox/jointmorph/internal/logger"
	"github.com/Faultbox/jointmorph/pkg/formats"
)

// Debounce is how long a file must be quiet before its change is reported.
const Debounce = 100 * time.Millisecond

// Watcher reports changed bundle files on Events. Paths may name bundle
// files or directories holding them.
type Watcher struct {
	watcher *fsnotify.Watcher
	files   map[string]bool
	dirs    map[string]bool
	Events  chan string
	Errors  chan error
	closeCh chan struct{}
	done    chan struct{}
	once    sync.Once
}

// New starts watching paths.
func New(paths ...string) (*Watcher, error) {
	if len(paths) == 0 {
		return nil, errors.New("watch: no paths")
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "creating watcher")
	}

	watcher := &Watcher{
		watcher: w,
		files:   make(map[string]bool),
		dirs:    make(map[string]bool),
		Events:  make(chan string, 16),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
	}

	added := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			_ = w.Close()
			return nil, errors.Wrapf(err, "resolving %s", p)
		}
		info, err := os.Stat(abs)
		if err != nil {
			_ = w.Close()
			return nil, errors.Wrapf(err, "watching %s", p)
		}

		// Editors often replace files, so the parent directory is watched.
		dir := abs
		if info.IsDir() {
			watcher.dirs[abs] = true
		} else {
			watcher.files[abs] = true
			dir = filepath.Dir(abs)
		}
		if added[dir] {
			continue
		}
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, errors.Wrapf(err, "watching %s", dir)
		}
		added[dir] = true
	}

	go watcher.run()
	return watcher, nil
}

// Close stops the watcher and closes Events and Errors.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
	})
	return err
}

func (w *Watcher) run() {
	defer func() {
		close(w.Events)
		close(w.Errors)
		close(w.done)
	}()

	// Events for a file are held until it has been quiet for Debounce, so a
	// truncate followed by a write reports once with the final contents.
	pending := make(map[string]time.Time)
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()
	var fire <-chan time.Time

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if !w.matches(event.Name) {
				continue
			}
			pending[event.Name] = time.Now()
			if fire == nil {
				timer.Reset(Debounce)
				fire = timer.C
			}
		case <-fire:
			fire = nil
			now := time.Now()
			var wait time.Duration
			for name, t := range pending {
				age := now.Sub(t)
				if age < Debounce {
					if r := Debounce - age; wait == 0 || r < wait {
						wait = r
					}
					continue
				}
				delete(pending, name)
				select {
				case w.Events <- name:
				case <-w.closeCh:
					return
				}
			}
			if len(pending) > 0 {
				timer.Reset(wait)
				fire = timer.C
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
				logger.Warn("dropping watch error", zap.Error(err))
			}
		case <-w.closeCh:
			return
		}
	}
}

func (w *Watcher) matches(name string) bool {
	name = filepath.Clean(name)
	if w.files[name] {
		return true
	}
	return w.dirs[filepath.Dir(name)] && IsBundleFile(name)
}

// IsBundleFile reports whether path has an extension LoadBundle reads.
func IsBundleFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".gltf", ".glb":
		return true
	default:
		return false
	}
}

// Reload loads every changed bundle and passes it to fn until ctx is
// cancelled or the watcher is closed. Load errors are logged and skipped.
func (w *Watcher) Reload(ctx context.Context, fps float32, fn func(path string, b *formats.Bundle)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case path, ok := <-w.Events:
			if !ok {
				return nil
			}
			b, err := formats.LoadBundle(path, fps)
			if err != nil {
				logger.Warn("reload failed", zap.String("path", path), zap.Error(err))
				continue
			}
			logger.Info("bundle reloaded", zap.String("path", path))
			fn(path, b)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watch error", zap.Error(err))
		}
	}
}
