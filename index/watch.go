package index

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Watcher keeps the index of a Support in step with an artifact on disk.
// Document paths in the artifact are relative to its directory.
type Watcher struct {
	mu       sync.RWMutex
	path     string
	support  *Support
	logger   zerolog.Logger
	watcher  *fsnotify.Watcher
	onChange []func(Index)
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewWatcher loads the artifact at path and returns a Watcher whose Support
// loads documents from the artifact's directory.
func NewWatcher(ctx context.Context, path string, opts ...Option) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("index: absolute path: %w", err)
	}
	fsys := os.DirFS(filepath.Dir(absPath))
	idx, err := Load(ctx, fsys, filepath.Base(absPath))
	if err != nil {
		return nil, err
	}
	s := NewSupport(fsys, idx, opts...)
	return &Watcher{
		path:    absPath,
		support: s,
		logger:  s.logger,
		stopCh:  make(chan struct{}),
	}, nil
}

// Support returns the Support whose index is kept current.
func (w *Watcher) Support() *Support { return w.support }

// Reload reads the artifact again. On failure the current index is kept.
func (w *Watcher) Reload(ctx context.Context) error {
	w.logger.Info().Str("path", w.path).Msg("reloading schema index")

	idx, err := Load(ctx, w.support.fsys, filepath.Base(w.path))
	if err != nil {
		w.logger.Error().Err(err).Str("path", w.path).Msg("index reload failed, keeping old index")
		return fmt.Errorf("index: reload: %w", err)
	}

	old := w.support.Index()
	w.support.SetIndex(idx)
	if len(old) != len(idx) {
		w.logger.Info().Int("old", len(old)).Int("new", len(idx)).Msg("indexed URI count changed")
	}

	w.mu.RLock()
	callbacks := append([]func(Index){}, w.onChange...)
	w.mu.RUnlock()
	for _, fn := range callbacks {
		fn(idx)
	}
	return nil
}

// OnChange registers a callback run after every successful reload.
func (w *Watcher) OnChange(fn func(Index)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = append(w.onChange, fn)
}

// Watch starts reloading whenever the artifact is written or replaced.
func (w *Watcher) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("index: create watcher: %w", err)
	}
	// the directory survives editors that save by rename
	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("index: watch directory: %w", err)
	}
	w.mu.Lock()
	w.watcher = watcher
	w.mu.Unlock()

	go w.watchLoop(watcher)

	w.logger.Info().Str("path", w.path).Msg("watching schema index for changes")
	return nil
}

// Stop ends watching. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.mu.RLock()
		watcher := w.watcher
		w.mu.RUnlock()
		if watcher != nil {
			watcher.Close()
		}
	})
}

func (w *Watcher) watchLoop(watcher *fsnotify.Watcher) {
	filename := filepath.Base(w.path)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filename {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				w.logger.Debug().
					Str("event", event.Op.String()).
					Str("file", event.Name).
					Msg("schema index changed")

				if err := w.Reload(context.Background()); err != nil {
					w.logger.Error().Err(err).Msg("file watch reload failed")
				}
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error().Err(err).Msg("file watcher error")

		case <-w.stopCh:
			return
		}
	}
}
