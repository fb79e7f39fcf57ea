package fingerprint

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// CatalogWatcher watches custom catalog files and calls a reload function when one of
// them changes. Rapid successive writes are coalesced into one reload.
type CatalogWatcher struct {
	files   map[string]struct{}
	dirs    []string
	reload  func() error
	watcher *fsnotify.Watcher

	debounceDelay time.Duration
	logger        zerolog.Logger

	mu            sync.Mutex
	debounceTimer *time.Timer
}

// NewCatalogWatcher creates a watcher for paths. Empty paths are ignored; at least one
// path is required.
func NewCatalogWatcher(paths []string, reload func() error, logger zerolog.Logger) (*CatalogWatcher, error) {
	files := make(map[string]struct{})
	dirSet := make(map[string]struct{})
	var dirs []string
	for _, p := range paths {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, err
		}
		files[abs] = struct{}{}
		dir := filepath.Dir(abs)
		if _, ok := dirSet[dir]; !ok {
			dirSet[dir] = struct{}{}
			dirs = append(dirs, dir)
		}
	}
	if len(files) == 0 {
		return nil, errors.New("no catalog files to watch")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &CatalogWatcher{
		files:         files,
		dirs:          dirs,
		reload:        reload,
		watcher:       watcher,
		debounceDelay: 100 * time.Millisecond,
		logger:        logger.With().Str("component", "catalog.watcher").Logger(),
	}, nil
}

// Start watches until ctx is canceled. fsnotify watches directories, so events for other
// files in the same directories are ignored.
func (w *CatalogWatcher) Start(ctx context.Context) error {
	for _, dir := range w.dirs {
		if err := w.watcher.Add(dir); err != nil {
			w.logger.Error().Err(err).Str("dir", dir).Msg("Failed to watch catalog directory")
			return err
		}
	}

	w.logger.Info().
		Int("files", len(w.files)).
		Dur("debounce", w.debounceDelay).
		Msg("Started watching catalog files")

	defer func() {
		w.mu.Lock()
		if w.debounceTimer != nil {
			w.debounceTimer.Stop()
		}
		w.mu.Unlock()
		if err := w.watcher.Close(); err != nil {
			w.logger.Warn().Err(err).Msg("Error closing watcher")
		}
		w.logger.Info().Msg("Stopped watching catalog files")
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if _, watched := w.files[filepath.Clean(event.Name)]; !watched {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				w.logger.Debug().
					Str("op", event.Op.String()).
					Str("file", event.Name).
					Msg("Detected catalog file change")
				w.scheduleReload()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn().Err(err).Msg("File watcher error")
		}
	}
}

func (w *CatalogWatcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debounceDelay, func() {
		if err := w.reload(); err != nil {
			w.logger.Error().Err(err).Msg("Failed to reload catalog; keeping previous catalog")
			return
		}
		w.logger.Info().Msg("Catalog reloaded")
	})
}

// Close stops the watcher and releases resources.
func (w *CatalogWatcher) Close() error {
	return w.watcher.Close()
}
