package catalog

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce coalesces the burst of events editors emit on save
const DefaultDebounce = 200 * time.Millisecond

// Watcher reloads a Store whenever its catalog file changes on disk
type Watcher struct {
	store    *Store
	watcher  *fsnotify.Watcher
	target   string
	debounce time.Duration
	onReload func()
	logger   zerolog.Logger
}

// NewWatcher creates a watcher for store's file. onReload runs after every
// successful reload and may be nil.
func NewWatcher(store *Store, onReload func(), logger zerolog.Logger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	target, err := filepath.Abs(store.Path())
	if err != nil {
		w.Close()
		return nil, err
	}

	return &Watcher{
		store:    store,
		watcher:  w,
		target:   target,
		debounce: DefaultDebounce,
		onReload: onReload,
		logger:   logger.With().Str("component", "catalog_watcher").Logger(),
	}, nil
}

// Run blocks until ctx is cancelled, reloading the store on change.
// The parent directory is watched so atomic renames by editors are seen.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.watcher.Add(filepath.Dir(w.target)); err != nil {
		return err
	}
	w.logger.Info().Str("path", w.target).Msg("watching catalog")

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			pending = time.After(w.debounce)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn().Err(err).Msg("watch error")
		case <-pending:
			pending = nil
			w.reload()
		}
	}
}

// Close stops the underlying fsnotify watcher
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	name, err := filepath.Abs(event.Name)
	if err != nil || name != w.target {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}

func (w *Watcher) reload() {
	if err := w.store.Reload(); err != nil {
		w.logger.Error().Err(err).Msg("catalog reload failed, keeping previous data")
		return
	}
	if w.onReload != nil {
		w.onReload()
	}
}
