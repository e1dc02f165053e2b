package scripts

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const (
	// DefaultDebounce is the quiet period before a rescan after changes.
	DefaultDebounce = 250 * time.Millisecond

	errorCreateWatcherFormat  = "create directory watcher: %w"
	errorWatchDirectoryFormat = "watch scripts directory %s: %w"
)

// ChangeHandler receives the script list after every rescan.
type ChangeHandler func([]Descriptor)

// Watcher rescans a catalog when scripts are created, changed, removed or renamed.
type Watcher struct {
	catalog  Catalog
	logger   *zap.Logger
	debounce time.Duration
	onChange ChangeHandler
}

// NewWatcher builds a watcher. A non-positive debounce uses DefaultDebounce.
func NewWatcher(catalog Catalog, logger *zap.Logger, debounce time.Duration, onChange ChangeHandler) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{catalog: catalog, logger: logger, debounce: debounce, onChange: onChange}
}

// Run delivers an initial scan and then one scan per burst of changes until
// ctx is cancelled.
func (watcher *Watcher) Run(ctx context.Context) error {
	fileWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf(errorCreateWatcherFormat, err)
	}
	defer fileWatcher.Close()

	if err := fileWatcher.Add(watcher.catalog.Directory); err != nil {
		return fmt.Errorf(errorWatchDirectoryFormat, watcher.catalog.Directory, err)
	}
	watcher.logger.Debug("watching scripts directory", zap.String("directory", watcher.catalog.Directory))

	if err := watcher.rescan(ctx); err != nil {
		return err
	}

	timer := time.NewTimer(watcher.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fileWatcher.Events:
			if !ok {
				return nil
			}
			if !watcher.relevant(event) {
				continue
			}
			watcher.logger.Debug("script change", zap.String("path", event.Name), zap.String("op", event.Op.String()))
			timer.Reset(watcher.debounce)
		case watchErr, ok := <-fileWatcher.Errors:
			if !ok {
				return nil
			}
			watcher.logger.Warn("directory watcher error", zap.Error(watchErr))
		case <-timer.C:
			if err := watcher.rescan(ctx); err != nil {
				return err
			}
		}
	}
}

func (watcher *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	return strings.EqualFold(filepath.Ext(event.Name), watcher.catalog.extension())
}

func (watcher *Watcher) rescan(ctx context.Context) error {
	descriptors, err := watcher.catalog.List(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		if errors.Is(err, ErrDirectoryNotFound) {
			watcher.logger.Warn("scripts directory disappeared", zap.String("directory", watcher.catalog.Directory))
		}
		return err
	}
	if watcher.onChange != nil {
		watcher.onChange(descriptors)
	}
	return nil
}
