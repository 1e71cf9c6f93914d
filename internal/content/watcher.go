package content

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/styrkr/styrkr/internal/errors"
)

// Watch reloads the documents whenever they change on disk until ctx is done. Bursts of events are collapsed
// into a single reload. Watching the embedded defaults is a no-op.
func (s *Store) Watch(ctx context.Context) error {
	if s.dir == "" {
		<-ctx.Done()
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory rather than the files so that atomic renames by editors are seen.
	if err = watcher.Add(s.dir); err != nil {
		return fmt.Errorf("watch %s: %w", s.dir, err)
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "watching content", slog.String("dir", s.dir))

	timer := time.NewTimer(s.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(event) {
				continue
			}
			s.logger.LogAttrs(ctx, slog.LevelDebug, "content changed",
				slog.String("file", event.Name), slog.String("op", event.Op.String()))
			timer.Reset(s.debounce)
		case <-timer.C:
			if _, err = s.Reload(ctx); err != nil {
				s.logger.LogAttrs(ctx, slog.LevelError, "keeping previous content", errors.SlogError(err))
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.LogAttrs(ctx, slog.LevelError, "content watcher", errors.SlogError(err))
		}
	}
}

func relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Base(event.Name)
	return name == LibraryFile || name == TemplateFile
}
