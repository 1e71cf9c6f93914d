// Package content loads the static documents the program engine runs on: the exercise library and the program
// template. Documents come from an optional directory or from the defaults embedded in the binary, are validated
// on load and can be hot reloaded.
package content

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/styrkr/styrkr/internal/errors"
	"github.com/styrkr/styrkr/internal/library"
	"github.com/styrkr/styrkr/internal/plan"
)

const (
	LibraryFile  = "exercises.latest.json"
	TemplateFile = "plan.template.json"
)

//go:embed defaults/*.json
var defaultsFS embed.FS

// Snapshot is a consistent pair of documents. Snapshots are immutable.
type Snapshot struct {
	Library  *library.Library
	Template *plan.Template
	LoadedAt time.Time
}

// sameVersion reports whether o carries the same document versions as s.
func (s *Snapshot) sameVersion(o *Snapshot) bool {
	return s.Library.Version == o.Library.Version && s.Library.ETag == o.Library.ETag &&
		s.Template.Version == o.Template.Version
}

// Store holds the current [Snapshot]. It is safe for concurrent use.
type Store struct {
	dir      string
	fsys     fs.FS
	logger   *slog.Logger
	group    singleflight.Group
	current  atomic.Pointer[Snapshot]
	debounce time.Duration
}

// NewStore loads the documents from dir, or the embedded defaults when dir is empty.
func NewStore(ctx context.Context, logger *slog.Logger, dir string) (*Store, error) {
	var fsys fs.FS
	if dir == "" {
		sub, err := fs.Sub(defaultsFS, "defaults")
		if err != nil {
			return nil, fmt.Errorf("open embedded defaults: %w", err)
		}
		fsys = sub
	} else {
		fsys = os.DirFS(dir)
	}
	s := &Store{
		dir:      dir,
		fsys:     fsys,
		logger:   logger,
		group:    singleflight.Group{},
		current:  atomic.Pointer[Snapshot]{},
		debounce: 250 * time.Millisecond, //nolint:mnd // editors write files in bursts.
	}
	if _, err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Snapshot returns the current documents.
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

func (s *Store) Library() *library.Library {
	return s.Snapshot().Library
}

func (s *Store) Template() *plan.Template {
	return s.Snapshot().Template
}

// Reload reads and validates both documents. Concurrent calls share one load. The current snapshot is kept when
// loading fails or when the versions did not change.
func (s *Store) Reload(ctx context.Context) (*Snapshot, error) {
	v, err, _ := s.group.Do("reload", func() (any, error) {
		next, err := load(s.fsys)
		if err != nil {
			return nil, err
		}
		prev := s.current.Load()
		if prev != nil && prev.sameVersion(next) {
			s.logger.LogAttrs(ctx, slog.LevelDebug, "content unchanged",
				slog.String("library_version", prev.Library.Version))
			return prev, nil
		}
		s.current.Store(next)
		s.logger.LogAttrs(ctx, slog.LevelInfo, "content loaded",
			slog.String("library_version", next.Library.Version),
			slog.String("library_etag", next.Library.ETag),
			slog.String("template_version", next.Template.Version),
			slog.Int("exercises", len(next.Library.Exercises)))
		return next, nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "reload content", slog.String("dir", s.dir))
	}
	snapshot, _ := v.(*Snapshot)
	return snapshot, nil
}

func load(fsys fs.FS) (*Snapshot, error) {
	libData, err := fs.ReadFile(fsys, LibraryFile)
	if err != nil {
		return nil, fmt.Errorf("read library: %w", err)
	}
	lib, err := library.Parse(libData)
	if err != nil {
		return nil, fmt.Errorf("parse library: %w", err)
	}
	tmplData, err := fs.ReadFile(fsys, TemplateFile)
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}
	tmpl, err := plan.Parse(tmplData)
	if err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}
	return &Snapshot{Library: lib, Template: tmpl, LoadedAt: time.Now()}, nil
}
