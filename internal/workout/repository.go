package workout

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/styrkr/styrkr/internal/errors"
	"github.com/styrkr/styrkr/internal/sqlite"
)

// ErrNotFound is returned when the requested record does not exist for the authenticated user.
var ErrNotFound = errors.NewSentinel("not found")

// ErrValidation is returned for malformed service input such as an inverted date range.
var ErrValidation = errors.NewSentinel("invalid input")

const timestampFormat = "2006-01-02T15:04:05.000Z"

// repository bundles the per-aggregate repositories. All of them read the user from the context.
type repository struct {
	users    *sqliteUserRepository
	profiles *sqliteProfileRepository
	strength *sqliteStrengthRepository
	programs *sqliteProgramRepository
	swaps    *sqliteSwapRepository
	logs     *sqliteLogRepository
}

type repositoryFactory struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func newRepositoryFactory(db *sqlite.Database, logger *slog.Logger) *repositoryFactory {
	return &repositoryFactory{db: db, logger: logger}
}

func (f *repositoryFactory) newRepository() *repository {
	base := newBaseRepository(f.db, f.logger)
	return &repository{
		users:    &sqliteUserRepository{baseRepository: base},
		profiles: &sqliteProfileRepository{baseRepository: base},
		strength: &sqliteStrengthRepository{baseRepository: base},
		programs: &sqliteProgramRepository{baseRepository: base},
		swaps:    &sqliteSwapRepository{baseRepository: base},
		logs:     &sqliteLogRepository{baseRepository: base},
	}
}

type baseRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func newBaseRepository(db *sqlite.Database, logger *slog.Logger) baseRepository {
	return baseRepository{db: db, logger: logger}
}

// notFound maps [sql.ErrNoRows] to [ErrNotFound] and wraps everything else with msg.
func notFound(err error, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampFormat)
}

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(timestampFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

// scanDocument decodes a JSON column into v.
func scanDocument(document string, v any) error {
	if err := json.Unmarshal([]byte(document), v); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	return nil
}

func marshalDocument(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}
	return string(b), nil
}

// execer is implemented by both [*sql.DB] and [*sql.Tx].
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}
