// Package sqlite opens the application database and keeps its schema in sync with schema.sql.
package sqlite

import (
	"context"
	"crypto/rand"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/styrkr/styrkr/internal/errors"
)

//go:embed schema.sql
var schemaDefinition string

// Database holds a single-connection writer and a pool of readers to the same SQLite database.
type Database struct {
	ReadWrite *sql.DB
	ReadOnly  *sql.DB
	logger    *slog.Logger
}

// NewDatabase connects to the database at url, migrates it to schema.sql and starts the background optimizer,
// which stops with ctx.
//
// Use ":memory:" for a private in-memory database, handy for tests.
func NewDatabase(ctx context.Context, url string, logger *slog.Logger) (*Database, error) {
	db, err := connect(ctx, url, logger)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err = db.migrate(ctx, schemaDefinition); err != nil {
		return nil, errors.Join(fmt.Errorf("migrate: %w", err), db.Close())
	}
	// 0x10002 analyzes every table once, as recommended for long-lived connections.
	db.optimize(ctx, "PRAGMA optimize = 0x10002;")
	go db.optimizePeriodically(ctx, time.Hour)
	return db, nil
}

//nolint:gochecknoglobals // the driver may be registered only once per process.
var registerDriver sync.Once

const driverName = "sqlite3styrkr"

func register() {
	sql.Register(driverName, &sqlite3.SQLiteDriver{
		Extensions: nil,
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			// Temporary tables in memory and memory-mapped I/O save syscalls.
			const pragmas = "PRAGMA temp_store = memory; PRAGMA mmap_size = 30000000000;"
			if _, err := conn.Exec(pragmas, nil); err != nil {
				return fmt.Errorf("exec connection pragmas: %w", err)
			}
			return nil
		},
	})
}

// dsnOptions are documented at https://pkg.go.dev/github.com/mattn/go-sqlite3#SQLiteDriver.Open.
//
//nolint:gochecknoglobals // constant option list.
var dsnOptions = []string{
	"_loc=auto",
	"_defer_foreign_keys=1",
	"_journal_mode=wal",
	"_busy_timeout=5000",
	"_synchronous=normal",
	"_foreign_keys=on",
}

func connect(ctx context.Context, url string, logger *slog.Logger) (*Database, error) {
	// Both pools must reach the same in-memory database, so it needs a unique name and a shared cache.
	var memory string
	if strings.Contains(url, ":memory:") {
		url = rand.Text()
		memory = "&mode=memory&cache=shared"
	}
	options := strings.Join(dsnOptions, "&")
	writerDSN := fmt.Sprintf("file:%s?mode=rwc&_txlock=immediate&%s%s", url, options, memory)
	readerDSN := fmt.Sprintf("file:%s?mode=ro&_txlock=deferred&_query_only=true&%s%s", url, options, memory)

	registerDriver.Do(register)

	writer, err := sql.Open(driverName, writerDSN)
	if err != nil {
		return nil, fmt.Errorf("open writer: %w", err)
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "opened database", slog.String("sqlDsn", writerDSN))
	writer.SetMaxOpenConns(1)
	writer.SetMaxIdleConns(1)
	writer.SetConnMaxLifetime(time.Hour)
	writer.SetConnMaxIdleTime(time.Hour)
	// sql.Open is lazy. The in-memory database only exists once a connection is held.
	if err = writer.PingContext(ctx); err != nil {
		return nil, errors.Join(fmt.Errorf("ping writer: %w", err), writer.Close())
	}

	reader, err := sql.Open(driverName, readerDSN)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("open reader: %w", err), writer.Close())
	}
	const readers = 10
	reader.SetMaxOpenConns(readers)
	reader.SetMaxIdleConns(readers)
	reader.SetConnMaxLifetime(time.Hour)
	reader.SetConnMaxIdleTime(time.Hour)

	return &Database{ReadWrite: writer, ReadOnly: reader, logger: logger}, nil
}

// WithTx runs fn inside a write transaction, committing when fn returns nil.
func (db *Database) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer db.rollback(ctx, tx)
	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (db *Database) rollback(ctx context.Context, tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		db.logger.LogAttrs(ctx, slog.LevelError, "rollback failed", errors.SlogError(err))
	}
}

// Close closes both pools.
func (db *Database) Close() error {
	return errors.Join(db.ReadOnly.Close(), db.ReadWrite.Close())
}
