package sqlite

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/styrkr/styrkr/internal/errors"
)

// schemaChange is one object whose live definition differs from the target. Empty SQL means the object does not
// exist on that side.
type schemaChange struct {
	name      string
	liveSQL   string
	targetSQL string
}

// migrate makes the live schema match target declaratively. The target schema is built in an attached in-memory
// database and compared with the live one through sqlite_schema. New tables are created, removed tables dropped
// and changed tables rebuilt with the columns both definitions share, following
// https://www.sqlite.org/lang_altertable.html#otheralter. Indexes and triggers are recreated when they differ.
func (db *Database) migrate(ctx context.Context, target string) (err error) {
	start := time.Now()
	detach, err := db.attachTarget(ctx, target)
	if err != nil {
		return err
	}
	defer detach()

	if _, err = db.ReadWrite.ExecContext(ctx, "PRAGMA foreign_keys = OFF"); err != nil {
		return fmt.Errorf("disable foreign keys: %w", err)
	}
	defer func() {
		if _, fkErr := db.ReadWrite.ExecContext(context.WithoutCancel(ctx), "PRAGMA foreign_keys = ON"); fkErr != nil {
			err = errors.Join(err, fmt.Errorf("enable foreign keys: %w", fkErr))
		}
	}()

	err = db.WithTx(ctx, func(tx *sql.Tx) error {
		if err := db.migrateTables(ctx, tx); err != nil {
			return err
		}
		for _, kind := range []string{"index", "trigger"} {
			if err := db.migrateObjects(ctx, tx, kind); err != nil {
				return err
			}
		}
		return checkForeignKeys(ctx, tx)
	})
	if err != nil {
		return err
	}
	db.logger.LogAttrs(ctx, slog.LevelInfo, "migrated database", slog.Duration("duration", time.Since(start)))
	return nil
}

// attachTarget creates the target schema in a fresh in-memory database and attaches it as schemaTarget.
func (db *Database) attachTarget(ctx context.Context, target string) (func(), error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", rand.Text())
	targetDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open target database: %w", err)
	}
	// The shared cache keeps the in-memory database alive while the writer has it attached.
	defer targetDB.Close()
	if _, err = targetDB.ExecContext(ctx, target); err != nil {
		return nil, fmt.Errorf("create target schema: %w", err)
	}
	if _, err = db.ReadWrite.ExecContext(ctx, "ATTACH DATABASE ? AS schemaTarget", dsn); err != nil {
		return nil, fmt.Errorf("attach target database: %w", err)
	}
	return func() {
		if _, err := db.ReadWrite.ExecContext(context.WithoutCancel(ctx), "DETACH DATABASE schemaTarget"); err != nil {
			db.logger.LogAttrs(ctx, slog.LevelError, "detach target database", errors.SlogError(err))
		}
	}, nil
}

func (db *Database) migrateTables(ctx context.Context, tx *sql.Tx) error {
	changes, err := queryChanges(ctx, tx, "table")
	if err != nil {
		return err
	}
	for _, c := range changes {
		var stmts []string
		switch {
		case c.targetSQL == "":
			stmts = []string{"DROP TABLE " + c.name}
		case c.liveSQL == "":
			stmts = []string{c.targetSQL}
		default:
			if stmts, err = rebuildTable(ctx, tx, c); err != nil {
				return err
			}
		}
		for _, stmt := range stmts {
			db.logger.LogAttrs(ctx, slog.LevelInfo, "migrating table",
				slog.String("table", c.name), slog.String("query", stmt))
			if _, err = tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("migrate table %s: %w", c.name, err)
			}
		}
	}
	return nil
}

// rebuildTable returns the statements replacing a changed table while keeping the data of shared columns.
func rebuildTable(ctx context.Context, tx *sql.Tx, c schemaChange) ([]string, error) {
	rows, err := tx.QueryContext(ctx, `SELECT live.name
FROM pragma_table_info(?1, 'main') AS live
         JOIN pragma_table_info(?1, 'schemaTarget') AS target ON live.name = target.name`, c.name)
	if err != nil {
		return nil, fmt.Errorf("query shared columns: %w", err)
	}
	columns, err := scanStrings(rows)
	if err != nil {
		return nil, fmt.Errorf("scan shared columns: %w", err)
	}
	temp := c.name + "_migration"
	shared := strings.Join(columns, ", ")
	stmts := []string{strings.Replace(c.targetSQL, c.name, temp, 1)}
	if shared != "" {
		stmts = append(stmts, fmt.Sprintf("INSERT INTO %s (%s) SELECT %s FROM %s", temp, shared, shared, c.name))
	}
	return append(stmts,
		"DROP TABLE "+c.name,
		fmt.Sprintf("ALTER TABLE %s RENAME TO %s", temp, c.name),
	), nil
}

// migrateObjects synchronises indexes or triggers. Run it after the tables since rebuilding a table drops them.
func (db *Database) migrateObjects(ctx context.Context, tx *sql.Tx, kind string) error {
	changes, err := queryChanges(ctx, tx, kind)
	if err != nil {
		return err
	}
	for _, c := range changes {
		if c.liveSQL != "" {
			if _, err = tx.ExecContext(ctx, fmt.Sprintf("DROP %s IF EXISTS %s", strings.ToUpper(kind), c.name)); err != nil {
				return fmt.Errorf("drop %s %s: %w", kind, c.name, err)
			}
		}
		if c.targetSQL != "" {
			db.logger.LogAttrs(ctx, slog.LevelInfo, "creating "+kind, slog.String("query", c.targetSQL))
			if _, err = tx.ExecContext(ctx, c.targetSQL); err != nil {
				return fmt.Errorf("create %s %s: %w", kind, c.name, err)
			}
		}
	}
	return nil
}

func queryChanges(ctx context.Context, tx *sql.Tx, kind string) ([]schemaChange, error) {
	// Renaming a table quotes its name in sqlite_schema, so quotes are ignored in the comparison.
	rows, err := tx.QueryContext(ctx, `WITH live AS (SELECT name, sql
              FROM main.sqlite_schema
              WHERE type = ?1 AND sql IS NOT NULL AND name NOT LIKE 'sqlite_%'),
     target AS (SELECT name, sql
                FROM schemaTarget.sqlite_schema
                WHERE type = ?1 AND sql IS NOT NULL AND name NOT LIKE 'sqlite_%')
SELECT COALESCE(live.name, target.name), COALESCE(live.sql, ''), COALESCE(target.sql, '')
FROM live
         FULL OUTER JOIN target ON live.name = target.name
WHERE REPLACE(COALESCE(live.sql, ''), '"', '') <> REPLACE(COALESCE(target.sql, ''), '"', '')
ORDER BY 1`, kind)
	if err != nil {
		return nil, fmt.Errorf("query %s changes: %w", kind, err)
	}
	defer rows.Close()
	var changes []schemaChange
	for rows.Next() {
		var c schemaChange
		if err = rows.Scan(&c.name, &c.liveSQL, &c.targetSQL); err != nil {
			return nil, fmt.Errorf("scan %s change: %w", kind, err)
		}
		changes = append(changes, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s changes: %w", kind, err)
	}
	return changes, nil
}

func checkForeignKeys(ctx context.Context, tx *sql.Tx) error {
	rows, err := tx.QueryContext(ctx, "SELECT \"table\" FROM pragma_foreign_key_check")
	if err != nil {
		return fmt.Errorf("foreign key check: %w", err)
	}
	violations, err := scanStrings(rows)
	if err != nil {
		return fmt.Errorf("scan foreign key check: %w", err)
	}
	if len(violations) > 0 {
		return errors.New("foreign key violations after migration",
			slog.String("tables", strings.Join(violations, ",")))
	}
	return nil
}

func scanStrings(rows *sql.Rows) ([]string, error) {
	defer rows.Close()
	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err //nolint:wrapcheck // callers wrap.
		}
		out = append(out, s)
	}
	return out, rows.Err() //nolint:wrapcheck // callers wrap.
}
