package workout

import (
	"context"
	"fmt"

	"github.com/styrkr/styrkr/internal/contexthelpers"
	"github.com/styrkr/styrkr/internal/program"
)

// sqliteProgramRepository stores the frozen program as a JSON document so later reads return the same picks.
type sqliteProgramRepository struct {
	baseRepository
}

// Get returns the stored program or [ErrNotFound].
func (r *sqliteProgramRepository) Get(ctx context.Context) (*program.Program, error) {
	userID := contexthelpers.AuthenticatedUserID(ctx)

	var document string
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT document
		FROM programs
		WHERE user_id = ?`, userID).Scan(&document)
	if err != nil {
		return nil, notFound(err, "query program")
	}

	var prog program.Program
	if err = scanDocument(document, &prog); err != nil {
		return nil, fmt.Errorf("scan program: %w", err)
	}
	return &prog, nil
}

// Set replaces the stored program.
func (r *sqliteProgramRepository) Set(ctx context.Context, ex execer, prog *program.Program) error {
	userID := contexthelpers.AuthenticatedUserID(ctx)

	document, err := marshalDocument(prog)
	if err != nil {
		return err
	}
	_, err = ex.ExecContext(ctx, `
		INSERT INTO programs (user_id, start_date, document, generated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			start_date = excluded.start_date,
			document = excluded.document,
			generated_at = excluded.generated_at`,
		userID, prog.StartDate.String(), document, formatTimestamp(prog.GeneratedAt))
	if err != nil {
		return fmt.Errorf("upsert program: %w", err)
	}
	return nil
}

// Delete drops the stored program. Deleting a missing program is not an error.
func (r *sqliteProgramRepository) Delete(ctx context.Context, ex execer) error {
	userID := contexthelpers.AuthenticatedUserID(ctx)

	if _, err := ex.ExecContext(ctx, `DELETE FROM programs WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("delete program: %w", err)
	}
	return nil
}
