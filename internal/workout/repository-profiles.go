package workout

import (
	"context"
	"fmt"
	"time"

	"github.com/styrkr/styrkr/internal/contexthelpers"
	"github.com/styrkr/styrkr/internal/profile"
)

type sqliteProfileRepository struct {
	baseRepository
}

// Get returns the authenticated user's profile or [ErrNotFound] before onboarding.
func (r *sqliteProfileRepository) Get(ctx context.Context) (profile.Profile, error) {
	userID := contexthelpers.AuthenticatedUserID(ctx)

	var document string
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT document
		FROM profiles
		WHERE user_id = ?`, userID).Scan(&document)
	if err != nil {
		return profile.Profile{}, notFound(err, "query profile")
	}

	var p profile.Profile
	if err = scanDocument(document, &p); err != nil {
		return profile.Profile{}, fmt.Errorf("scan profile: %w", err)
	}
	return p, nil
}

// Set stores p through ex, which lets callers include it in a transaction.
func (r *sqliteProfileRepository) Set(ctx context.Context, ex execer, p profile.Profile, now time.Time) error {
	userID := contexthelpers.AuthenticatedUserID(ctx)

	document, err := marshalDocument(p)
	if err != nil {
		return err
	}
	_, err = ex.ExecContext(ctx, `
		INSERT INTO profiles (user_id, document, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			document = excluded.document,
			updated_at = excluded.updated_at`,
		userID, document, formatTimestamp(now))
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}
