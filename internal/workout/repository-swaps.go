package workout

import (
	"context"
	"fmt"

	"github.com/styrkr/styrkr/internal/calendar"
	"github.com/styrkr/styrkr/internal/contexthelpers"
	"github.com/styrkr/styrkr/internal/schedule"
)

// sqliteSwapRepository persists the schedule overlay, one row per overridden date.
type sqliteSwapRepository struct {
	baseRepository
}

// Get returns the overlay. A user without swaps gets an empty overlay.
func (r *sqliteSwapRepository) Get(ctx context.Context) (_ schedule.Overlay, err error) {
	userID := contexthelpers.AuthenticatedUserID(ctx)

	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT date, kind, session_id, source_date
		FROM schedule_swaps
		WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("query schedule swaps: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", closeErr)
		}
	}()

	overlay := schedule.Overlay{}
	for rows.Next() {
		var (
			date, source string
			d            calendar.Date
			ref          schedule.SessionRef
		)
		if err = rows.Scan(&date, &ref.Kind, &ref.SessionID, &source); err != nil {
			return nil, fmt.Errorf("scan schedule swap: %w", err)
		}
		d, err = calendar.Parse(date)
		if err != nil {
			return nil, err
		}
		if ref.SourceDate, err = calendar.Parse(source); err != nil {
			return nil, err
		}
		overlay[d] = ref
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate schedule swaps: %w", err)
	}
	return overlay, nil
}

// Replace stores overlay in place of the current one.
func (r *sqliteSwapRepository) Replace(ctx context.Context, ex execer, overlay schedule.Overlay) error {
	userID := contexthelpers.AuthenticatedUserID(ctx)

	if _, err := ex.ExecContext(ctx, `DELETE FROM schedule_swaps WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("delete schedule swaps: %w", err)
	}
	for d, ref := range overlay {
		_, err := ex.ExecContext(ctx, `
			INSERT INTO schedule_swaps (user_id, date, kind, session_id, source_date)
			VALUES (?, ?, ?, ?, ?)`,
			userID, d.String(), ref.Kind, ref.SessionID, ref.SourceDate.String())
		if err != nil {
			return fmt.Errorf("insert schedule swap %s: %w", d, err)
		}
	}
	return nil
}
