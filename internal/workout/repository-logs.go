package workout

import (
	"context"
	"fmt"

	"github.com/styrkr/styrkr/internal/calendar"
	"github.com/styrkr/styrkr/internal/contexthelpers"
	"github.com/styrkr/styrkr/internal/program"
)

type sqliteLogRepository struct {
	baseRepository
}

// Add stores entry. The entry must carry its id.
func (r *sqliteLogRepository) Add(ctx context.Context, entry program.WorkoutLogEntry) error {
	userID := contexthelpers.AuthenticatedUserID(ctx)

	document, err := marshalDocument(entry)
	if err != nil {
		return err
	}
	_, err = r.db.ReadWrite.ExecContext(ctx, `
		INSERT INTO workout_logs (id, user_id, workout_date, session_id, program_week, document)
		VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ID, userID, entry.WorkoutDate.String(), entry.SessionID, entry.ProgramWeek, document)
	if err != nil {
		return fmt.Errorf("insert workout log: %w", err)
	}
	return nil
}

// List returns the entries logged between from and to inclusive, ordered by date and insertion time.
func (r *sqliteLogRepository) List(ctx context.Context, from, to calendar.Date) (_ []program.WorkoutLogEntry,
	err error) {
	userID := contexthelpers.AuthenticatedUserID(ctx)

	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT document
		FROM workout_logs
		WHERE user_id = ? AND workout_date BETWEEN ? AND ?
		ORDER BY workout_date, created`, userID, from.String(), to.String())
	if err != nil {
		return nil, fmt.Errorf("query workout logs: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", closeErr)
		}
	}()

	entries := []program.WorkoutLogEntry{}
	for rows.Next() {
		var (
			document string
			entry    program.WorkoutLogEntry
		)
		if err = rows.Scan(&document); err != nil {
			return nil, fmt.Errorf("scan workout log: %w", err)
		}
		if err = scanDocument(document, &entry); err != nil {
			return nil, fmt.Errorf("scan workout log: %w", err)
		}
		entries = append(entries, entry)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate workout logs: %w", err)
	}
	return entries, nil
}

// CompletedDates returns the distinct dates with at least one logged workout between from and to inclusive.
func (r *sqliteLogRepository) CompletedDates(ctx context.Context, from, to calendar.Date) (_ []calendar.Date,
	err error) {
	userID := contexthelpers.AuthenticatedUserID(ctx)

	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT DISTINCT workout_date
		FROM workout_logs
		WHERE user_id = ? AND workout_date BETWEEN ? AND ?`, userID, from.String(), to.String())
	if err != nil {
		return nil, fmt.Errorf("query completed dates: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", closeErr)
		}
	}()

	var dates []calendar.Date
	for rows.Next() {
		var (
			s string
			d calendar.Date
		)
		if err = rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan completed date: %w", err)
		}
		if d, err = calendar.Parse(s); err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate completed dates: %w", err)
	}
	return dates, nil
}
