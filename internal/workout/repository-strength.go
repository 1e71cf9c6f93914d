package workout

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/styrkr/styrkr/internal/contexthelpers"
	"github.com/styrkr/styrkr/internal/strength"
)

type sqliteStrengthRepository struct {
	baseRepository
}

// Get returns the strength record including its history, oldest first, or [ErrNotFound].
func (r *sqliteStrengthRepository) Get(ctx context.Context) (_ strength.Data, err error) {
	userID := contexthelpers.AuthenticatedUserID(ctx)

	var (
		data      strength.Data
		updatedAt string
	)
	err = r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT squat_1rm, bench_1rm, deadlift_1rm, ohp_1rm,
		       tm_percent, tm_rounding,
		       squat_tm, bench_tm, deadlift_tm, ohp_tm,
		       updated_at
		FROM strength
		WHERE user_id = ?`, userID).Scan(
		&data.OneRepMaxes.Squat, &data.OneRepMaxes.Bench, &data.OneRepMaxes.Deadlift, &data.OneRepMaxes.OHP,
		&data.TMPolicy.Percent, &data.TMPolicy.Rounding,
		&data.TrainingMaxes.Squat, &data.TrainingMaxes.Bench, &data.TrainingMaxes.Deadlift, &data.TrainingMaxes.OHP,
		&updatedAt,
	)
	if err != nil {
		return strength.Data{}, notFound(err, "query strength")
	}
	if data.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return strength.Data{}, err
	}

	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT recorded_on,
		       squat_1rm, bench_1rm, deadlift_1rm, ohp_1rm,
		       squat_tm, bench_tm, deadlift_tm, ohp_tm
		FROM strength_history
		WHERE user_id = ?
		ORDER BY id`, userID)
	if err != nil {
		return strength.Data{}, fmt.Errorf("query strength history: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", closeErr)
		}
	}()

	for rows.Next() {
		var (
			entry      strength.HistoryEntry
			recordedOn string
		)
		if err = rows.Scan(&recordedOn,
			&entry.OneRepMaxes.Squat, &entry.OneRepMaxes.Bench, &entry.OneRepMaxes.Deadlift, &entry.OneRepMaxes.OHP,
			&entry.TrainingMaxes.Squat, &entry.TrainingMaxes.Bench, &entry.TrainingMaxes.Deadlift,
			&entry.TrainingMaxes.OHP); err != nil {
			return strength.Data{}, fmt.Errorf("scan strength history: %w", err)
		}
		if entry.Date, err = parseTimestamp(recordedOn); err != nil {
			return strength.Data{}, err
		}
		data.History = append(data.History, entry)
	}
	if err = rows.Err(); err != nil {
		return strength.Data{}, fmt.Errorf("iterate strength history: %w", err)
	}
	return data, nil
}

// Set replaces the current record with data and appends its newest history entry.
func (r *sqliteStrengthRepository) Set(ctx context.Context, tx *sql.Tx, data strength.Data) error {
	userID := contexthelpers.AuthenticatedUserID(ctx)

	orm, tms := data.OneRepMaxes, data.TrainingMaxes
	_, err := tx.ExecContext(ctx, `
		INSERT INTO strength (user_id, squat_1rm, bench_1rm, deadlift_1rm, ohp_1rm, tm_percent, tm_rounding,
		                      squat_tm, bench_tm, deadlift_tm, ohp_tm, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			squat_1rm = excluded.squat_1rm,
			bench_1rm = excluded.bench_1rm,
			deadlift_1rm = excluded.deadlift_1rm,
			ohp_1rm = excluded.ohp_1rm,
			tm_percent = excluded.tm_percent,
			tm_rounding = excluded.tm_rounding,
			squat_tm = excluded.squat_tm,
			bench_tm = excluded.bench_tm,
			deadlift_tm = excluded.deadlift_tm,
			ohp_tm = excluded.ohp_tm,
			updated_at = excluded.updated_at`,
		userID, orm.Squat, orm.Bench, orm.Deadlift, orm.OHP, data.TMPolicy.Percent, data.TMPolicy.Rounding,
		tms.Squat, tms.Bench, tms.Deadlift, tms.OHP, formatTimestamp(data.UpdatedAt))
	if err != nil {
		return fmt.Errorf("upsert strength: %w", err)
	}

	if len(data.History) == 0 {
		return nil
	}
	latest := data.History[len(data.History)-1]
	_, err = tx.ExecContext(ctx, `
		INSERT INTO strength_history (user_id, recorded_on, squat_1rm, bench_1rm, deadlift_1rm, ohp_1rm,
		                              squat_tm, bench_tm, deadlift_tm, ohp_tm)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, formatTimestamp(latest.Date),
		latest.OneRepMaxes.Squat, latest.OneRepMaxes.Bench, latest.OneRepMaxes.Deadlift, latest.OneRepMaxes.OHP,
		latest.TrainingMaxes.Squat, latest.TrainingMaxes.Bench, latest.TrainingMaxes.Deadlift,
		latest.TrainingMaxes.OHP)
	if err != nil {
		return fmt.Errorf("insert strength history: %w", err)
	}
	return nil
}
