package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"medication-reminders/internal/domain/reminders"
	"medication-reminders/internal/domain/timespec"
)

type RemindersRepo struct {
	db *sql.DB
}

func NewRemindersRepo(db *sql.DB) *RemindersRepo {
	return &RemindersRepo{db: db}
}

func (r *RemindersRepo) Create(ctx context.Context, rec reminders.Record) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO reminders (
			id, user_id, medication_id,
			medication_name, dosage, reminder_time,
			active, created_at, last_triggered, next_trigger
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`,
		rec.ID,
		rec.UserID,
		rec.MedicationID,
		rec.MedicationName,
		rec.Dosage,
		rec.Time.String(),
		rec.Active,
		rec.CreatedAt,
		toNullTime(rec.LastTriggered),
		toNullTime(rec.NextTrigger),
	)
	return err
}

func (r *RemindersRepo) ListByMedication(ctx context.Context, medicationID string) ([]reminders.Record, error) {
	return r.query(ctx, `
		SELECT
			id, user_id, medication_id,
			medication_name, dosage, reminder_time,
			active, created_at, last_triggered, next_trigger
		FROM reminders
		WHERE medication_id = $1
		ORDER BY reminder_time ASC
	`, strings.TrimSpace(medicationID))
}

func (r *RemindersRepo) ListByUser(ctx context.Context, userID string) ([]reminders.Record, error) {
	return r.query(ctx, `
		SELECT
			id, user_id, medication_id,
			medication_name, dosage, reminder_time,
			active, created_at, last_triggered, next_trigger
		FROM reminders
		WHERE user_id = $1
		ORDER BY medication_id ASC, reminder_time ASC
	`, strings.TrimSpace(userID))
}

func (r *RemindersRepo) DeleteByMedication(ctx context.Context, medicationID string) (int, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reminders WHERE medication_id = $1`, medicationID)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (r *RemindersRepo) MarkTriggered(ctx context.Context, medicationID string, t timespec.TimeSpec, at, next time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE reminders
		SET last_triggered = $3, next_trigger = $4
		WHERE medication_id = $1 AND reminder_time = $2
	`, medicationID, t.String(), at, next)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return reminders.ErrNotFound
	}
	return nil
}

func (r *RemindersRepo) query(ctx context.Context, q string, args ...any) ([]reminders.Record, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]reminders.Record, 0)
	for rows.Next() {
		var (
			rec       reminders.Record
			raw       string
			last, nxt sql.NullTime
		)
		if err := rows.Scan(
			&rec.ID,
			&rec.UserID,
			&rec.MedicationID,
			&rec.MedicationName,
			&rec.Dosage,
			&raw,
			&rec.Active,
			&rec.CreatedAt,
			&last,
			&nxt,
		); err != nil {
			return nil, err
		}

		t, err := timespec.Parse(raw)
		if err != nil {
			return nil, err
		}
		rec.Time = t
		rec.LastTriggered = fromNullTime(last)
		rec.NextTrigger = fromNullTime(nxt)

		out = append(out, rec)
	}
	return out, rows.Err()
}

func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func fromNullTime(n sql.NullTime) *time.Time {
	if !n.Valid {
		return nil
	}
	t := n.Time
	return &t
}
