package sqlite

import (
	"context"
	"database/sql"
	"time"

	"medication-reminders/internal/domain/reminders"
	"medication-reminders/internal/domain/timespec"

	"github.com/jmoiron/sqlx"
)

type reminderRow struct {
	ID             string       `db:"id"`
	UserID         string       `db:"user_id"`
	MedicationID   string       `db:"medication_id"`
	MedicationName string       `db:"medication_name"`
	Dosage         string       `db:"dosage"`
	ReminderTime   string       `db:"reminder_time"`
	Active         bool         `db:"active"`
	CreatedAt      time.Time    `db:"created_at"`
	LastTriggered  sql.NullTime `db:"last_triggered"`
	NextTrigger    sql.NullTime `db:"next_trigger"`
}

func (r reminderRow) toDomain() (reminders.Record, error) {
	t, err := timespec.Parse(r.ReminderTime)
	if err != nil {
		return reminders.Record{}, err
	}
	rec := reminders.Record{
		ID:             r.ID,
		UserID:         r.UserID,
		MedicationID:   r.MedicationID,
		MedicationName: r.MedicationName,
		Dosage:         r.Dosage,
		Time:           t,
		Active:         r.Active,
		CreatedAt:      r.CreatedAt,
	}
	if r.LastTriggered.Valid {
		v := r.LastTriggered.Time
		rec.LastTriggered = &v
	}
	if r.NextTrigger.Valid {
		v := r.NextTrigger.Time
		rec.NextTrigger = &v
	}
	return rec, nil
}

type RemindersRepo struct {
	db *sqlx.DB
}

func NewRemindersRepo(db *sqlx.DB) *RemindersRepo {
	return &RemindersRepo{db: db}
}

func (r *RemindersRepo) Create(ctx context.Context, rec reminders.Record) error {
	row := reminderRow{
		ID:             rec.ID,
		UserID:         rec.UserID,
		MedicationID:   rec.MedicationID,
		MedicationName: rec.MedicationName,
		Dosage:         rec.Dosage,
		ReminderTime:   rec.Time.String(),
		Active:         rec.Active,
		CreatedAt:      rec.CreatedAt,
	}
	if rec.LastTriggered != nil {
		row.LastTriggered = sql.NullTime{Time: *rec.LastTriggered, Valid: true}
	}
	if rec.NextTrigger != nil {
		row.NextTrigger = sql.NullTime{Time: *rec.NextTrigger, Valid: true}
	}

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO reminders (
			id, user_id, medication_id, medication_name, dosage, reminder_time,
			active, created_at, last_triggered, next_trigger
		) VALUES (
			:id, :user_id, :medication_id, :medication_name, :dosage, :reminder_time,
			:active, :created_at, :last_triggered, :next_trigger
		)`, row)
	return err
}

func (r *RemindersRepo) ListByMedication(ctx context.Context, medicationID string) ([]reminders.Record, error) {
	return r.selectMany(ctx, `SELECT * FROM reminders WHERE medication_id = ? ORDER BY reminder_time ASC`, medicationID)
}

func (r *RemindersRepo) ListByUser(ctx context.Context, userID string) ([]reminders.Record, error) {
	return r.selectMany(ctx, `SELECT * FROM reminders WHERE user_id = ? ORDER BY medication_id ASC, reminder_time ASC`, userID)
}

func (r *RemindersRepo) DeleteByMedication(ctx context.Context, medicationID string) (int, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reminders WHERE medication_id = ?`, medicationID)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (r *RemindersRepo) MarkTriggered(ctx context.Context, medicationID string, t timespec.TimeSpec, at, next time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE reminders SET last_triggered = ?, next_trigger = ? WHERE medication_id = ? AND reminder_time = ?`,
		at, next, medicationID, t.String())
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return reminders.ErrNotFound
	}
	return nil
}

func (r *RemindersRepo) selectMany(ctx context.Context, q string, args ...any) ([]reminders.Record, error) {
	var rows []reminderRow
	if err := r.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, err
	}
	out := make([]reminders.Record, 0, len(rows))
	for _, row := range rows {
		rec, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}
