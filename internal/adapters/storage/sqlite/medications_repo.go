package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"medication-reminders/internal/domain/medications"
	"medication-reminders/internal/domain/timespec"

	"github.com/jmoiron/sqlx"
)

type medicationRow struct {
	ID            string       `db:"id"`
	UserID        string       `db:"user_id"`
	Name          string       `db:"name"`
	Dosage        string       `db:"dosage"`
	Frequency     string       `db:"frequency"`
	StartDate     time.Time    `db:"start_date"`
	EndDate       sql.NullTime `db:"end_date"`
	Notes         string       `db:"notes"`
	ReminderTimes string       `db:"reminder_times"`
	IsActive      bool         `db:"is_active"`
	CreatedAt     time.Time    `db:"created_at"`
	UpdatedAt     time.Time    `db:"updated_at"`
}

func toMedicationRow(m medications.Medication) (medicationRow, error) {
	times, err := json.Marshal(timespec.Strings(m.ReminderTimes))
	if err != nil {
		return medicationRow{}, err
	}
	row := medicationRow{
		ID:            m.ID,
		UserID:        m.UserID,
		Name:          m.Name,
		Dosage:        m.Dosage,
		Frequency:     string(m.Frequency),
		StartDate:     m.StartDate,
		Notes:         m.Notes,
		ReminderTimes: string(times),
		IsActive:      m.IsActive,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
	if m.EndDate != nil {
		row.EndDate = sql.NullTime{Time: *m.EndDate, Valid: true}
	}
	return row, nil
}

func (r medicationRow) toDomain() (medications.Medication, error) {
	var times []timespec.TimeSpec
	if err := json.Unmarshal([]byte(r.ReminderTimes), &times); err != nil {
		return medications.Medication{}, fmt.Errorf("medication %s: decode reminder_times: %w", r.ID, err)
	}
	m := medications.Medication{
		ID:            r.ID,
		UserID:        r.UserID,
		Name:          r.Name,
		Dosage:        r.Dosage,
		Frequency:     medications.Frequency(r.Frequency),
		StartDate:     r.StartDate,
		Notes:         r.Notes,
		ReminderTimes: times,
		IsActive:      r.IsActive,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	if r.EndDate.Valid {
		t := r.EndDate.Time
		m.EndDate = &t
	}
	return m, nil
}

type MedicationsRepo struct {
	db *sqlx.DB
}

func NewMedicationsRepo(db *sqlx.DB) *MedicationsRepo {
	return &MedicationsRepo{db: db}
}

func (r *MedicationsRepo) Create(ctx context.Context, m medications.Medication) error {
	row, err := toMedicationRow(m)
	if err != nil {
		return err
	}
	_, err = r.db.NamedExecContext(ctx, `
		INSERT INTO medications (
			id, user_id, name, dosage, frequency, start_date, end_date,
			notes, reminder_times, is_active, created_at, updated_at
		) VALUES (
			:id, :user_id, :name, :dosage, :frequency, :start_date, :end_date,
			:notes, :reminder_times, :is_active, :created_at, :updated_at
		)`, row)
	return err
}

func (r *MedicationsRepo) Update(ctx context.Context, m medications.Medication) error {
	row, err := toMedicationRow(m)
	if err != nil {
		return err
	}
	res, err := r.db.NamedExecContext(ctx, `
		UPDATE medications SET
			name = :name, dosage = :dosage, frequency = :frequency,
			start_date = :start_date, end_date = :end_date, notes = :notes,
			reminder_times = :reminder_times, is_active = :is_active, updated_at = :updated_at
		WHERE id = :id`, row)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return medications.ErrNotFound
	}
	return nil
}

func (r *MedicationsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM medications WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return medications.ErrNotFound
	}
	return nil
}

func (r *MedicationsRepo) GetByID(ctx context.Context, id string) (medications.Medication, error) {
	var row medicationRow
	if err := r.db.GetContext(ctx, &row, `SELECT * FROM medications WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return medications.Medication{}, medications.ErrNotFound
		}
		return medications.Medication{}, err
	}
	return row.toDomain()
}

func (r *MedicationsRepo) ListByUser(ctx context.Context, userID string) ([]medications.Medication, error) {
	return r.selectMany(ctx, `SELECT * FROM medications WHERE user_id = ? ORDER BY created_at ASC`, userID)
}

func (r *MedicationsRepo) ListActive(ctx context.Context) ([]medications.Medication, error) {
	return r.selectMany(ctx, `SELECT * FROM medications WHERE is_active = 1 ORDER BY created_at ASC`)
}

func (r *MedicationsRepo) selectMany(ctx context.Context, q string, args ...any) ([]medications.Medication, error) {
	var rows []medicationRow
	if err := r.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, err
	}
	out := make([]medications.Medication, 0, len(rows))
	for _, row := range rows {
		m, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}
