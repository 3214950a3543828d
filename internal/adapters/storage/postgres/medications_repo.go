package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"medication-reminders/internal/domain/medications"
	"medication-reminders/internal/domain/timespec"
)

type MedicationsRepo struct {
	db *sql.DB
}

func NewMedicationsRepo(db *sql.DB) *MedicationsRepo {
	return &MedicationsRepo{db: db}
}

const medicationColumns = `
	id, user_id,
	name, dosage, frequency,
	start_date, end_date, notes,
	reminder_times, is_active,
	created_at, updated_at`

func (r *MedicationsRepo) Create(ctx context.Context, m medications.Medication) error {
	times, err := encodeTimes(m.ReminderTimes)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO medications (`+medicationColumns+`
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`,
		m.ID,
		m.UserID,
		m.Name,
		m.Dosage,
		string(m.Frequency),
		m.StartDate,
		toNullTime(m.EndDate),
		m.Notes,
		times,
		m.IsActive,
		m.CreatedAt,
		m.UpdatedAt,
	)
	return err
}

func (r *MedicationsRepo) Update(ctx context.Context, m medications.Medication) error {
	times, err := encodeTimes(m.ReminderTimes)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE medications
		SET
			name = $2,
			dosage = $3,
			frequency = $4,
			start_date = $5,
			end_date = $6,
			notes = $7,
			reminder_times = $8,
			is_active = $9,
			updated_at = $10
		WHERE id = $1
	`,
		m.ID,
		m.Name,
		m.Dosage,
		string(m.Frequency),
		m.StartDate,
		toNullTime(m.EndDate),
		m.Notes,
		times,
		m.IsActive,
		m.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return medications.ErrNotFound
	}
	return nil
}

func (r *MedicationsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM medications WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return medications.ErrNotFound
	}
	return nil
}

func (r *MedicationsRepo) GetByID(ctx context.Context, id string) (medications.Medication, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return medications.Medication{}, medications.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT`+medicationColumns+`
		FROM medications
		WHERE id = $1
	`, id)

	m, err := scanMedication(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return medications.Medication{}, medications.ErrNotFound
		}
		return medications.Medication{}, err
	}
	return m, nil
}

func (r *MedicationsRepo) ListByUser(ctx context.Context, userID string) ([]medications.Medication, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, nil
	}
	return r.query(ctx, `
		SELECT`+medicationColumns+`
		FROM medications
		WHERE user_id = $1
		ORDER BY created_at ASC
	`, userID)
}

func (r *MedicationsRepo) ListActive(ctx context.Context) ([]medications.Medication, error) {
	return r.query(ctx, `
		SELECT`+medicationColumns+`
		FROM medications
		WHERE is_active
		ORDER BY created_at ASC
	`)
}

func (r *MedicationsRepo) query(ctx context.Context, q string, args ...any) ([]medications.Medication, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]medications.Medication, 0)
	for rows.Next() {
		m, err := scanMedication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMedication(s scanner) (medications.Medication, error) {
	var (
		m     medications.Medication
		freq  string
		end   sql.NullTime
		times string
	)
	if err := s.Scan(
		&m.ID,
		&m.UserID,
		&m.Name,
		&m.Dosage,
		&freq,
		&m.StartDate,
		&end,
		&m.Notes,
		&times,
		&m.IsActive,
		&m.CreatedAt,
		&m.UpdatedAt,
	); err != nil {
		return medications.Medication{}, err
	}

	m.Frequency = medications.Frequency(freq)
	if end.Valid {
		t := end.Time
		m.EndDate = &t
	}

	ts, err := decodeTimes(times)
	if err != nil {
		return medications.Medication{}, fmt.Errorf("medication %s: %w", m.ID, err)
	}
	m.ReminderTimes = ts
	return m, nil
}

// reminder_times se guarda como JSON ["08:00","20:00"].
func encodeTimes(ts []timespec.TimeSpec) (string, error) {
	b, err := json.Marshal(timespec.Strings(ts))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeTimes(raw string) ([]timespec.TimeSpec, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var ts []timespec.TimeSpec
	if err := json.Unmarshal([]byte(raw), &ts); err != nil {
		return nil, fmt.Errorf("decode reminder_times: %w", err)
	}
	return ts, nil
}
