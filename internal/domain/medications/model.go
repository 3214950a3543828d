package medications

import (
	"time"

	"medication-reminders/internal/domain/timespec"
)

// Medication es un medicamento del usuario con sus horarios diarios de recordatorio.
type Medication struct {
	ID     string
	UserID string

	Name      string
	Dosage    string // "200mg", "1 comprimido"
	Frequency Frequency

	StartDate time.Time
	EndDate   *time.Time // inclusiva; nil = sin fin

	Notes string

	// Valores únicos, sin orden. Vacío es válido (sin recordatorios).
	ReminderTimes []timespec.TimeSpec

	IsActive bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ActiveFrom es la medianoche en loc del día de StartDate. Cero si no hay fecha de inicio.
func (m Medication) ActiveFrom(loc *time.Location) time.Time {
	if m.StartDate.IsZero() {
		return time.Time{}
	}
	return dayStart(m.StartDate, 0, loc)
}

// ActiveUntil es la medianoche en loc del día siguiente a EndDate (exclusiva). Cero si no hay fin.
func (m Medication) ActiveUntil(loc *time.Location) time.Time {
	if m.EndDate == nil {
		return time.Time{}
	}
	return dayStart(*m.EndDate, 1, loc)
}

// Started indica si now ya alcanzó el día de inicio.
func (m Medication) Started(now time.Time) bool {
	return !now.Before(m.ActiveFrom(now.Location()))
}

// Ended indica si EndDate ya quedó atrás respecto de now.
func (m Medication) Ended(now time.Time) bool {
	until := m.ActiveUntil(now.Location())
	return !until.IsZero() && !now.Before(until)
}

// Las fechas son de calendario: se toman sus campos tal cual, sin convertir de zona.
func dayStart(d time.Time, addDays int, loc *time.Location) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day()+addDays, 0, 0, 0, 0, loc)
}

// Schedulable: activo, vigente y con al menos un horario.
func (m Medication) Schedulable(now time.Time) bool {
	return m.IsActive && !m.Ended(now) && len(m.ReminderTimes) > 0
}

// SaveOutcome es lo que quedó programado tras guardar un medicamento.
type SaveOutcome struct {
	Scheduled []timespec.TimeSpec
	Dropped   int
	Cancelled bool
	Warnings  []string
}
