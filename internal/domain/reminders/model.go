package reminders

import (
	"time"

	"medication-reminders/internal/domain/timespec"
)

// Record es el espejo en servidor de un horario de recordatorio (uno por TimeSpec por medicamento).
// Pertenece al medicamento: se recrea completo en cada guardado, nunca lo crea el usuario directo.
type Record struct {
	ID           string
	UserID       string
	MedicationID string

	MedicationName string
	Dosage         string

	Time   timespec.TimeSpec
	Active bool

	CreatedAt     time.Time
	LastTriggered *time.Time
	NextTrigger   *time.Time
}
