package medications

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("medication not found")

type Repository interface {
	Create(ctx context.Context, m Medication) error
	Update(ctx context.Context, m Medication) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Medication, error)
	ListByUser(ctx context.Context, userID string) ([]Medication, error)
	ListActive(ctx context.Context) ([]Medication, error)
}

// ReminderHooks recibe cada escritura para mantener recordatorios en sync.
type ReminderHooks interface {
	OnMedicationSaved(ctx context.Context, m Medication) (SaveOutcome, error)
	OnMedicationDeleted(ctx context.Context, medicationID string) error
}
