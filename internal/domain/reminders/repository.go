package reminders

import (
	"context"
	"errors"
	"time"

	"medication-reminders/internal/domain/timespec"
)

var ErrNotFound = errors.New("reminder not found")

// Repository es el almacenamiento pasivo de Records. Nunca dispara notificaciones.
type Repository interface {
	Create(ctx context.Context, r Record) error
	ListByMedication(ctx context.Context, medicationID string) ([]Record, error)
	ListByUser(ctx context.Context, userID string) ([]Record, error)
	// DeleteByMedication devuelve cuántos se borraron; 0 no es error.
	DeleteByMedication(ctx context.Context, medicationID string) (int, error)
	MarkTriggered(ctx context.Context, medicationID string, t timespec.TimeSpec, at, next time.Time) error
}
