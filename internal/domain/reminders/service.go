package reminders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"medication-reminders/internal/domain/timespec"
	"medication-reminders/internal/platform/logger"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

// StoreError envuelve cualquier falla de persistencia del espejo de recordatorios.
// Quien llama decide si es fatal; el coordinador la degrada a warning.
type StoreError struct {
	Op           string
	MedicationID string
	Err          error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("reminder store %s (medication %s): %v", e.Op, e.MedicationID, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

type Service struct {
	repo Repository
	log  logger.Logger
	now  func() time.Time
}

func NewService(repo Repository, log logger.Logger) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{
		repo: repo,
		log:  log,
		now:  time.Now,
	}
}

// WithClock fija el reloj usado para CreatedAt/NextTrigger (zona incluida).
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

type ReplaceInput struct {
	UserID         string
	MedicationID   string
	MedicationName string
	Dosage         string
	Times          []timespec.TimeSpec
}

// ReplaceForMedication borra los registros del medicamento y crea uno por horario.
// No es transaccional: si un insert falla se loguea y se sigue con el resto;
// el error devuelto (*StoreError) junta todas las fallas.
func (s *Service) ReplaceForMedication(ctx context.Context, in ReplaceInput) ([]Record, error) {
	if strings.TrimSpace(in.UserID) == "" || strings.TrimSpace(in.MedicationID) == "" {
		return nil, ErrInvalidInput
	}

	log := s.log.With(map[string]any{"medication_id": in.MedicationID, "user_id": in.UserID})

	deleted, err := s.repo.DeleteByMedication(ctx, in.MedicationID)
	if err != nil {
		// Sin el delete no insertamos: quedarían duplicados.
		log.Error("reminder store delete failed", map[string]any{"error": err})
		return nil, &StoreError{Op: "delete", MedicationID: in.MedicationID, Err: err}
	}

	now := s.now()
	created := make([]Record, 0, len(in.Times))
	var errs []error

	for _, t := range in.Times {
		next := t.Next(now)
		r := Record{
			ID:             uuid.NewString(),
			UserID:         in.UserID,
			MedicationID:   in.MedicationID,
			MedicationName: strings.TrimSpace(in.MedicationName),
			Dosage:         strings.TrimSpace(in.Dosage),
			Time:           t,
			Active:         true,
			CreatedAt:      now,
			NextTrigger:    &next,
		}
		if err := s.repo.Create(ctx, r); err != nil {
			log.Warn("reminder record insert failed, continuing", map[string]any{"time": t.String(), "error": err})
			errs = append(errs, fmt.Errorf("%s: %w", t, err))
			continue
		}
		created = append(created, r)
	}

	log.Debug("reminder records replaced", map[string]any{"deleted": deleted, "created": len(created)})

	if len(errs) > 0 {
		return created, &StoreError{Op: "insert", MedicationID: in.MedicationID, Err: errors.Join(errs...)}
	}
	return created, nil
}

// CancelForMedication borra todos los registros; idempotente.
func (s *Service) CancelForMedication(ctx context.Context, medicationID string) (int, error) {
	medicationID = strings.TrimSpace(medicationID)
	if medicationID == "" {
		return 0, ErrInvalidInput
	}
	n, err := s.repo.DeleteByMedication(ctx, medicationID)
	if err != nil {
		return 0, &StoreError{Op: "delete", MedicationID: medicationID, Err: err}
	}
	return n, nil
}

func (s *Service) ListByMedication(ctx context.Context, medicationID string) ([]Record, error) {
	return s.repo.ListByMedication(ctx, medicationID)
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]Record, error) {
	return s.repo.ListByUser(ctx, userID)
}

// MarkTriggered actualiza LastTriggered/NextTrigger tras un disparo local.
func (s *Service) MarkTriggered(ctx context.Context, medicationID string, t timespec.TimeSpec, at time.Time) error {
	return s.repo.MarkTriggered(ctx, medicationID, t, at, t.Next(at))
}
