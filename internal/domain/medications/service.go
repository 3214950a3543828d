package medications

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
	ErrForbidden    = errors.New("forbidden")
)

type Service struct {
	repo  Repository
	hooks ReminderHooks
	log   logger.Logger
	now   func() time.Time
}

func NewService(repo Repository, hooks ReminderHooks, log logger.Logger) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{
		repo:  repo,
		hooks: hooks,
		log:   log,
		now:   time.Now,
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// SetHooks conecta el coordinador después de construir el servicio (el coordinador a su
// vez necesita el servicio para los resyncs).
func (s *Service) SetHooks(h ReminderHooks) {
	s.hooks = h
}

// Input es el cuerpo completo de un medicamento; Update reemplaza todo, horarios incluidos.
type Input struct {
	Name          string
	Dosage        string
	Frequency     string
	StartDate     *time.Time
	EndDate       *time.Time
	Notes         string
	ReminderTimes []string
	IsActive      *bool // nil = activo
}

type validated struct {
	name      string
	dosage    string
	frequency Frequency
	start     time.Time
	end       *time.Time
	notes     string
	times     []timespec.TimeSpec
	dropped   int
	active    bool
}

func (s *Service) validate(in Input) (validated, error) {
	v := validated{
		name:   strings.TrimSpace(in.Name),
		dosage: strings.TrimSpace(in.Dosage),
		notes:  strings.TrimSpace(in.Notes),
		end:    in.EndDate,
		active: true,
	}
	if v.name == "" {
		return validated{}, fmt.Errorf("%w: name required", ErrInvalidInput)
	}

	v.frequency = Frequency(strings.TrimSpace(in.Frequency))
	if v.frequency == "" {
		v.frequency = FrequencyOnce
	}
	if !v.frequency.Valid() {
		return validated{}, fmt.Errorf("%w: unknown frequency %q", ErrInvalidInput, in.Frequency)
	}

	if in.StartDate != nil {
		v.start = *in.StartDate
	} else {
		n := s.now()
		v.start = time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, n.Location())
	}
	if v.end != nil && dayStart(*v.end, 0, time.UTC).Before(dayStart(v.start, 0, time.UTC)) {
		return validated{}, fmt.Errorf("%w: end date before start date", ErrInvalidInput)
	}

	times, dropped, err := timespec.ValidOrError(in.ReminderTimes)
	if err != nil {
		return validated{}, err
	}
	v.times = times
	v.dropped = dropped

	if in.IsActive != nil {
		v.active = *in.IsActive
	}
	return v, nil
}

func (s *Service) Create(ctx context.Context, userID string, in Input) (Medication, SaveOutcome, error) {
	if strings.TrimSpace(userID) == "" {
		return Medication{}, SaveOutcome{}, ErrInvalidInput
	}
	v, err := s.validate(in)
	if err != nil {
		return Medication{}, SaveOutcome{}, err
	}

	now := s.now()
	m := Medication{
		ID:            uuid.NewString(),
		UserID:        userID,
		Name:          v.name,
		Dosage:        v.dosage,
		Frequency:     v.frequency,
		StartDate:     v.start,
		EndDate:       v.end,
		Notes:         v.notes,
		ReminderTimes: v.times,
		IsActive:      v.active,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, m); err != nil {
		return Medication{}, SaveOutcome{}, err
	}
	return m, s.afterSave(ctx, m, v.dropped), nil
}

func (s *Service) Update(ctx context.Context, userID, id string, in Input) (Medication, SaveOutcome, error) {
	current, err := s.Get(ctx, userID, id)
	if err != nil {
		return Medication{}, SaveOutcome{}, err
	}
	v, err := s.validate(in)
	if err != nil {
		return Medication{}, SaveOutcome{}, err
	}

	current.Name = v.name
	current.Dosage = v.dosage
	current.Frequency = v.frequency
	current.StartDate = v.start
	current.EndDate = v.end
	current.Notes = v.notes
	current.ReminderTimes = v.times
	current.IsActive = v.active
	current.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, current); err != nil {
		return Medication{}, SaveOutcome{}, err
	}
	return current, s.afterSave(ctx, current, v.dropped), nil
}

// Delete borra el medicamento y después sus recordatorios. Las fallas de recordatorios no
// deshacen el borrado: vuelven como warnings.
func (s *Service) Delete(ctx context.Context, userID, id string) ([]string, error) {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, err
	}
	if s.hooks == nil {
		return nil, nil
	}
	if err := s.hooks.OnMedicationDeleted(ctx, id); err != nil {
		s.log.Warn("reminder cleanup incomplete", map[string]any{"medication_id": id, "error": err})
		return []string{err.Error()}, nil
	}
	return nil, nil
}

// Get devuelve el medicamento solo si pertenece a userID.
func (s *Service) Get(ctx context.Context, userID, id string) (Medication, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Medication{}, err
	}
	if m.UserID != userID {
		return Medication{}, ErrForbidden
	}
	return m, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Medication, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]Medication, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) ListActive(ctx context.Context) ([]Medication, error) {
	return s.repo.ListActive(ctx)
}

func (s *Service) afterSave(ctx context.Context, m Medication, dropped int) SaveOutcome {
	out := SaveOutcome{Scheduled: m.ReminderTimes}
	if s.hooks != nil {
		res, err := s.hooks.OnMedicationSaved(ctx, m)
		out = res
		if err != nil {
			s.log.Warn("reminder scheduling incomplete", map[string]any{"medication_id": m.ID, "error": err})
			out.Warnings = append(out.Warnings, err.Error())
		}
	}
	out.Dropped += dropped
	return out
}
