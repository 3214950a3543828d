// Package coordinator une los cambios de medicamentos con el espejo en servidor y los timers
// locales, y traduce cada disparo de timer en un despacho de notificaciones.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"medication-reminders/internal/domain/medications"
	"medication-reminders/internal/domain/notifications"
	"medication-reminders/internal/domain/reminders"
	"medication-reminders/internal/domain/timespec"
	"medication-reminders/internal/platform/logger"
	"medication-reminders/internal/platform/metrics"
	"medication-reminders/internal/ports/contacts"
	"medication-reminders/internal/scheduler"
)

const ReasonStartup = "startup"

type ReminderStore interface {
	ReplaceForMedication(ctx context.Context, in reminders.ReplaceInput) ([]reminders.Record, error)
	CancelForMedication(ctx context.Context, medicationID string) (int, error)
	MarkTriggered(ctx context.Context, medicationID string, t timespec.TimeSpec, at time.Time) error
}

type Timers interface {
	Schedule(medicationID string, slots []scheduler.Slot) []scheduler.Handle
	CancelAll(medicationID string) int
	CancelEverything() int
	Handles(medicationID string) []scheduler.Handle
}

type MedicationSource interface {
	GetByID(ctx context.Context, id string) (medications.Medication, error)
	ListActive(ctx context.Context) ([]medications.Medication, error)
	ListByUser(ctx context.Context, userID string) ([]medications.Medication, error)
}

type Deps struct {
	Store       ReminderStore
	Timers      Timers
	Medications MedicationSource
	Dispatcher  *notifications.Dispatcher
	Contacts    contacts.Resolver
	Logger      logger.Logger
	Metrics     *metrics.Metrics
	Now         func() time.Time
}

type Coordinator struct {
	store      ReminderStore
	timers     Timers
	meds       MedicationSource
	dispatcher *notifications.Dispatcher
	contacts   contacts.Resolver
	log        logger.Logger
	metrics    *metrics.Metrics
	now        func() time.Time

	// Serializa resync contra altas, cambios y bajas: un resync que listó un medicamento
	// no puede re-armarlo después de que su baja canceló los timers.
	mu sync.Mutex
}

func New(d Deps) *Coordinator {
	if d.Logger == nil {
		d.Logger = logger.NewNop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return &Coordinator{
		store:      d.Store,
		timers:     d.Timers,
		meds:       d.Medications,
		dispatcher: d.Dispatcher,
		contacts:   d.Contacts,
		log:        d.Logger,
		metrics:    d.Metrics,
		now:        d.Now,
	}
}

// OnMedicationSaved deja el espejo en servidor y los timers locales en línea con m.
// Una falla del espejo no bloquea el reprogramado local: vuelve como warning.
func (c *Coordinator) OnMedicationSaved(ctx context.Context, m medications.Medication) (medications.SaveOutcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	log := c.log.With(map[string]any{"medication_id": m.ID, "user_id": m.UserID})

	times, dropped := timespec.FilterValid(timespec.Strings(m.ReminderTimes))
	if !m.Schedulable(c.now()) || len(times) == 0 {
		err := c.cancel(ctx, m.ID)
		log.Info("medication not schedulable, reminders cancelled", map[string]any{
			"active": m.IsActive,
			"times":  len(times),
		})
		return medications.SaveOutcome{Dropped: dropped, Cancelled: true}, err
	}

	out := medications.SaveOutcome{Scheduled: times, Dropped: dropped}

	if _, err := c.store.ReplaceForMedication(ctx, reminders.ReplaceInput{
		UserID:         m.UserID,
		MedicationID:   m.ID,
		MedicationName: m.Name,
		Dosage:         m.Dosage,
		Times:          times,
	}); err != nil {
		log.Warn("server reminders not saved, local timers still scheduled", map[string]any{"error": err})
		out.Warnings = append(out.Warnings, "server reminders: "+err.Error())
	}

	handles := c.timers.Schedule(m.ID, c.slotsFor(m, times))
	log.Info("medication reminders scheduled", map[string]any{
		"times":   timespec.Strings(times),
		"dropped": dropped,
		"timers":  len(handles),
	})
	return out, nil
}

// OnMedicationDeleted cancela registros y timers; intenta ambos aunque uno falle.
func (c *Coordinator) OnMedicationDeleted(ctx context.Context, medicationID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancel(ctx, medicationID)
}

func (c *Coordinator) cancel(ctx context.Context, medicationID string) error {
	timers := c.timers.CancelAll(medicationID)

	records, err := c.store.CancelForMedication(ctx, medicationID)
	if err != nil {
		c.log.Warn("server reminders not cancelled", map[string]any{"medication_id": medicationID, "error": err})
		return fmt.Errorf("server reminders: %w", err)
	}

	c.log.Debug("medication reminders cancelled", map[string]any{
		"medication_id": medicationID,
		"timers":        timers,
		"records":       records,
	})
	return nil
}

// ResyncAll reconstruye todos los timers desde los medicamentos activos.
// Si no se puede leer la lista, los timers actuales quedan como estaban.
func (c *Coordinator) ResyncAll(ctx context.Context, reason string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	meds, err := c.meds.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("resync (%s): list active medications: %w", reason, err)
	}

	c.metrics.Resync(reason)
	cancelled := c.timers.CancelEverything()

	now := c.now()
	scheduled := 0
	for _, m := range meds {
		if !m.Schedulable(now) {
			continue
		}
		scheduled += len(c.timers.Schedule(m.ID, c.slotsFor(m, m.ReminderTimes)))
	}

	c.log.Info("reminder timers resynced", map[string]any{
		"reason":      reason,
		"medications": len(meds),
		"cancelled":   cancelled,
		"timers":      scheduled,
	})
	return nil
}

// Shutdown cancela todos los timers locales (los registros en servidor quedan).
func (c *Coordinator) Shutdown() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timers.CancelEverything()
}

// TimersForUser devuelve los timers armados de los medicamentos del usuario.
func (c *Coordinator) TimersForUser(ctx context.Context, userID string) ([]scheduler.Handle, error) {
	meds, err := c.meds.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]scheduler.Handle, 0)
	for _, m := range meds {
		out = append(out, c.timers.Handles(m.ID)...)
	}
	return out, nil
}

// ReminderDue es el FireHandler del scheduler: confirma que el medicamento sigue vigente,
// resuelve contacto, despacha y marca el registro.
func (c *Coordinator) ReminderDue(ctx context.Context, slot scheduler.Slot, firedAt time.Time) {
	log := c.log.With(map[string]any{
		"medication_id": slot.MedicationID,
		"user_id":       slot.UserID,
		"time":          slot.Time.String(),
	})

	if !c.stillDue(ctx, slot, firedAt, log) {
		return
	}

	info, err := c.contacts.Contact(ctx, slot.UserID)
	if err != nil {
		// Sin contacto igual despachamos: el reporte deja constancia de qué canal faltó.
		lvl := log.Warn
		if errors.Is(err, contacts.ErrNotFound) {
			lvl = log.Info
		}
		lvl("contact lookup failed", map[string]any{"error": err})
	}

	rep := c.dispatcher.Dispatch(ctx, slot.UserID, notifications.ReminderFired{
		MedicationID:   slot.MedicationID,
		MedicationName: slot.MedicationName,
		Dosage:         slot.Dosage,
		Instructions:   slot.Instructions,
		Time:           slot.Time,
		FireAt:         firedAt,
	}, info)

	if err := c.store.MarkTriggered(ctx, slot.MedicationID, slot.Time, firedAt); err != nil {
		log.Debug("reminder record not marked", map[string]any{"error": err})
	}

	if !rep.Delivered() {
		log.Warn("reminder not delivered on any channel", map[string]any{"summary": rep.Summary()})
	}
}

// stillDue relee el medicamento al disparar. Borrado, desactivado o vencido: cancela sus
// timers y no despacha. Si la lectura falla por otra causa se despacha igual.
func (c *Coordinator) stillDue(ctx context.Context, slot scheduler.Slot, firedAt time.Time, log logger.Logger) bool {
	m, err := c.meds.GetByID(ctx, slot.MedicationID)
	switch {
	case errors.Is(err, medications.ErrNotFound):
		log.Info("medication gone, reminder dropped", nil)
		c.dropTimers(slot.MedicationID)
		return false
	case err != nil:
		log.Warn("medication lookup failed, dispatching anyway", map[string]any{"error": err})
		return true
	case !m.Schedulable(firedAt):
		log.Info("medication no longer schedulable, reminder dropped", map[string]any{
			"active": m.IsActive,
			"ended":  m.Ended(firedAt),
		})
		c.dropTimers(slot.MedicationID)
		return false
	case !m.Started(firedAt):
		log.Debug("medication not started yet, reminder skipped", nil)
		return false
	}
	return true
}

func (c *Coordinator) dropTimers(medicationID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timers.CancelAll(medicationID)
}

// slotsFor arma un slot por horario con la ventana [inicio, día siguiente al fin) del medicamento.
func (c *Coordinator) slotsFor(m medications.Medication, times []timespec.TimeSpec) []scheduler.Slot {
	loc := c.now().Location()
	from, until := m.ActiveFrom(loc), m.ActiveUntil(loc)

	out := make([]scheduler.Slot, 0, len(times))
	for _, t := range times {
		out = append(out, scheduler.Slot{
			MedicationID:   m.ID,
			UserID:         m.UserID,
			MedicationName: m.Name,
			Dosage:         m.Dosage,
			Instructions:   m.Notes,
			Time:           t,
			NotBefore:      from,
			Until:          until,
		})
	}
	return out
}
