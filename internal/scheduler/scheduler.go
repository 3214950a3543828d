// Package scheduler mantiene un timer en proceso por cada horario (medicamento, slot) activo.
//
// Cada slot corre en su propia goroutine: duerme hasta el próximo disparo, entrega el slot al
// FireHandler sin esperarlo y se re-arma para el día siguiente. La tabla de handles es el único
// estado compartido y solo se toca desde Schedule/CancelAll/CancelEverything.
package scheduler

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"medication-reminders/internal/domain/timespec"
	"medication-reminders/internal/platform/logger"
	"medication-reminders/internal/platform/metrics"

	"github.com/jonboulle/clockwork"
)

// Slot es un par (medicamento, horario) elegible para un recordatorio diario.
type Slot struct {
	MedicationID   string
	UserID         string
	MedicationName string
	Dosage         string
	Instructions   string
	Index          int
	Time           timespec.TimeSpec

	// Ventana de disparo: NotBefore inclusivo, Until exclusivo. Cero = sin límite.
	NotBefore time.Time
	Until     time.Time
}

// firstFire es el primer disparo desde now respetando NotBefore.
func (sl Slot) firstFire(now time.Time) time.Time {
	base := now
	if !sl.NotBefore.IsZero() && sl.NotBefore.After(now) {
		base = sl.NotBefore.Add(-time.Nanosecond).In(now.Location())
	}
	return NextFire(sl.Time, base)
}

// expired indica si fireAt cae fuera de la ventana.
func (sl Slot) expired(fireAt time.Time) bool {
	return !sl.Until.IsZero() && !fireAt.Before(sl.Until)
}

// FireHandler recibe cada disparo. Corre en su propia goroutine; su resultado no afecta el re-armado.
type FireHandler interface {
	ReminderDue(ctx context.Context, slot Slot, firedAt time.Time)
}

type FireFunc func(ctx context.Context, slot Slot, firedAt time.Time)

func (f FireFunc) ReminderDue(ctx context.Context, slot Slot, firedAt time.Time) {
	f(ctx, slot, firedAt)
}

// Handle es una foto de un timer armado.
type Handle struct {
	MedicationID string
	SlotIndex    int
	Time         timespec.TimeSpec
	FireAt       time.Time
}

type handle struct {
	slot   Slot
	fireAt time.Time

	// ctx/cancel hacen de token: un handle cancelado o reemplazado nunca dispara.
	ctx    context.Context
	cancel context.CancelFunc
}

type Scheduler struct {
	clock   clockwork.Clock
	loc     *time.Location
	handler FireHandler
	log     logger.Logger
	metrics *metrics.Metrics

	mu      sync.Mutex
	handles map[string]*handle

	baseCtx    context.Context
	baseCancel context.CancelFunc
	wg         sync.WaitGroup
}

type Options struct {
	Clock    clockwork.Clock
	Location *time.Location
	Logger   logger.Logger
	Metrics  *metrics.Metrics
}

func New(handler FireHandler, opts Options) *Scheduler {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		clock:      opts.Clock,
		loc:        opts.Location,
		handler:    handler,
		log:        opts.Logger,
		metrics:    opts.Metrics,
		handles:    make(map[string]*handle),
		baseCtx:    ctx,
		baseCancel: cancel,
	}
}

// NextFire: hoy a t, o mañana si ya pasó. Nunca dispara inmediato para horarios "en el pasado".
func NextFire(t timespec.TimeSpec, now time.Time) time.Time {
	return t.Next(now)
}

func slotKey(medicationID string, index int) string {
	return medicationPrefix(medicationID) + strconv.Itoa(index)
}

func medicationPrefix(medicationID string) string {
	return medicationID + "#"
}

// Schedule reprograma todos los slots de un medicamento: cancela los timers previos y arma
// uno nuevo por slot. Un slot sin disparos dentro de su ventana no se arma.
// Correrlo dos veces seguidas deja el mismo conjunto de timers.
func (s *Scheduler) Schedule(medicationID string, slots []Slot) []Handle {
	s.mu.Lock()
	defer s.mu.Unlock()

	cancelled := s.cancelLocked(medicationID)

	now := s.clock.Now().In(s.loc)
	out := make([]Handle, 0, len(slots))
	for i, slot := range slots {
		slot.MedicationID = medicationID
		slot.Index = i
		h, ok := s.armLocked(slot, now)
		if !ok {
			continue
		}
		out = append(out, snapshot(h))
	}

	s.metrics.SetTimersActive(len(s.handles))
	s.log.Debug("medication timers scheduled", map[string]any{
		"medication_id": medicationID,
		"cancelled":     cancelled,
		"armed":         len(out),
		"skipped":       len(slots) - len(out),
	})
	return out
}

// CancelAll cancela cada timer del medicamento exactamente una vez. Devuelve cuántos había.
func (s *Scheduler) CancelAll(medicationID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.cancelLocked(medicationID)
	s.metrics.SetTimersActive(len(s.handles))
	return n
}

// CancelEverything cancela todos los timers (teardown o antes de un resync global).
func (s *Scheduler) CancelEverything() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.handles)
	for key, h := range s.handles {
		h.cancel()
		delete(s.handles, key)
	}
	s.metrics.SetTimersActive(0)
	return n
}

// Close cancela todo y espera a que terminen las goroutines de slots y de disparo.
func (s *Scheduler) Close() {
	s.CancelEverything()
	s.baseCancel()
	s.wg.Wait()
}

// Handles devuelve los timers activos de un medicamento, ordenados por slot.
func (s *Scheduler) Handles(medicationID string) []Handle {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefix := medicationPrefix(medicationID)
	out := make([]Handle, 0)
	for key, h := range s.handles {
		if strings.HasPrefix(key, prefix) {
			out = append(out, snapshot(h))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SlotIndex < out[j].SlotIndex })
	return out
}

func (s *Scheduler) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.handles)
}

func (s *Scheduler) cancelLocked(medicationID string) int {
	prefix := medicationPrefix(medicationID)
	n := 0
	for key, h := range s.handles {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		h.cancel()
		delete(s.handles, key)
		n++
	}
	return n
}

func (s *Scheduler) armLocked(slot Slot, now time.Time) (*handle, bool) {
	key := slotKey(slot.MedicationID, slot.Index)
	if old, ok := s.handles[key]; ok {
		old.cancel()
		delete(s.handles, key)
	}

	fireAt := slot.firstFire(now)
	if slot.expired(fireAt) {
		return nil, false
	}

	ctx, cancel := context.WithCancel(s.baseCtx)
	h := &handle{
		slot:   slot,
		fireAt: fireAt,
		ctx:    ctx,
		cancel: cancel,
	}
	s.handles[key] = h

	s.wg.Add(1)
	go s.run(key, h)
	return h, true
}

// run es el ciclo Scheduled -> Fired -> Scheduled de un slot. Termina al cancelarse (Cancelled)
// o cuando el próximo disparo cae fuera de la ventana del slot (Expired).
func (s *Scheduler) run(key string, h *handle) {
	defer s.wg.Done()

	for {
		s.mu.Lock()
		fireAt := h.fireAt
		s.mu.Unlock()

		timer := s.clock.NewTimer(fireAt.Sub(s.clock.Now()))
		select {
		case <-h.ctx.Done():
			timer.Stop()
			return
		case <-timer.Chan():
		}

		s.mu.Lock()
		if s.handles[key] != h || h.ctx.Err() != nil {
			// El timer venció justo cuando lo cancelaban.
			s.mu.Unlock()
			s.log.Debug("stale reminder timer ignored", map[string]any{"slot": key})
			return
		}
		base := fireAt
		if now := s.clock.Now().In(s.loc); now.After(base) {
			base = now
		}
		h.fireAt = NextFire(h.slot.Time, base)
		slot := h.slot
		next := h.fireAt
		last := slot.expired(next)
		if last {
			h.cancel()
			delete(s.handles, key)
			s.metrics.SetTimersActive(len(s.handles))
		}
		s.mu.Unlock()

		s.metrics.ReminderFired()
		fields := map[string]any{
			"medication_id": slot.MedicationID,
			"slot":          slot.Index,
			"time":          slot.Time.String(),
		}
		if last {
			fields["expired"] = true
		} else {
			fields["next_fire"] = next.Format(time.RFC3339)
		}
		s.log.Info("reminder fired", fields)

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handler.ReminderDue(s.baseCtx, slot, fireAt)
		}()

		if last {
			return
		}
	}
}

func snapshot(h *handle) Handle {
	return Handle{
		MedicationID: h.slot.MedicationID,
		SlotIndex:    h.slot.Index,
		Time:         h.slot.Time,
		FireAt:       h.fireAt,
	}
}
