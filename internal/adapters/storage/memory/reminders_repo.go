package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"medication-reminders/internal/domain/reminders"
	"medication-reminders/internal/domain/timespec"
)

type reminderRepo struct {
	mu   sync.RWMutex
	byID map[string]reminders.Record
}

func NewReminderRepo() reminders.Repository {
	return &reminderRepo{
		byID: make(map[string]reminders.Record),
	}
}

func (r *reminderRepo) Create(ctx context.Context, rec reminders.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rec.ID == "" {
		return errors.New("reminder id required")
	}
	if _, exists := r.byID[rec.ID]; exists {
		return errors.New("reminder already exists")
	}
	r.byID[rec.ID] = rec
	return nil
}

func (r *reminderRepo) ListByMedication(ctx context.Context, medicationID string) ([]reminders.Record, error) {
	return r.list(func(rec reminders.Record) bool { return rec.MedicationID == medicationID }), nil
}

func (r *reminderRepo) ListByUser(ctx context.Context, userID string) ([]reminders.Record, error) {
	return r.list(func(rec reminders.Record) bool { return rec.UserID == userID }), nil
}

func (r *reminderRepo) DeleteByMedication(ctx context.Context, medicationID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for id, rec := range r.byID {
		if rec.MedicationID == medicationID {
			delete(r.byID, id)
			n++
		}
	}
	return n, nil
}

func (r *reminderRepo) MarkTriggered(ctx context.Context, medicationID string, t timespec.TimeSpec, at, next time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	found := false
	for id, rec := range r.byID {
		if rec.MedicationID != medicationID || rec.Time != t {
			continue
		}
		rec.LastTriggered = &at
		rec.NextTrigger = &next
		r.byID[id] = rec
		found = true
	}
	if !found {
		return reminders.ErrNotFound
	}
	return nil
}

func (r *reminderRepo) list(keep func(reminders.Record) bool) []reminders.Record {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]reminders.Record, 0)
	for _, rec := range r.byID {
		if keep(rec) {
			out = append(out, rec)
		}
	}

	// Por medicamento y luego por horario del día.
	sort.Slice(out, func(i, j int) bool {
		if out[i].MedicationID != out[j].MedicationID {
			return out[i].MedicationID < out[j].MedicationID
		}
		return out[i].Time.Hour*60+out[i].Time.Minute < out[j].Time.Hour*60+out[j].Time.Minute
	})
	return out
}
