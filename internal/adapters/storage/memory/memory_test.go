package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"medication-reminders/internal/domain/medications"
	"medication-reminders/internal/domain/reminders"
	"medication-reminders/internal/domain/timespec"
	"medication-reminders/internal/ports/contacts"
)

func TestMedicationRepo_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewMedicationRepo()

	m := medications.Medication{
		ID:            "m1",
		UserID:        "u1",
		Name:          "Ibuprofen",
		ReminderTimes: []timespec.TimeSpec{timespec.MustParse("08:00")},
		IsActive:      true,
		CreatedAt:     time.Now(),
	}
	if err := repo.Create(ctx, m); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if err := repo.Create(ctx, m); err == nil {
		t.Fatalf("expected duplicate error")
	}

	// El repo no comparte el slice con quien llama.
	m.ReminderTimes[0] = timespec.MustParse("23:00")
	got, err := repo.GetByID(ctx, "m1")
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if got.ReminderTimes[0].String() != "08:00" {
		t.Fatalf("repo state leaked: %v", got.ReminderTimes)
	}

	got.IsActive = false
	if err := repo.Update(ctx, got); err != nil {
		t.Fatalf("Update error: %v", err)
	}
	active, _ := repo.ListActive(ctx)
	if len(active) != 0 {
		t.Fatalf("expected no active medications, got %d", len(active))
	}
	mine, _ := repo.ListByUser(ctx, "u1")
	if len(mine) != 1 {
		t.Fatalf("expected 1 medication for u1, got %d", len(mine))
	}

	if err := repo.Delete(ctx, "m1"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, err := repo.GetByID(ctx, "m1"); !errors.Is(err, medications.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := repo.Delete(ctx, "m1"); !errors.Is(err, medications.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestReminderRepo_DeleteAndMark(t *testing.T) {
	ctx := context.Background()
	repo := NewReminderRepo()

	for i, raw := range []string{"20:00", "08:00"} {
		rec := reminders.Record{
			ID:           []string{"r1", "r2"}[i],
			UserID:       "u1",
			MedicationID: "m1",
			Time:         timespec.MustParse(raw),
			Active:       true,
		}
		if err := repo.Create(ctx, rec); err != nil {
			t.Fatalf("Create error: %v", err)
		}
	}

	list, _ := repo.ListByMedication(ctx, "m1")
	if len(list) != 2 || list[0].Time.String() != "08:00" {
		t.Fatalf("expected records sorted by time, got %+v", list)
	}

	at := time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC)
	if err := repo.MarkTriggered(ctx, "m1", timespec.MustParse("08:00"), at, at.AddDate(0, 0, 1)); err != nil {
		t.Fatalf("MarkTriggered error: %v", err)
	}
	list, _ = repo.ListByUser(ctx, "u1")
	if list[0].LastTriggered == nil || !list[0].LastTriggered.Equal(at) {
		t.Fatalf("expected LastTriggered set")
	}
	if err := repo.MarkTriggered(ctx, "m1", timespec.MustParse("09:00"), at, at); !errors.Is(err, reminders.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	n, err := repo.DeleteByMedication(ctx, "m1")
	if err != nil || n != 2 {
		t.Fatalf("expected 2 deleted, got %d (%v)", n, err)
	}
	n, _ = repo.DeleteByMedication(ctx, "m1")
	if n != 0 {
		t.Fatalf("second delete must be a no-op")
	}
}

func TestContactRegistry(t *testing.T) {
	ctx := context.Background()
	reg := NewContactRegistry()

	if _, err := reg.Contact(ctx, "u1"); !errors.Is(err, contacts.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := reg.SetContact(ctx, "u1", contacts.ContactInfo{Email: " ana@example.com "}); err != nil {
		t.Fatalf("SetContact error: %v", err)
	}
	info, err := reg.Contact(ctx, "u1")
	if err != nil || info.Email != "ana@example.com" {
		t.Fatalf("unexpected contact %+v (%v)", info, err)
	}
	if err := reg.SetContact(ctx, " ", contacts.ContactInfo{}); err == nil {
		t.Fatalf("expected error for empty user id")
	}
}
