package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"medication-reminders/internal/domain/medications"
	"medication-reminders/internal/domain/reminders"
	"medication-reminders/internal/domain/timespec"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) (*MedicationsRepo, *RemindersRepo) {
	t.Helper()
	db, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewMedicationsRepo(db), NewRemindersRepo(db)
}

func TestMedicationsRepo_RoundTrip(t *testing.T) {
	ctx := context.Background()
	meds, _ := openTestDB(t)

	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	end := now.AddDate(0, 1, 0)
	m := medications.Medication{
		ID:            "m1",
		UserID:        "u1",
		Name:          "Ibuprofen",
		Dosage:        "200mg",
		Frequency:     medications.FrequencyTwice,
		StartDate:     now,
		EndDate:       &end,
		ReminderTimes: []timespec.TimeSpec{timespec.MustParse("08:00"), timespec.MustParse("20:00")},
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, meds.Create(ctx, m))

	got, err := meds.GetByID(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, []string{"08:00", "20:00"}, timespec.Strings(got.ReminderTimes))
	require.NotNil(t, got.EndDate)
	assert.True(t, got.EndDate.Equal(end))
	assert.True(t, got.IsActive)

	got.IsActive = false
	got.ReminderTimes = nil
	require.NoError(t, meds.Update(ctx, got))

	active, err := meds.ListActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	mine, err := meds.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Empty(t, mine[0].ReminderTimes)

	require.NoError(t, meds.Delete(ctx, "m1"))
	_, err = meds.GetByID(ctx, "m1")
	assert.True(t, errors.Is(err, medications.ErrNotFound))
	assert.ErrorIs(t, meds.Update(ctx, got), medications.ErrNotFound)
}

func TestRemindersRepo_ReplaceCycle(t *testing.T) {
	ctx := context.Background()
	_, recs := openTestDB(t)
	now := time.Date(2024, 5, 10, 7, 0, 0, 0, time.UTC)

	for i, raw := range []string{"20:00", "08:00"} {
		require.NoError(t, recs.Create(ctx, reminders.Record{
			ID:           []string{"r1", "r2"}[i],
			UserID:       "u1",
			MedicationID: "m1",
			Time:         timespec.MustParse(raw),
			Active:       true,
			CreatedAt:    now,
		}))
	}

	list, err := recs.ListByMedication(ctx, "m1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "08:00", list[0].Time.String())

	at := now.Add(time.Hour)
	require.NoError(t, recs.MarkTriggered(ctx, "m1", timespec.MustParse("08:00"), at, at.AddDate(0, 0, 1)))
	assert.ErrorIs(t, recs.MarkTriggered(ctx, "m1", timespec.MustParse("09:00"), at, at), reminders.ErrNotFound)

	list, err = recs.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, list[0].LastTriggered)
	assert.True(t, list[0].LastTriggered.Equal(at))
	assert.Nil(t, list[1].LastTriggered)

	n, err := recs.DeleteByMedication(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = recs.DeleteByMedication(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
