package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingResyncer struct {
	reasons chan string
	err     error
}

func (r *recordingResyncer) ResyncAll(ctx context.Context, reason string) error {
	r.reasons <- reason
	return r.err
}

func newTestMonitor(t *testing.T) (*LifecycleMonitor, clockwork.FakeClock, *recordingResyncer) {
	t.Helper()

	fc := clockwork.NewFakeClockAt(time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC))
	rs := &recordingResyncer{reasons: make(chan string, 8)}
	m := NewLifecycleMonitor(rs, fc, DefaultMonitorOptions(), nil)
	t.Cleanup(m.Close)
	return m, fc, rs
}

func TestVisible_AfterLongBackground_Resyncs(t *testing.T) {
	m, fc, rs := newTestMonitor(t)

	m.Hidden("user-1")
	fc.Advance(3 * time.Minute)

	require.True(t, m.Visible(context.Background(), "user-1"))
	assert.Equal(t, ReasonResume, <-rs.reasons)
}

func TestVisible_ShortBackground_NoResync(t *testing.T) {
	m, fc, rs := newTestMonitor(t)

	m.Hidden("user-1")
	fc.Advance(time.Minute)

	assert.False(t, m.Visible(context.Background(), "user-1"))
	assert.Empty(t, rs.reasons)
}

func TestVisible_WithoutHidden_NoResync(t *testing.T) {
	m, _, rs := newTestMonitor(t)

	assert.False(t, m.Visible(context.Background(), "user-1"))
	assert.Empty(t, rs.reasons)
}

func TestHidden_KeepsFirstInstant(t *testing.T) {
	m, fc, rs := newTestMonitor(t)

	m.Hidden("user-1")
	fc.Advance(90 * time.Second)
	m.Hidden("user-1")
	fc.Advance(60 * time.Second)

	assert.True(t, m.Visible(context.Background(), "user-1"))
	<-rs.reasons
}

func TestHidden_IsTrackedPerClient(t *testing.T) {
	m, fc, rs := newTestMonitor(t)

	m.Hidden("user-1")
	fc.Advance(3 * time.Minute)

	// Otro cliente que nunca se ocultó no consume el estado de user-1.
	assert.False(t, m.Visible(context.Background(), "user-2"))
	assert.Empty(t, rs.reasons)

	m.Hidden("user-2")
	assert.True(t, m.Visible(context.Background(), "user-1"))
	assert.Equal(t, ReasonResume, <-rs.reasons)

	assert.False(t, m.Visible(context.Background(), "user-2"), "user-2 was hidden only briefly")
	assert.Empty(t, rs.reasons)
}

func TestFocus_IsDebounced(t *testing.T) {
	m, fc, rs := newTestMonitor(t)

	m.Focus()
	fc.BlockUntil(1)
	fc.Advance(500 * time.Millisecond)

	m.Focus()
	fc.BlockUntil(1)

	fc.Advance(500 * time.Millisecond)
	assert.Empty(t, rs.reasons, "debounce restarted on second focus")

	fc.Advance(500 * time.Millisecond)
	select {
	case reason := <-rs.reasons:
		assert.Equal(t, ReasonFocus, reason)
	case <-time.After(2 * time.Second):
		t.Fatalf("expected focus resync")
	}

	select {
	case reason := <-rs.reasons:
		t.Fatalf("unexpected extra resync %q", reason)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBeat_DetectsWallClockJump(t *testing.T) {
	m, _, rs := newTestMonitor(t)
	ctx := context.Background()
	t0 := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)

	assert.False(t, m.beat(ctx, t0), "first beat only records")
	assert.False(t, m.beat(ctx, t0.Add(30*time.Second)))
	assert.False(t, m.beat(ctx, t0.Add(30*time.Second+2*time.Minute)), "a late beat within tolerance")

	assert.True(t, m.beat(ctx, t0.Add(time.Hour)))
	assert.Equal(t, ReasonClockJump, <-rs.reasons)
}

func TestResyncErrorIsLoggedNotPropagated(t *testing.T) {
	m, fc, rs := newTestMonitor(t)
	rs.err = errors.New("store down")

	m.Hidden("user-1")
	fc.Advance(5 * time.Minute)
	assert.True(t, m.Visible(context.Background(), "user-1"))
	<-rs.reasons
}
