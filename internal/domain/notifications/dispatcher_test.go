package notifications

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"medication-reminders/internal/domain/timespec"
	"medication-reminders/internal/platform/metrics"
	"medication-reminders/internal/ports/contacts"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePushSender struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (f *fakePushSender) SendPush(ctx context.Context, token, title, body string, data map[string]string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, token)
	if f.err != nil {
		return "", f.err
	}
	return "push-" + token, nil
}

type fakeEmailSender struct {
	mu    sync.Mutex
	to    []string
	html  string
	err   error
	panic bool
}

func (f *fakeEmailSender) SendEmail(ctx context.Context, to, subject, text, html string) (string, error) {
	if f.panic {
		panic("smtp exploded")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.to = append(f.to, to)
	f.html = html
	if f.err != nil {
		return "", f.err
	}
	return "mail-1", nil
}

func reminderEvent() ReminderFired {
	return ReminderFired{
		MedicationID:   "m-1",
		MedicationName: "Ibuprofen",
		Dosage:         "200mg",
		Time:           timespec.MustParse("09:00"),
		FireAt:         time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC),
	}
}

func TestDispatch_BothChannelsSent(t *testing.T) {
	push, email := &fakePushSender{}, &fakeEmailSender{}
	m := metrics.New()
	d := NewDispatcher(NewPushChannel(push), NewEmailChannel(email), nil, m)

	rep := d.Dispatch(context.Background(), "u-1", reminderEvent(), contacts.ContactInfo{
		Email: "ana@example.com", PushToken: "tok-1", Name: "Ana",
	})

	assert.Equal(t, StatusSent, rep.Push.Status)
	assert.Equal(t, StatusSent, rep.Email.Status)
	assert.Equal(t, "push-tok-1", rep.Push.ID)
	assert.True(t, rep.Delivered())
	assert.Empty(t, rep.Warnings())
	assert.Equal(t, EventReminderFired, rep.Kind)

	assert.Contains(t, email.html, "Ibuprofen")
	assert.Contains(t, email.html, "Hello Ana")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NotificationsSent.WithLabelValues("push", "sent")))
}

func TestDispatch_PushUnconfigured_IsDegradedNotFailure(t *testing.T) {
	email := &fakeEmailSender{}
	d := NewDispatcher(NewPushChannel(nil), NewEmailChannel(email), nil, nil)

	rep := d.Dispatch(context.Background(), "u-1", reminderEvent(), contacts.ContactInfo{
		Email: "ana@example.com", PushToken: "tok-1",
	})

	assert.Equal(t, StatusDegraded, rep.Push.Status)
	assert.Equal(t, StatusSent, rep.Email.Status)
	assert.True(t, rep.Delivered())
	assert.Equal(t, "push: degraded, email: sent", rep.Summary())
}

func TestDispatch_NoPushToken_IsDegraded(t *testing.T) {
	push := &fakePushSender{}
	d := NewDispatcher(NewPushChannel(push), NewEmailChannel(&fakeEmailSender{}), nil, nil)

	rep := d.Dispatch(context.Background(), "u-1", reminderEvent(), contacts.ContactInfo{Email: "ana@example.com"})

	assert.Equal(t, StatusDegraded, rep.Push.Status)
	assert.Empty(t, push.calls, "push transport must not be called without token")
}

func TestDispatch_InvalidEmail_IsHardFailure_PushStillAttempted(t *testing.T) {
	push := &fakePushSender{}
	d := NewDispatcher(NewPushChannel(push), NewEmailChannel(&fakeEmailSender{}), nil, nil)

	rep := d.Dispatch(context.Background(), "u-1", reminderEvent(), contacts.ContactInfo{
		Email: "not-an-email", PushToken: "tok-1",
	})

	assert.Equal(t, StatusFailed, rep.Email.Status)
	assert.Contains(t, rep.Email.Error, ErrInvalidRecipient.Error())
	assert.Equal(t, StatusSent, rep.Push.Status)
	require.Len(t, rep.Warnings(), 1)
}

func TestDispatch_TransportErrorAndPanic_AreIsolated(t *testing.T) {
	push := &fakePushSender{err: errors.New("fcm 500")}
	email := &fakeEmailSender{panic: true}
	d := NewDispatcher(NewPushChannel(push), NewEmailChannel(email), nil, nil)

	rep := d.Dispatch(context.Background(), "u-1", ProfileChangeConfirmation{
		ChangedFields: []string{"email"},
		ChangedAt:     time.Now(),
	}, contacts.ContactInfo{Email: "ana@example.com", PushToken: "tok-1"})

	assert.Equal(t, StatusFailed, rep.Push.Status)
	assert.Contains(t, rep.Push.Error, "fcm 500")
	assert.Equal(t, StatusFailed, rep.Email.Status)
	assert.True(t, strings.HasPrefix(rep.Email.Error, "panic:"))
	assert.False(t, rep.Delivered())
	assert.Len(t, push.calls, 1)
}

func TestDispatch_NilChannels(t *testing.T) {
	d := NewDispatcher(nil, nil, nil, nil)
	rep := d.Dispatch(context.Background(), "u-1", reminderEvent(), contacts.ContactInfo{})
	assert.Equal(t, StatusDegraded, rep.Push.Status)
	assert.Equal(t, StatusDegraded, rep.Email.Status)
}

func TestEmailChannel_ValidatesRecipientBeforeTransport(t *testing.T) {
	ch := NewEmailChannel(nil)

	_, err := ch.Send(context.Background(), Message{Recipient: "", Title: "x"})
	assert.ErrorIs(t, err, ErrInvalidRecipient)

	_, err = ch.Send(context.Background(), Message{Recipient: "ana@example.com", Title: "x"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestValidAddress(t *testing.T) {
	assert.True(t, ValidAddress("a@b.co"))
	assert.False(t, ValidAddress("@b.co"))
	assert.False(t, ValidAddress("a@"))
	assert.False(t, ValidAddress("a b@c.d"))
	assert.False(t, ValidAddress("plain"))
}

func TestPushChannel_WrapsTransportError(t *testing.T) {
	ch := NewPushChannel(&fakePushSender{err: errors.New("boom")})
	_, err := ch.Send(context.Background(), Message{Recipient: "tok"})

	var ce *ChannelError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ChannelPush, ce.Channel)
}
