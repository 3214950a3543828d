package fcm

import (
	"context"
	"errors"
	"testing"

	"firebase.google.com/go/v4/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	got *messaging.Message
	err error
}

func (f *fakeClient) Send(ctx context.Context, m *messaging.Message) (string, error) {
	f.got = m
	if f.err != nil {
		return "", f.err
	}
	return "projects/p/messages/1", nil
}

func TestSendPush_BuildsMessage(t *testing.T) {
	fc := &fakeClient{}
	s := &Sender{client: fc}

	id, err := s.SendPush(context.Background(), "tok-1", "Medication reminder", "Time to take Ibuprofen", map[string]string{
		"medicationId": "m1",
		"dosage":       "",
	})
	require.NoError(t, err)
	assert.Equal(t, "projects/p/messages/1", id)

	require.NotNil(t, fc.got)
	assert.Equal(t, "tok-1", fc.got.Token)
	assert.Equal(t, "Medication reminder", fc.got.Notification.Title)
	assert.Equal(t, map[string]string{"medicationId": "m1"}, fc.got.Data, "empty values are dropped")
	assert.Equal(t, "high", fc.got.Android.Priority)
}

func TestSendPush_WrapsTransportError(t *testing.T) {
	s := &Sender{client: &fakeClient{err: errors.New("unavailable")}}

	_, err := s.SendPush(context.Background(), "tok-1", "t", "b", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fcm send")
}

func TestNew_RequiresCredentials(t *testing.T) {
	_, err := New(context.Background(), "")
	assert.ErrorIs(t, err, ErrNoCredentials)
}
