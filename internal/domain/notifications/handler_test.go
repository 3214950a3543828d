package notifications

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"medication-reminders/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newNotifyRouter(push *PushChannel, email *EmailChannel) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.AuthContext(nil))
	RegisterRoutes(r, push, email, nil, nil)
	return r
}

func postJSON(t *testing.T, h http.Handler, path, userID string, body any) int {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-Debug-User-ID", userID)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr.Code
}

func TestNotifyHandlers_RequireUser(t *testing.T) {
	pushSender := &fakePushSender{}
	emailSender := &fakeEmailSender{}
	h := newNotifyRouter(NewPushChannel(pushSender), NewEmailChannel(emailSender))

	pushBody := map[string]any{"token": "tok-1", "title": "Medication reminder", "body": "Time to take Ibuprofen"}
	emailBody := map[string]any{"to": "ana@example.com", "subject": "Medication reminder", "message": "Time to take Ibuprofen"}

	assert.Equal(t, http.StatusUnauthorized, postJSON(t, h, "/notify/push", "", pushBody))
	assert.Equal(t, http.StatusUnauthorized, postJSON(t, h, "/notify/email", "", emailBody))
	assert.Empty(t, pushSender.calls, "anonymous push must not reach the transport")
	assert.Empty(t, emailSender.to, "anonymous email must not reach the transport")

	assert.Equal(t, http.StatusOK, postJSON(t, h, "/notify/push", "user-1", pushBody))
	assert.Equal(t, http.StatusOK, postJSON(t, h, "/notify/email", "user-1", emailBody))
	assert.Equal(t, []string{"tok-1"}, pushSender.calls)
	assert.Equal(t, []string{"ana@example.com"}, emailSender.to)
}

func TestNotifyHandlers_UnauthenticatedBeforeUnconfigured(t *testing.T) {
	h := newNotifyRouter(NewPushChannel(nil), NewEmailChannel(nil))
	body := map[string]any{"token": "tok-1", "title": "Medication reminder"}

	assert.Equal(t, http.StatusUnauthorized, postJSON(t, h, "/notify/push", "", body))
	assert.Equal(t, http.StatusServiceUnavailable, postJSON(t, h, "/notify/push", "user-1", body))
}
