package odin

import (
	"context"
	"errors"
	"testing"
	"time"

	"medication-reminders/internal/ports/auth"
	"medication-reminders/internal/ports/contacts"
)

type countingTokens struct {
	calls  int
	claims auth.Claims
	err    error
}

func (c *countingTokens) VerifyToken(ctx context.Context, token string) (auth.Claims, error) {
	c.calls++
	return c.claims, c.err
}

type profileStub map[string]contacts.ContactInfo

func (p profileStub) Contact(ctx context.Context, userID string) (contacts.ContactInfo, error) {
	info, ok := p[userID]
	if !ok {
		return contacts.ContactInfo{}, contacts.ErrNotFound
	}
	return info, nil
}

func TestVerifier_FillsContactFromProfile(t *testing.T) {
	tokens := &countingTokens{claims: auth.Claims{UserID: "u1"}}
	profiles := profileStub{"u1": {Email: "ana@example.com", Name: "Ana", PushToken: "tok-1"}}
	v := newVerifier(tokens, profiles, 0, time.Now)

	claims, err := v.Verify(context.Background(), "good")
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if claims.Email != "ana@example.com" || claims.Name != "Ana" {
		t.Fatalf("expected email and name from profile, got %+v", claims)
	}

	// Lo que trae el token manda sobre el perfil.
	tokens.claims = auth.Claims{UserID: "u1", Email: "ana@work.example.com"}
	claims, err = v.Verify(context.Background(), "good")
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if claims.Email != "ana@work.example.com" || claims.Name != "Ana" {
		t.Fatalf("token email must win, got %+v", claims)
	}
}

func TestVerifier_MissingProfileKeepsToken(t *testing.T) {
	v := newVerifier(&countingTokens{claims: auth.Claims{UserID: "u2"}}, profileStub{}, 0, time.Now)

	claims, err := v.Verify(context.Background(), "good")
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if claims.UserID != "u2" || claims.Email != "" {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestVerifier_CachesValidTokensUntilTTL(t *testing.T) {
	now := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	tokens := &countingTokens{claims: auth.Claims{UserID: "u1", Email: "ana@example.com", Name: "Ana"}}
	v := newVerifier(tokens, nil, 30*time.Second, func() time.Time { return now })

	for i := 0; i < 3; i++ {
		if _, err := v.Verify(context.Background(), "good"); err != nil {
			t.Fatalf("Verify error: %v", err)
		}
	}
	if tokens.calls != 1 {
		t.Fatalf("expected one upstream call, got %d", tokens.calls)
	}

	now = now.Add(30 * time.Second)
	if _, err := v.Verify(context.Background(), "good"); err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if tokens.calls != 2 {
		t.Fatalf("expected a fresh call after ttl, got %d", tokens.calls)
	}
}

func TestVerifier_RejectionsAreNotCached(t *testing.T) {
	tokens := &countingTokens{err: ErrOdinUnauthorized}
	v := newVerifier(tokens, nil, time.Minute, time.Now)

	for i := 0; i < 2; i++ {
		if _, err := v.Verify(context.Background(), "bad"); !errors.Is(err, ErrOdinUnauthorized) {
			t.Fatalf("expected ErrOdinUnauthorized, got %v", err)
		}
	}
	if tokens.calls != 2 {
		t.Fatalf("rejected tokens must be checked every time, got %d calls", tokens.calls)
	}

	tokens.err = nil
	if _, err := v.Verify(context.Background(), "bad"); err == nil {
		t.Fatalf("expected missing user id error")
	}
}
