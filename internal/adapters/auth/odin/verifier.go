package odin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"medication-reminders/internal/ports/auth"
	"medication-reminders/internal/ports/contacts"
)

var ErrTokenEmpty = errors.New("token is empty")

const (
	defaultClaimsTTL = 30 * time.Second
	maxCachedTokens  = 1024
)

type tokenSource interface {
	VerifyToken(ctx context.Context, token string) (auth.Claims, error)
}

type cachedClaims struct {
	claims  auth.Claims
	expires time.Time
}

// Verifier implementa auth.AuthVerifier contra Odin. Si el token no trae email o nombre los
// completa desde el perfil, que es de donde salen los recordatorios por email.
// Los tokens válidos se recuerdan 30s para no consultar Odin en cada request.
type Verifier struct {
	tokens   tokenSource
	profiles contacts.Resolver
	ttl      time.Duration
	now      func() time.Time

	mu    sync.Mutex
	cache map[string]cachedClaims
}

func NewVerifier(client *Client) *Verifier {
	return newVerifier(client, client, defaultClaimsTTL, time.Now)
}

func newVerifier(tokens tokenSource, profiles contacts.Resolver, ttl time.Duration, now func() time.Time) *Verifier {
	return &Verifier{
		tokens:   tokens,
		profiles: profiles,
		ttl:      ttl,
		now:      now,
		cache:    make(map[string]cachedClaims),
	}
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	if v == nil || v.tokens == nil {
		return auth.Claims{}, ErrOdinNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrTokenEmpty
	}

	if c, ok := v.cached(token); ok {
		return c, nil
	}

	claims, err := v.tokens.VerifyToken(ctx, token)
	if err != nil {
		return auth.Claims{}, fmt.Errorf("odin verify: %w", err)
	}
	claims.UserID = strings.TrimSpace(claims.UserID)
	if claims.UserID == "" {
		return auth.Claims{}, errors.New("odin claims missing user id")
	}

	claims = v.withProfile(ctx, claims)
	v.remember(token, claims)
	return claims, nil
}

// withProfile completa email/nombre. Un perfil que no responde no invalida el token.
func (v *Verifier) withProfile(ctx context.Context, c auth.Claims) auth.Claims {
	if v.profiles == nil || (c.Email != "" && c.Name != "") {
		return c
	}
	info, err := v.profiles.Contact(ctx, c.UserID)
	if err != nil {
		return c
	}
	if c.Email == "" {
		c.Email = info.Email
	}
	if c.Name == "" {
		c.Name = info.Name
	}
	return c
}

func (v *Verifier) cached(token string) (auth.Claims, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	e, ok := v.cache[token]
	if !ok {
		return auth.Claims{}, false
	}
	if !v.now().Before(e.expires) {
		delete(v.cache, token)
		return auth.Claims{}, false
	}
	return e.claims, true
}

func (v *Verifier) remember(token string, c auth.Claims) {
	if v.ttl <= 0 {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()

	now := v.now()
	if len(v.cache) >= maxCachedTokens {
		for k, e := range v.cache {
			if !now.Before(e.expires) {
				delete(v.cache, k)
			}
		}
		// Todo vigente: se vacía antes que crecer sin límite.
		if len(v.cache) >= maxCachedTokens {
			clear(v.cache)
		}
	}
	v.cache[token] = cachedClaims{claims: c, expires: now.Add(v.ttl)}
}
