package odin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"medication-reminders/internal/platform/httpclient"
	"medication-reminders/internal/ports/auth"
	"medication-reminders/internal/ports/contacts"
)

var (
	ErrOdinNotConfigured = errors.New("odin client not configured")
	ErrOdinUnauthorized  = errors.New("odin unauthorized")
	ErrOdinUpstream      = errors.New("odin upstream error")
)

// Config del cliente Odin (IAM + perfiles).
type Config struct {
	BaseURL string
	APIKey  string

	// Header de la API key. Vacío = "X-Api-Key".
	APIKeyHeader string

	Timeout time.Duration
}

type Client struct {
	http *httpclient.Client
}

func NewClient(cfg Config) (*Client, error) {
	h := strings.TrimSpace(cfg.APIKeyHeader)
	if h == "" {
		h = "X-Api-Key"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	hc, err := httpclient.New(cfg.BaseURL, timeout)
	if err != nil {
		return nil, err
	}
	if key := strings.TrimSpace(cfg.APIKey); key != "" {
		hc.Headers[h] = key
	}
	return &Client{http: hc}, nil
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.http != nil && c.http.BaseURL != "" && len(c.http.Headers) > 0
}

const (
	verifyPath  = "/v1/tokens/verify"
	profilePath = "/v1/users/%s/profile"
)

// VerifyToken llama a Odin para verificar un token y traer claims.
func (c *Client) VerifyToken(ctx context.Context, token string) (auth.Claims, error) {
	if !c.IsConfigured() {
		return auth.Claims{}, ErrOdinNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrOdinUnauthorized
	}

	var out struct {
		UserID string `json:"user_id"`
		Email  string `json:"email"`
		Name   string `json:"name"`
	}
	err := c.http.PostJSON(ctx, verifyPath,
		// Algunos IAM esperan el token en Authorization, aunque también vaya en body.
		map[string]string{"Authorization": "Bearer " + token},
		map[string]string{"token": token},
		&out,
	)
	if err != nil {
		return auth.Claims{}, mapError(err)
	}

	out.UserID = strings.TrimSpace(out.UserID)
	if out.UserID == "" {
		return auth.Claims{}, errors.New("odin response missing user_id")
	}

	return auth.Claims{
		UserID: out.UserID,
		Email:  strings.TrimSpace(out.Email),
		Name:   strings.TrimSpace(out.Name),
	}, nil
}

// Contact implementa contacts.Resolver con el perfil del usuario en Odin.
func (c *Client) Contact(ctx context.Context, userID string) (contacts.ContactInfo, error) {
	if !c.IsConfigured() {
		return contacts.ContactInfo{}, ErrOdinNotConfigured
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return contacts.ContactInfo{}, contacts.ErrNotFound
	}

	var out struct {
		Email     string `json:"email"`
		Name      string `json:"name"`
		PushToken string `json:"push_token"`
	}
	if err := c.http.GetJSON(ctx, fmt.Sprintf(profilePath, url.PathEscape(userID)), &out); err != nil {
		if httpclient.StatusCode(err) == http.StatusNotFound {
			return contacts.ContactInfo{}, contacts.ErrNotFound
		}
		return contacts.ContactInfo{}, mapError(err)
	}

	return contacts.ContactInfo{
		Email:     strings.TrimSpace(out.Email),
		Name:      strings.TrimSpace(out.Name),
		PushToken: strings.TrimSpace(out.PushToken),
	}, nil
}

func mapError(err error) error {
	switch httpclient.StatusCode(err) {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrOdinUnauthorized
	}
	return fmt.Errorf("%w: %v", ErrOdinUpstream, err)
}
