package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"medication-reminders/internal/ports/contacts"
)

// contactRegistry guarda contactos en memoria; en dev reemplaza al sistema de perfiles.
type contactRegistry struct {
	mu       sync.RWMutex
	byUserID map[string]contacts.ContactInfo
}

func NewContactRegistry() contacts.Registry {
	return &contactRegistry{
		byUserID: make(map[string]contacts.ContactInfo),
	}
}

func (r *contactRegistry) Contact(ctx context.Context, userID string) (contacts.ContactInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	info, ok := r.byUserID[userID]
	if !ok {
		return contacts.ContactInfo{}, contacts.ErrNotFound
	}
	return info, nil
}

func (r *contactRegistry) SetContact(ctx context.Context, userID string, info contacts.ContactInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(userID) == "" {
		return errors.New("user id required")
	}
	r.byUserID[userID] = contacts.ContactInfo{
		Email:     strings.TrimSpace(info.Email),
		PushToken: strings.TrimSpace(info.PushToken),
		Name:      strings.TrimSpace(info.Name),
	}
	return nil
}
