package contacts

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("contact not found")

// ContactInfo son los datos de entrega de un usuario. PushToken vacío = sin dispositivo registrado.
type ContactInfo struct {
	Email     string
	PushToken string
	Name      string
}

// Resolver obtiene los datos de contacto de un usuario (sistema externo de perfiles).
type Resolver interface {
	Contact(ctx context.Context, userID string) (ContactInfo, error)
}

// Registry es un Resolver que además acepta altas/cambios (modo dev, sin sistema de perfiles).
type Registry interface {
	Resolver
	SetContact(ctx context.Context, userID string, info ContactInfo) error
}
