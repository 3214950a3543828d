package notifications

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotConfigured es una falla blanda: el canal no puede entregar (sin token o sin transporte)
	// y el dispatcher la trata como degradación, no como error.
	ErrNotConfigured = errors.New("channel not configured")
	// ErrInvalidRecipient es una falla dura: destinatario ausente o mal formado.
	ErrInvalidRecipient = errors.New("invalid recipient")
)

const (
	ChannelPush  = "push"
	ChannelEmail = "email"
)

// Message es lo que recibe un canal. Metadata viaja como data en push y alimenta la plantilla de email.
type Message struct {
	Recipient string
	Title     string
	Body      string
	Metadata  map[string]string
}

type DeliveryAck struct {
	Channel    string
	ID         string
	AcceptedAt time.Time
}

// ChannelError envuelve fallas de transporte de un canal.
type ChannelError struct {
	Channel string
	Err     error
}

func (e *ChannelError) Error() string {
	return fmt.Sprintf("%s channel: %v", e.Channel, e.Err)
}

func (e *ChannelError) Unwrap() error { return e.Err }

// Channel es una primitiva de entrega independiente y falible.
type Channel interface {
	Name() string
	Send(ctx context.Context, msg Message) (DeliveryAck, error)
}
