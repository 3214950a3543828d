package notifications

import (
	"context"
	"strings"
	"time"
)

// PushSender es el transporte de push (FCM en producción).
type PushSender interface {
	SendPush(ctx context.Context, token, title, body string, data map[string]string) (string, error)
}

// PushChannel entrega a un token de dispositivo.
// Sin transporte o sin token devuelve ErrNotConfigured: la ausencia de push nunca bloquea nada.
type PushChannel struct {
	sender PushSender
	now    func() time.Time
}

func NewPushChannel(sender PushSender) *PushChannel {
	return &PushChannel{sender: sender, now: time.Now}
}

func (c *PushChannel) Name() string { return ChannelPush }

// Configured indica si hay transporte; un token faltante es problema del destinatario, no del canal.
func (c *PushChannel) Configured() bool {
	return c != nil && c.sender != nil
}

func (c *PushChannel) Send(ctx context.Context, msg Message) (DeliveryAck, error) {
	if !c.Configured() {
		return DeliveryAck{}, ErrNotConfigured
	}
	token := strings.TrimSpace(msg.Recipient)
	if token == "" {
		return DeliveryAck{}, ErrNotConfigured
	}

	id, err := c.sender.SendPush(ctx, token, msg.Title, msg.Body, msg.Metadata)
	if err != nil {
		return DeliveryAck{}, &ChannelError{Channel: ChannelPush, Err: err}
	}
	return DeliveryAck{Channel: ChannelPush, ID: id, AcceptedAt: c.now()}, nil
}
