// Package fcm entrega notificaciones push vía Firebase Cloud Messaging.
package fcm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"medication-reminders/internal/domain/notifications"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/errorutils"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

var ErrNoCredentials = errors.New("fcm credentials file not configured")

// messagingClient es la parte de *messaging.Client que usamos.
type messagingClient interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// Sender implementa notifications.PushSender.
type Sender struct {
	client messagingClient
}

// New inicializa la app de Firebase con un archivo de service account.
func New(ctx context.Context, credentialsFile string) (*Sender, error) {
	credentialsFile = strings.TrimSpace(credentialsFile)
	if credentialsFile == "" {
		return nil, ErrNoCredentials
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("fcm: init app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("fcm: messaging client: %w", err)
	}
	return &Sender{client: client}, nil
}

func (s *Sender) SendPush(ctx context.Context, token, title, body string, data map[string]string) (string, error) {
	id, err := s.client.Send(ctx, buildMessage(token, title, body, data))
	if err != nil {
		// Token dado de baja o inválido: el problema es el destinatario.
		if messaging.IsUnregistered(err) || errorutils.IsInvalidArgument(err) {
			return "", fmt.Errorf("%w: %v", notifications.ErrInvalidRecipient, err)
		}
		return "", fmt.Errorf("fcm send: %w", err)
	}
	return id, nil
}

func buildMessage(token, title, body string, data map[string]string) *messaging.Message {
	payload := make(map[string]string, len(data))
	for k, v := range data {
		if v != "" {
			payload[k] = v
		}
	}

	return &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: payload,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "medication-reminders",
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Sound: "default"},
			},
		},
	}
}
