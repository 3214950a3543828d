package notifications

import (
	"bytes"
	"context"
	"html/template"
	"strings"
	"time"
)

// EmailSender es el transporte de email (SMTP en producción).
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, text, html string) (string, error)
}

type EmailChannel struct {
	sender EmailSender
	now    func() time.Time
}

func NewEmailChannel(sender EmailSender) *EmailChannel {
	return &EmailChannel{sender: sender, now: time.Now}
}

func (c *EmailChannel) Name() string { return ChannelEmail }

func (c *EmailChannel) Configured() bool {
	return c != nil && c.sender != nil
}

// ValidAddress es el chequeo básico: algo antes y después de una '@'.
func ValidAddress(addr string) bool {
	addr = strings.TrimSpace(addr)
	at := strings.LastIndex(addr, "@")
	return at > 0 && at < len(addr)-1 && !strings.ContainsAny(addr, " \t\r\n")
}

func (c *EmailChannel) Send(ctx context.Context, msg Message) (DeliveryAck, error) {
	// Destinatario primero: un email malo es falla dura aunque no haya transporte.
	if !ValidAddress(msg.Recipient) {
		return DeliveryAck{}, ErrInvalidRecipient
	}
	if !c.Configured() {
		return DeliveryAck{}, ErrNotConfigured
	}

	html, err := renderEmail(msg)
	if err != nil {
		return DeliveryAck{}, &ChannelError{Channel: ChannelEmail, Err: err}
	}

	id, err := c.sender.SendEmail(ctx, strings.TrimSpace(msg.Recipient), msg.Title, msg.Body, html)
	if err != nil {
		return DeliveryAck{}, &ChannelError{Channel: ChannelEmail, Err: err}
	}
	return DeliveryAck{Channel: ChannelEmail, ID: id, AcceptedAt: c.now()}, nil
}

var emailTemplate = template.Must(template.New("email").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2 style="color: #2c7be5;">{{.Title}}</h2>
  {{if .UserName}}<p>Hello {{.UserName}},</p>{{end}}
  <p>{{.Body}}</p>
  {{if .MedicationName}}
  <table style="border-collapse: collapse;">
    <tr><td><strong>Medication</strong></td><td>{{.MedicationName}}</td></tr>
    {{if .Dosage}}<tr><td><strong>Dosage</strong></td><td>{{.Dosage}}</td></tr>{{end}}
    {{if .Instructions}}<tr><td><strong>Instructions</strong></td><td>{{.Instructions}}</td></tr>{{end}}
  </table>
  {{end}}
</body>
</html>`))

func renderEmail(msg Message) (string, error) {
	data := struct {
		Title          string
		Body           string
		UserName       string
		MedicationName string
		Dosage         string
		Instructions   string
	}{
		Title:          msg.Title,
		Body:           msg.Body,
		UserName:       msg.Metadata["userName"],
		MedicationName: msg.Metadata["medicationName"],
		Dosage:         msg.Metadata["dosage"],
		Instructions:   msg.Metadata["instructions"],
	}

	var buf bytes.Buffer
	if err := emailTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
