package notifications

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"medication-reminders/internal/platform/logger"
	"medication-reminders/internal/platform/metrics"
	"medication-reminders/internal/ports/contacts"

	"golang.org/x/sync/errgroup"
)

type Status string

const (
	StatusSent     Status = "sent"
	StatusDegraded Status = "degraded"
	StatusFailed   Status = "failed"
)

type ChannelResult struct {
	Channel string
	Status  Status
	ID      string
	Error   string
}

// Report junta el resultado de cada canal. Dispatch nunca devuelve error: esto es todo lo que ve quien llama.
type Report struct {
	Kind  EventKind
	Push  ChannelResult
	Email ChannelResult
}

// Delivered es true si al menos un canal entregó.
func (r Report) Delivered() bool {
	return r.Push.Status == StatusSent || r.Email.Status == StatusSent
}

// Warnings lista los canales que no entregaron, en texto para mostrar al usuario.
func (r Report) Warnings() []string {
	var out []string
	for _, cr := range []ChannelResult{r.Push, r.Email} {
		if cr.Status == StatusSent {
			continue
		}
		out = append(out, fmt.Sprintf("%s %s: %s", cr.Channel, cr.Status, cr.Error))
	}
	return out
}

func (r Report) Summary() string {
	return fmt.Sprintf("push: %s, email: %s", r.Push.Status, r.Email.Status)
}

type Dispatcher struct {
	push    Channel
	email   Channel
	log     logger.Logger
	metrics *metrics.Metrics
}

func NewDispatcher(push, email Channel, log logger.Logger, m *metrics.Metrics) *Dispatcher {
	if log == nil {
		log = logger.NewNop()
	}
	return &Dispatcher{push: push, email: email, log: log, metrics: m}
}

// Dispatch manda el evento por push y email en paralelo. Los dos se intentan siempre
// y la falla de uno no afecta al otro.
func (d *Dispatcher) Dispatch(ctx context.Context, userID string, ev Event, to contacts.ContactInfo) Report {
	c := ev.content()
	if name := strings.TrimSpace(to.Name); name != "" && c.metadata["userName"] == "" {
		c.metadata["userName"] = name
	}

	report := Report{Kind: ev.Kind()}

	var g errgroup.Group
	g.Go(func() error {
		report.Push = d.attempt(ctx, ChannelPush, d.push, Message{
			Recipient: to.PushToken, Title: c.title, Body: c.body, Metadata: c.metadata,
		})
		return nil
	})
	g.Go(func() error {
		report.Email = d.attempt(ctx, ChannelEmail, d.email, Message{
			Recipient: to.Email, Title: c.title, Body: c.body, Metadata: c.metadata,
		})
		return nil
	})
	_ = g.Wait()

	fields := map[string]any{
		"user_id": userID,
		"event":   string(report.Kind),
		"push":    string(report.Push.Status),
		"email":   string(report.Email.Status),
	}
	switch {
	case report.Push.Status == StatusFailed || report.Email.Status == StatusFailed:
		fields["warnings"] = report.Warnings()
		d.log.Warn("notification dispatch incomplete", fields)
	default:
		d.log.Info("notification dispatched", fields)
	}

	return report
}

func (d *Dispatcher) attempt(ctx context.Context, name string, ch Channel, msg Message) (res ChannelResult) {
	res.Channel = name

	defer func() {
		if p := recover(); p != nil {
			res.Status = StatusFailed
			res.Error = fmt.Sprintf("panic: %v", p)
		}
		d.metrics.NotificationResult(name, string(res.Status))
	}()

	if ch == nil {
		res.Status = StatusDegraded
		res.Error = ErrNotConfigured.Error()
		return res
	}

	ack, err := ch.Send(ctx, msg)
	switch {
	case err == nil:
		res.Status = StatusSent
		res.ID = ack.ID
	case errors.Is(err, ErrNotConfigured):
		res.Status = StatusDegraded
		res.Error = err.Error()
	default:
		res.Status = StatusFailed
		res.Error = err.Error()
	}
	return res
}
