package notifications

import (
	"fmt"
	"strings"
	"time"

	"medication-reminders/internal/domain/timespec"
)

type EventKind string

const (
	EventReminderFired             EventKind = "reminder_fired"
	EventProfileChangeConfirmation EventKind = "profile_change_confirmation"
)

// Event es una variante cerrada: solo ReminderFired y ProfileChangeConfirmation la implementan.
type Event interface {
	Kind() EventKind
	content() content
}

type content struct {
	title    string
	body     string
	metadata map[string]string
}

// ReminderFired se emite cuando un timer local de un horario vence.
type ReminderFired struct {
	MedicationID   string
	MedicationName string
	Dosage         string
	Instructions   string
	Time           timespec.TimeSpec
	FireAt         time.Time
}

func (ReminderFired) Kind() EventKind { return EventReminderFired }

func (e ReminderFired) content() content {
	body := fmt.Sprintf("Time to take %s", e.MedicationName)
	if d := strings.TrimSpace(e.Dosage); d != "" {
		body += fmt.Sprintf(" (%s)", d)
	}
	body += fmt.Sprintf(" - scheduled for %s.", e.Time)

	return content{
		title: "Medication reminder",
		body:  body,
		metadata: map[string]string{
			"type":           string(EventReminderFired),
			"medicationId":   e.MedicationID,
			"medicationName": e.MedicationName,
			"dosage":         e.Dosage,
			"instructions":   e.Instructions,
			"time":           e.Time.String(),
			"fireAt":         e.FireAt.Format(time.RFC3339),
		},
	}
}

// ProfileChangeConfirmation confirma al usuario que su perfil cambió.
type ProfileChangeConfirmation struct {
	UserName      string
	ChangedFields []string
	ChangedAt     time.Time
}

func (ProfileChangeConfirmation) Kind() EventKind { return EventProfileChangeConfirmation }

func (e ProfileChangeConfirmation) content() content {
	fields := "your profile"
	if len(e.ChangedFields) > 0 {
		fields = strings.Join(e.ChangedFields, ", ")
	}
	return content{
		title: "Profile updated",
		body:  fmt.Sprintf("We updated %s on %s. If this wasn't you, contact support.", fields, e.ChangedAt.Format("2006-01-02 15:04")),
		metadata: map[string]string{
			"type":     string(EventProfileChangeConfirmation),
			"userName": e.UserName,
		},
	}
}
