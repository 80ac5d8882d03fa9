package entity

import (
	"time"

	"github.com/google/uuid"
)

// ReminderKind identifies which reminder a notification belongs to
type ReminderKind string

const (
	ReminderDeparture ReminderKind = "departure"
	ReminderLeave     ReminderKind = "leave"
)

// Reminder is a local notification scheduled for a future instant
type Reminder struct {
	ID     string       `json:"id"`
	Kind   ReminderKind `json:"kind"`
	FireAt time.Time    `json:"fireAt"`
	Title  string       `json:"title"`
	Body   string       `json:"body"`
}

// ReminderID builds the notification id of a flight reminder
func ReminderID(kind ReminderKind, flightID uuid.UUID) string {
	return string(kind) + "-" + flightID.String()
}

// ReminderIDs returns every reminder id that may exist for a flight
func ReminderIDs(flightID uuid.UUID) []string {
	return []string{
		ReminderID(ReminderDeparture, flightID),
		ReminderID(ReminderLeave, flightID),
	}
}
