package repository

import (
	"context"

	"flight-tracker-service/internal/domain/entity"
)

// Notifier delivers user notifications.
// Scheduling a reminder with an id that is already pending replaces it.
type Notifier interface {
	Schedule(ctx context.Context, reminder entity.Reminder) error
	FireNow(ctx context.Context, title, body string) error
	Cancel(ctx context.Context, ids []string) error
}

// EmailSender sends flight update emails
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LocationProvider returns the last known user position, if any
type LocationProvider interface {
	CurrentCoordinate(ctx context.Context) (entity.Coordinate, bool)
}
