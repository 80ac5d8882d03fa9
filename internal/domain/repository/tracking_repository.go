package repository

import (
	"context"

	"flight-tracker-service/internal/domain/entity"
)

// TrackingRepository persists the tracked flight set and the user settings.
// Load methods return empty values when nothing is stored or the stored data is unreadable.
type TrackingRepository interface {
	SaveFlights(ctx context.Context, flights []entity.Flight) error
	LoadFlights(ctx context.Context) ([]entity.Flight, error)
	SaveSettings(ctx context.Context, settings entity.UserSettings) error
	LoadSettings(ctx context.Context) (entity.UserSettings, error)
}
