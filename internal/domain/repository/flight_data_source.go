package repository

import (
	"context"

	"flight-tracker-service/internal/domain/entity"
)

// FlightDataSource looks up the current state of a flight by its number
type FlightDataSource interface {
	Lookup(ctx context.Context, flightNumber string) (entity.Flight, error)
}
