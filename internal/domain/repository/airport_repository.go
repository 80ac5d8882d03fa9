package repository

import (
	"context"

	"flight-tracker-service/internal/domain/entity"
)

// AirportRepository defines the interface for airport reference data
type AirportRepository interface {
	GetByCode(ctx context.Context, code string) (*entity.Airport, error)
}

// AirportDirectory resolves an IATA code to coordinates.
// Unknown codes resolve to entity.UnknownCoordinate, never an error.
type AirportDirectory interface {
	Coordinates(ctx context.Context, code string) entity.Coordinate
}
