package repository

import (
	"context"

	"flight-tracker-service/internal/domain/entity"
	"flight-tracker-service/internal/domain/repository"
)

// StaticLocationProvider reports a fixed user position, or none
type StaticLocationProvider struct {
	coord *entity.Coordinate
}

var _ repository.LocationProvider = (*StaticLocationProvider)(nil)

// NewStaticLocationProvider creates a provider. A nil coord means the position is unknown.
func NewStaticLocationProvider(coord *entity.Coordinate) *StaticLocationProvider {
	return &StaticLocationProvider{coord: coord}
}

// CurrentCoordinate returns the configured position
func (p *StaticLocationProvider) CurrentCoordinate(_ context.Context) (entity.Coordinate, bool) {
	if p.coord == nil {
		return entity.Coordinate{}, false
	}
	return *p.coord, true
}
