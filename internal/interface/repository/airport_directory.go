package repository

import (
	"context"
	"errors"
	"strings"

	"flight-tracker-service/internal/domain/entity"
	"flight-tracker-service/internal/domain/repository"
	"flight-tracker-service/pkg/logger"

	"gorm.io/gorm"
)

// builtinAirports covers the busiest US airports
var builtinAirports = map[string]entity.Coordinate{
	"JFK": {Latitude: 40.6413, Longitude: -73.7781},
	"LAX": {Latitude: 33.9425, Longitude: -118.4081},
	"ORD": {Latitude: 41.9742, Longitude: -87.9073},
	"DFW": {Latitude: 32.8998, Longitude: -97.0403},
	"SFO": {Latitude: 37.6213, Longitude: -122.3790},
	"BOS": {Latitude: 42.3656, Longitude: -71.0096},
	"SEA": {Latitude: 47.4502, Longitude: -122.3088},
	"MIA": {Latitude: 25.7959, Longitude: -80.2870},
	"LAS": {Latitude: 36.0840, Longitude: -115.1537},
	"PHX": {Latitude: 33.4373, Longitude: -112.0078},
	"ATL": {Latitude: 33.6407, Longitude: -84.4277},
	"CLT": {Latitude: 35.2144, Longitude: -80.9473},
	"DEN": {Latitude: 39.8561, Longitude: -104.6737},
	"MSP": {Latitude: 44.8848, Longitude: -93.2223},
	"DTW": {Latitude: 42.2162, Longitude: -83.3554},
}

// AirportDirectory resolves airport codes from the built-in table and,
// when configured, from the airport reference table.
type AirportDirectory struct {
	static   map[string]entity.Coordinate
	fallback repository.AirportRepository
	logger   logger.Logger
}

var _ repository.AirportDirectory = (*AirportDirectory)(nil)

// NewAirportDirectory creates a directory. fallback may be nil.
func NewAirportDirectory(fallback repository.AirportRepository, logger logger.Logger) *AirportDirectory {
	return &AirportDirectory{
		static:   builtinAirports,
		fallback: fallback,
		logger:   logger,
	}
}

// Coordinates returns the airport position or entity.UnknownCoordinate
func (d *AirportDirectory) Coordinates(ctx context.Context, code string) entity.Coordinate {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return entity.UnknownCoordinate
	}

	if coord, ok := d.static[code]; ok {
		return coord
	}

	if d.fallback == nil {
		return entity.UnknownCoordinate
	}

	airport, err := d.fallback.GetByCode(ctx, code)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			d.logger.Warn("Airport lookup failed", "code", code, "error", err)
		}
		return entity.UnknownCoordinate
	}

	return airport.Coordinate()
}
