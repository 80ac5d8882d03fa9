package repository

import (
	"context"
	"sync"

	"flight-tracker-service/internal/domain/entity"
	"flight-tracker-service/internal/domain/repository"
	"flight-tracker-service/pkg/logger"
)

// MemoryTrackingRepository keeps tracking state in process memory.
// It stores the same encoded blobs as the MongoDB repository.
type MemoryTrackingRepository struct {
	mu     sync.Mutex
	values map[string][]byte
	logger logger.Logger
}

// NewMemoryTrackingRepository creates an empty in-memory repository
func NewMemoryTrackingRepository(logger logger.Logger) *MemoryTrackingRepository {
	return &MemoryTrackingRepository{
		values: make(map[string][]byte),
		logger: logger,
	}
}

var _ repository.TrackingRepository = (*MemoryTrackingRepository)(nil)

// SaveFlights stores the tracked flight set
func (r *MemoryTrackingRepository) SaveFlights(_ context.Context, flights []entity.Flight) error {
	data, err := encodeFlights(flights)
	if err != nil {
		return err
	}
	r.Set(entity.KeyTrackedFlights, data)
	return nil
}

// LoadFlights returns the stored flights, or none when absent or unreadable
func (r *MemoryTrackingRepository) LoadFlights(_ context.Context) ([]entity.Flight, error) {
	flights, err := decodeFlights(r.Get(entity.KeyTrackedFlights))
	if err != nil {
		r.logger.Warn("Discarding unreadable tracked flights", "error", err)
		return []entity.Flight{}, nil
	}
	return flights, nil
}

// SaveSettings stores the user settings
func (r *MemoryTrackingRepository) SaveSettings(_ context.Context, settings entity.UserSettings) error {
	r.Set(entity.KeyUserEmail, []byte(settings.Email))
	r.Set(entity.KeyHomeAddress, []byte(settings.HomeAddress))
	return nil
}

// LoadSettings returns the stored settings
func (r *MemoryTrackingRepository) LoadSettings(_ context.Context) (entity.UserSettings, error) {
	return entity.UserSettings{
		Email:       string(r.Get(entity.KeyUserEmail)),
		HomeAddress: string(r.Get(entity.KeyHomeAddress)),
	}, nil
}

// Set writes a raw value
func (r *MemoryTrackingRepository) Set(key string, value []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[key] = append([]byte(nil), value...)
}

// Get reads a raw value
func (r *MemoryTrackingRepository) Get(key string) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]byte(nil), r.values[key]...)
}
