package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"flight-tracker-service/internal/domain/entity"
	"flight-tracker-service/pkg/logger"
)

type mockAirportRepo struct {
	getByCode func(ctx context.Context, code string) (*entity.Airport, error)
	calls     int
}

func (m *mockAirportRepo) GetByCode(ctx context.Context, code string) (*entity.Airport, error) {
	m.calls++
	return m.getByCode(ctx, code)
}

func TestAirportDirectory_BuiltinTable(t *testing.T) {
	dir := NewAirportDirectory(nil, logger.NewNopLogger())

	got := dir.Coordinates(context.Background(), "jfk")

	assert.Equal(t, entity.Coordinate{Latitude: 40.6413, Longitude: -73.7781}, got)
}

func TestAirportDirectory_UnknownWithoutFallback(t *testing.T) {
	dir := NewAirportDirectory(nil, logger.NewNopLogger())

	assert.True(t, dir.Coordinates(context.Background(), "XYZ").IsUnknown())
	assert.True(t, dir.Coordinates(context.Background(), "").IsUnknown())
}

func TestAirportDirectory_Fallback(t *testing.T) {
	repo := &mockAirportRepo{getByCode: func(_ context.Context, code string) (*entity.Airport, error) {
		if code == "CGK" {
			return &entity.Airport{Code: "CGK", Latitude: -6.1256, Longitude: 106.6558}, nil
		}
		return nil, gorm.ErrRecordNotFound
	}}
	dir := NewAirportDirectory(repo, logger.NewNopLogger())

	assert.Equal(t, entity.Coordinate{Latitude: -6.1256, Longitude: 106.6558}, dir.Coordinates(context.Background(), "cgk"))
	assert.True(t, dir.Coordinates(context.Background(), "QQQ").IsUnknown())

	// built-in codes never reach the database
	dir.Coordinates(context.Background(), "LAX")
	assert.Equal(t, 2, repo.calls)
}

func TestAirportDirectory_FallbackErrorDegradesToUnknown(t *testing.T) {
	repo := &mockAirportRepo{getByCode: func(context.Context, string) (*entity.Airport, error) {
		return nil, errors.New("connection refused")
	}}
	dir := NewAirportDirectory(repo, logger.NewNopLogger())

	assert.True(t, dir.Coordinates(context.Background(), "CGK").IsUnknown())
}
