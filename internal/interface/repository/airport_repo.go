package repository

import (
	"context"
	"strings"
	"time"

	"flight-tracker-service/internal/domain/entity"
	"flight-tracker-service/internal/domain/repository"

	"gorm.io/gorm"
)

// GormAirportRepository implements the AirportRepository interface
type GormAirportRepository struct {
	db *gorm.DB
}

// NewGormAirportRepository creates a new GORM airport repository
func NewGormAirportRepository(db *gorm.DB) repository.AirportRepository {
	return &GormAirportRepository{
		db: db,
	}
}

// Airports GORM model for database mapping
type Airports struct {
	ID        uint           `gorm:"primaryKey"`
	IataCode  string         `gorm:"column:iata_code;unique"`
	Name      string         `gorm:"column:name"`
	CityName  string         `gorm:"column:city_name"`
	Latitude  float64        `gorm:"column:latitude"`
	Longitude float64        `gorm:"column:longitude"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides the default table name
func (Airports) TableName() string {
	return "m_airports"
}

// GetByCode finds an airport by IATA code
func (r *GormAirportRepository) GetByCode(ctx context.Context, code string) (*entity.Airport, error) {
	var airport Airports
	result := r.db.WithContext(ctx).Where("iata_code = ?", strings.ToUpper(code)).First(&airport)

	if result.Error != nil {
		return nil, result.Error
	}

	// Convert GORM model to domain entity
	return &entity.Airport{
		Code:      airport.IataCode,
		Name:      airport.Name,
		City:      airport.CityName,
		Latitude:  airport.Latitude,
		Longitude: airport.Longitude,
	}, nil
}
