package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"flight-tracker-service/internal/domain/entity"
	"flight-tracker-service/internal/domain/repository"
	"flight-tracker-service/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// stateDocument is one key-value entry of the tracking state collection
type stateDocument struct {
	Key       string    `bson:"_id"`
	Blob      []byte    `bson:"blob,omitempty"`
	Text      string    `bson:"text,omitempty"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// MongoTrackingRepository implements TrackingRepository as a key-value collection
type MongoTrackingRepository struct {
	collection *mongo.Collection
	logger     logger.Logger
}

// NewMongoTrackingRepository creates a new MongoDB tracking repository
func NewMongoTrackingRepository(db *mongo.Database, collectionName string, logger logger.Logger) repository.TrackingRepository {
	return &MongoTrackingRepository{
		collection: db.Collection(collectionName),
		logger:     logger,
	}
}

// SaveFlights stores the tracked flight set as a single blob
func (r *MongoTrackingRepository) SaveFlights(ctx context.Context, flights []entity.Flight) error {
	data, err := encodeFlights(flights)
	if err != nil {
		return err
	}

	return r.put(ctx, stateDocument{Key: entity.KeyTrackedFlights, Blob: data})
}

// LoadFlights returns the stored flights, or none when absent or unreadable
func (r *MongoTrackingRepository) LoadFlights(ctx context.Context) ([]entity.Flight, error) {
	doc, err := r.get(ctx, entity.KeyTrackedFlights)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return []entity.Flight{}, nil
	}

	flights, err := decodeFlights(doc.Blob)
	if err != nil {
		r.logger.Warn("Discarding unreadable tracked flights", "error", err)
		return []entity.Flight{}, nil
	}
	return flights, nil
}

// SaveSettings stores each setting under its own key
func (r *MongoTrackingRepository) SaveSettings(ctx context.Context, settings entity.UserSettings) error {
	if err := r.put(ctx, stateDocument{Key: entity.KeyUserEmail, Text: settings.Email}); err != nil {
		return err
	}
	return r.put(ctx, stateDocument{Key: entity.KeyHomeAddress, Text: settings.HomeAddress})
}

// LoadSettings reads both settings keys
func (r *MongoTrackingRepository) LoadSettings(ctx context.Context) (entity.UserSettings, error) {
	filter := bson.M{"_id": bson.M{"$in": []string{entity.KeyUserEmail, entity.KeyHomeAddress}}}
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return entity.UserSettings{}, fmt.Errorf("failed to load settings: %w", err)
	}
	defer cursor.Close(ctx)

	var settings entity.UserSettings
	for cursor.Next(ctx) {
		var doc stateDocument
		if err := cursor.Decode(&doc); err != nil {
			r.logger.Warn("Skipping unreadable setting", "error", err)
			continue
		}
		switch doc.Key {
		case entity.KeyUserEmail:
			settings.Email = doc.Text
		case entity.KeyHomeAddress:
			settings.HomeAddress = doc.Text
		}
	}

	if err := cursor.Err(); err != nil {
		return entity.UserSettings{}, fmt.Errorf("failed to load settings: %w", err)
	}

	return settings, nil
}

func (r *MongoTrackingRepository) put(ctx context.Context, doc stateDocument) error {
	doc.UpdatedAt = time.Now()

	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": doc.Key}, doc, opts)
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", doc.Key, err)
	}
	return nil
}

func (r *MongoTrackingRepository) get(ctx context.Context, key string) (*stateDocument, error) {
	var doc stateDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load %s: %w", key, err)
	}
	return &doc, nil
}
