package repository

import (
	"encoding/json"
	"fmt"

	"flight-tracker-service/internal/domain/entity"
)

// trackedFlightsBlob is the versioned envelope stored under entity.KeyTrackedFlights
type trackedFlightsBlob struct {
	Version int             `json:"version"`
	Flights []entity.Flight `json:"flights"`
}

const trackedFlightsVersion = 1

func encodeFlights(flights []entity.Flight) ([]byte, error) {
	if flights == nil {
		flights = []entity.Flight{}
	}
	data, err := json.Marshal(trackedFlightsBlob{Version: trackedFlightsVersion, Flights: flights})
	if err != nil {
		return nil, fmt.Errorf("failed to encode tracked flights: %w", err)
	}
	return data, nil
}

// decodeFlights also accepts a bare JSON array, the format written before the envelope existed
func decodeFlights(data []byte) ([]entity.Flight, error) {
	if len(data) == 0 {
		return []entity.Flight{}, nil
	}

	var blob trackedFlightsBlob
	if err := json.Unmarshal(data, &blob); err != nil {
		var flights []entity.Flight
		if errArr := json.Unmarshal(data, &flights); errArr != nil {
			return nil, fmt.Errorf("failed to decode tracked flights: %w", err)
		}
		blob.Flights = flights
	}

	if blob.Flights == nil {
		return []entity.Flight{}, nil
	}
	return blob.Flights, nil
}
