package aviation

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"flight-tracker-service/internal/domain/entity"
)

const (
	defaultDepartureOffset = time.Hour
	defaultFlightDuration  = 2 * time.Hour
)

// Timestamp layouts tried in order. The first accepts fractional seconds.
var timestampLayouts = []string{
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05Z0700",
}

// parseTimestamp returns false when no layout matches; it never fails the lookup
func parseTimestamp(value *string) (time.Time, bool) {
	if value == nil {
		return time.Time{}, false
	}
	s := strings.TrimSpace(*value)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// mapStatus converts the upstream status vocabulary
func mapStatus(status string) entity.FlightStatus {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "scheduled":
		return entity.FlightScheduled
	case "active":
		return entity.FlightBoarding
	case "landed":
		return entity.FlightLanded
	case "cancelled":
		return entity.FlightCancelled
	case "delayed":
		return entity.FlightDelayed
	case "diverted":
		return entity.FlightCancelled
	default:
		return entity.FlightScheduled
	}
}

// calculateDelay compares the actual (or estimated) departure to the scheduled one
func calculateDelay(leg aviationstackLeg) *int {
	scheduled, ok := parseTimestamp(leg.Scheduled)
	if !ok {
		return nil
	}

	compare, ok := parseTimestamp(leg.Actual)
	if !ok {
		compare, ok = parseTimestamp(leg.Estimated)
	}
	if !ok {
		return nil
	}

	minutes := int(compare.Sub(scheduled) / time.Minute)
	return entity.NormalizeDelay(&minutes)
}

func (c *Client) toAirport(ctx context.Context, leg aviationstackLeg) entity.Airport {
	code := strings.ToUpper(strings.TrimSpace(leg.IATA))
	coord := c.airports.Coordinates(ctx, code)
	return entity.Airport{
		Code:      code,
		Name:      leg.Airport,
		City:      entity.CityFromAirportName(leg.Airport),
		Latitude:  coord.Latitude,
		Longitude: coord.Longitude,
	}
}

// convertToFlight maps an upstream record to a new Flight with a fresh id
func (c *Client) convertToFlight(ctx context.Context, raw aviationstackFlight, flightNumber string) entity.Flight {
	departure, ok := parseTimestamp(raw.Departure.Scheduled)
	if !ok {
		departure = c.now().Add(defaultDepartureOffset)
	}

	arrival, ok := parseTimestamp(raw.Arrival.Scheduled)
	if !ok || !arrival.After(departure) {
		arrival = departure.Add(defaultFlightDuration)
	}

	var gate, terminal *string
	if raw.Departure.Gate != nil {
		gate = entity.StringPtr(strings.TrimSpace(*raw.Departure.Gate))
	}
	if raw.Departure.Terminal != nil {
		terminal = entity.StringPtr(strings.TrimSpace(*raw.Departure.Terminal))
	}

	return entity.Flight{
		ID:            uuid.New(),
		FlightNumber:  flightNumber,
		Airline:       raw.Airline.Name,
		Origin:        c.toAirport(ctx, raw.Departure),
		Destination:   c.toAirport(ctx, raw.Arrival),
		DepartureTime: departure,
		ArrivalTime:   arrival,
		Status:        mapStatus(raw.FlightStatus),
		Gate:          gate,
		Terminal:      terminal,
		Delay:         calculateDelay(raw.Departure),
	}
}
