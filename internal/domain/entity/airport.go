package entity

import "strings"

// Airport represents an airport a flight departs from or arrives at
type Airport struct {
	Code      string  `json:"code" bson:"code"`
	Name      string  `json:"name" bson:"name"`
	City      string  `json:"city" bson:"city"`
	Latitude  float64 `json:"latitude" bson:"latitude"`
	Longitude float64 `json:"longitude" bson:"longitude"`
}

// Coordinate is a WGS84 position in decimal degrees
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// UnknownCoordinate marks an airport whose position is not known
var UnknownCoordinate = Coordinate{}

// IsUnknown reports whether c is the (0,0) sentinel
func (c Coordinate) IsUnknown() bool {
	return c == UnknownCoordinate
}

// Coordinate returns the airport position
func (a Airport) Coordinate() Coordinate {
	return Coordinate{Latitude: a.Latitude, Longitude: a.Longitude}
}

// HasCoordinates reports whether the airport position is known
func (a Airport) HasCoordinates() bool {
	return !a.Coordinate().IsUnknown()
}

// CityFromAirportName takes the first word of an airport name as its city.
// "Chicago O'Hare International" becomes "Chicago".
func CityFromAirportName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return name
	}
	return fields[0]
}
