// internal/domain/entity/flight.go
package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// FlightStatus is the normalized status of a tracked flight
type FlightStatus string

const (
	FlightScheduled FlightStatus = "Scheduled"
	FlightDelayed   FlightStatus = "Delayed"
	FlightBoarding  FlightStatus = "Boarding"
	FlightDeparted  FlightStatus = "Departed"
	FlightEnRoute   FlightStatus = "En Route"
	FlightLanded    FlightStatus = "Landed"
	FlightCancelled FlightStatus = "Cancelled"
)

// Display layouts used in notification and email text
const (
	TimeDisplayLayout = "3:04 PM"
	DateDisplayLayout = "Jan 2, 2006"
)

// Flight is a single flight as last reported by the upstream data source
type Flight struct {
	ID            uuid.UUID    `json:"id"`
	FlightNumber  string       `json:"flightNumber"` // uppercase, unique within the tracked set
	Airline       string       `json:"airline"`
	Origin        Airport      `json:"origin"`
	Destination   Airport      `json:"destination"`
	DepartureTime time.Time    `json:"departureTime"`
	ArrivalTime   time.Time    `json:"arrivalTime"`
	Status        FlightStatus `json:"status"`
	Gate          *string      `json:"gate,omitempty"`
	Terminal      *string      `json:"terminal,omitempty"`
	Delay         *int         `json:"delay,omitempty"` // minutes, nil unless > 0
}

// NormalizeFlightNumber trims and uppercases a user supplied flight number
func NormalizeFlightNumber(flightNumber string) string {
	return strings.ToUpper(strings.TrimSpace(flightNumber))
}

// NormalizeDelay drops zero and negative delays
func NormalizeDelay(minutes *int) *int {
	if minutes == nil || *minutes <= 0 {
		return nil
	}
	v := *minutes
	return &v
}

// DelayMinutes returns the delay or 0 when none is known
func (f Flight) DelayMinutes() int {
	if f.Delay == nil {
		return 0
	}
	return *f.Delay
}

// GateValue returns the gate or an empty string
func (f Flight) GateValue() string {
	if f.Gate == nil {
		return ""
	}
	return *f.Gate
}

func (f Flight) DisplayDepartureTime() string {
	return f.DepartureTime.Format(TimeDisplayLayout)
}

func (f Flight) DisplayArrivalTime() string {
	return f.ArrivalTime.Format(TimeDisplayLayout)
}

func (f Flight) DisplayDate() string {
	return f.DepartureTime.Format(DateDisplayLayout)
}

// StringPtr returns nil for an empty string
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// SameStringPtr compares two optional strings by value
func SameStringPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
