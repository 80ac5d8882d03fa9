package entity

import (
	"errors"
	"fmt"
)

// Lookup errors returned by the flight data client.
// Callers match them with errors.Is / errors.As.
var (
	ErrInvalidRequest = errors.New("invalid flight lookup request")
	ErrTransport      = errors.New("flight data transport error")
	ErrNotFound       = errors.New("flight not found")
	ErrDecode         = errors.New("error parsing flight data")
)

// ErrFlightNotTracked is returned when an operation targets a flight that is not in the tracked set
var ErrFlightNotTracked = errors.New("flight is not tracked")

// UpstreamError is returned when the flight data API answers with a non-success status
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("flight data API returned status %d", e.StatusCode)
}
