package entity

import "strings"

// Storage keys shared by every tracking repository implementation
const (
	KeyTrackedFlights = "trackedFlights"
	KeyUserEmail      = "userEmail"
	KeyHomeAddress    = "homeAddress"
)

// UserSettings holds the preferences edited by the user
type UserSettings struct {
	Email       string `json:"email"`
	HomeAddress string `json:"homeAddress"`
}

// WantsEmail reports whether change emails should be sent
func (s UserSettings) WantsEmail() bool {
	return strings.TrimSpace(s.Email) != ""
}
