package usecase

import (
	"fmt"
	"time"

	"flight-tracker-service/internal/domain/entity"
	"flight-tracker-service/pkg/geo"
)

const (
	DefaultTravelSpeedMPS        = 15.0
	DefaultLeaveBuffer           = 5400 * time.Second
	DefaultDepartureReminderLead = 2 * time.Hour

	minReminderDelay = time.Second
)

// DistanceFunc returns the distance in metres between two coordinates
type DistanceFunc func(from, to entity.Coordinate) float64

// PlannerConfig holds the travel model used for reminders
type PlannerConfig struct {
	// TravelSpeedMPS is the assumed door-to-airport speed in metres per second
	TravelSpeedMPS float64
	// LeaveBuffer is the time reserved at the airport for check-in and security
	LeaveBuffer           time.Duration
	DepartureReminderLead time.Duration
	Now                   func() time.Time
	Distance              DistanceFunc
}

// ReminderPlanner computes when departure and leave-by reminders fire
type ReminderPlanner struct {
	speed    float64
	buffer   time.Duration
	lead     time.Duration
	now      func() time.Time
	distance DistanceFunc
}

// NewReminderPlanner creates a planner, filling unset fields with defaults
func NewReminderPlanner(cfg PlannerConfig) *ReminderPlanner {
	p := &ReminderPlanner{
		speed:    cfg.TravelSpeedMPS,
		buffer:   cfg.LeaveBuffer,
		lead:     cfg.DepartureReminderLead,
		now:      cfg.Now,
		distance: cfg.Distance,
	}
	if p.speed <= 0 {
		p.speed = DefaultTravelSpeedMPS
	}
	if p.buffer <= 0 {
		p.buffer = DefaultLeaveBuffer
	}
	if p.lead <= 0 {
		p.lead = DefaultDepartureReminderLead
	}
	if p.now == nil {
		p.now = time.Now
	}
	if p.distance == nil {
		p.distance = geo.DistanceMeters
	}
	return p
}

// DepartureReminderTime returns departure minus the lead, never earlier than one second from now
func (p *ReminderPlanner) DepartureReminderTime(flight entity.Flight) time.Time {
	earliest := p.now().Add(minReminderDelay)
	fireAt := flight.DepartureTime.Add(-p.lead)
	if fireAt.Before(earliest) {
		return earliest
	}
	return fireAt
}

// LeaveByTime returns when the user should leave for the origin airport.
// ok is false without a user coordinate, without origin coordinates, or when the time has passed.
func (p *ReminderPlanner) LeaveByTime(flight entity.Flight, coord *entity.Coordinate) (time.Time, bool) {
	if coord == nil || !flight.Origin.HasCoordinates() {
		return time.Time{}, false
	}

	meters := p.distance(*coord, flight.Origin.Coordinate())
	travel := time.Duration(meters / p.speed * float64(time.Second))

	leave := flight.DepartureTime.Add(-p.buffer).Add(-travel)
	if !leave.After(p.now()) {
		return time.Time{}, false
	}
	return leave, true
}

// Plan builds the reminders for a flight
func (p *ReminderPlanner) Plan(flight entity.Flight, coord *entity.Coordinate) []entity.Reminder {
	reminders := []entity.Reminder{{
		ID:     entity.ReminderID(entity.ReminderDeparture, flight.ID),
		Kind:   entity.ReminderDeparture,
		FireAt: p.DepartureReminderTime(flight),
		Title:  "Flight Departure Reminder",
		Body: fmt.Sprintf("Your flight %s to %s departs in %s",
			flight.FlightNumber, flight.Destination.City, leadText(p.lead)),
	}}

	if leave, ok := p.LeaveByTime(flight, coord); ok {
		reminders = append(reminders, entity.Reminder{
			ID:     entity.ReminderID(entity.ReminderLeave, flight.ID),
			Kind:   entity.ReminderLeave,
			FireAt: leave,
			Title:  "Time to Leave!",
			Body:   fmt.Sprintf("Leave now to arrive at the airport on time for flight %s", flight.FlightNumber),
		})
	}

	return reminders
}

func leadText(d time.Duration) string {
	if d%time.Hour == 0 {
		if d == time.Hour {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", int(d/time.Hour))
	}
	return fmt.Sprintf("%d minutes", int(d/time.Minute))
}
