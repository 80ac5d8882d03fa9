package usecase

import (
	"testing"
	"time"

	"flight-tracker-service/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var plannerNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func fixedDistance(meters float64) DistanceFunc {
	return func(_, _ entity.Coordinate) float64 { return meters }
}

func newTestPlanner(meters float64) *ReminderPlanner {
	return NewReminderPlanner(PlannerConfig{
		Now:      func() time.Time { return plannerNow },
		Distance: fixedDistance(meters),
	})
}

func TestReminderPlanner_DepartureReminderTime(t *testing.T) {
	p := newTestPlanner(0)
	f := sampleFlight()

	f.DepartureTime = plannerNow.Add(5 * time.Hour)
	assert.Equal(t, plannerNow.Add(3*time.Hour), p.DepartureReminderTime(f))

	f.DepartureTime = plannerNow.Add(90 * time.Minute)
	assert.Equal(t, plannerNow.Add(time.Second), p.DepartureReminderTime(f))

	f.DepartureTime = plannerNow.Add(-time.Hour)
	assert.Equal(t, plannerNow.Add(time.Second), p.DepartureReminderTime(f))
}

func TestReminderPlanner_LeaveByTime(t *testing.T) {
	p := newTestPlanner(10000)
	f := sampleFlight()
	f.DepartureTime = plannerNow.Add(3 * time.Hour)
	user := &entity.Coordinate{Latitude: 40.7, Longitude: -74.0}

	leave, ok := p.LeaveByTime(f, user)
	require.True(t, ok)

	// 10800s - 5400s buffer - 666.67s travel
	want := plannerNow.Add(time.Duration(4733.333 * float64(time.Second)))
	assert.WithinDuration(t, want, leave, time.Second)
}

func TestReminderPlanner_LeaveByTimeAbsent(t *testing.T) {
	p := newTestPlanner(10000)
	user := &entity.Coordinate{Latitude: 40.7, Longitude: -74.0}

	t.Run("no user coordinate", func(t *testing.T) {
		f := sampleFlight()
		f.DepartureTime = plannerNow.Add(3 * time.Hour)
		_, ok := p.LeaveByTime(f, nil)
		assert.False(t, ok)
	})

	t.Run("unknown origin", func(t *testing.T) {
		f := sampleFlight()
		f.DepartureTime = plannerNow.Add(3 * time.Hour)
		f.Origin = entity.Airport{Code: "XYZ", Name: "XYZ Airport", City: "XYZ"}
		_, ok := p.LeaveByTime(f, user)
		assert.False(t, ok)
	})

	t.Run("already past", func(t *testing.T) {
		f := sampleFlight()
		f.DepartureTime = plannerNow.Add(time.Hour)
		_, ok := p.LeaveByTime(f, user)
		assert.False(t, ok)
	})
}

func TestReminderPlanner_CustomModel(t *testing.T) {
	p := NewReminderPlanner(PlannerConfig{
		TravelSpeedMPS:        10,
		LeaveBuffer:           time.Hour,
		DepartureReminderLead: 30 * time.Minute,
		Now:                   func() time.Time { return plannerNow },
		Distance:              fixedDistance(36000),
	})
	f := sampleFlight()
	f.DepartureTime = plannerNow.Add(4 * time.Hour)

	leave, ok := p.LeaveByTime(f, &entity.Coordinate{Latitude: 1, Longitude: 1})
	require.True(t, ok)
	assert.Equal(t, plannerNow.Add(2*time.Hour), leave)
	assert.Equal(t, plannerNow.Add(210*time.Minute), p.DepartureReminderTime(f))
}

func TestReminderPlanner_DefaultsUseHaversine(t *testing.T) {
	p := NewReminderPlanner(PlannerConfig{Now: func() time.Time { return plannerNow }})
	f := sampleFlight()
	f.DepartureTime = plannerNow.Add(3 * time.Hour)

	// standing at the airport: no travel time
	leave, ok := p.LeaveByTime(f, &entity.Coordinate{Latitude: f.Origin.Latitude, Longitude: f.Origin.Longitude})
	require.True(t, ok)
	assert.Equal(t, plannerNow.Add(90*time.Minute), leave)
}

func TestReminderPlanner_Plan(t *testing.T) {
	p := newTestPlanner(10000)
	f := sampleFlight()
	f.ID = uuid.MustParse("6f1c2d9a-8b7e-4f10-9a3b-2c4d5e6f7a8b")
	f.DepartureTime = plannerNow.Add(3 * time.Hour)

	reminders := p.Plan(f, &entity.Coordinate{Latitude: 40.7, Longitude: -74.0})
	require.Len(t, reminders, 2)

	dep := reminders[0]
	assert.Equal(t, "departure-6f1c2d9a-8b7e-4f10-9a3b-2c4d5e6f7a8b", dep.ID)
	assert.Equal(t, entity.ReminderDeparture, dep.Kind)
	assert.Equal(t, "Flight Departure Reminder", dep.Title)
	assert.Equal(t, "Your flight AA100 to Los departs in 2 hours", dep.Body)
	assert.Equal(t, plannerNow.Add(time.Hour), dep.FireAt)

	leave := reminders[1]
	assert.Equal(t, "leave-6f1c2d9a-8b7e-4f10-9a3b-2c4d5e6f7a8b", leave.ID)
	assert.Equal(t, "Time to Leave!", leave.Title)
	assert.Equal(t, "Leave now to arrive at the airport on time for flight AA100", leave.Body)

	onlyDeparture := p.Plan(f, nil)
	require.Len(t, onlyDeparture, 1)
	assert.Equal(t, entity.ReminderDeparture, onlyDeparture[0].Kind)
}

func TestLeadText(t *testing.T) {
	assert.Equal(t, "2 hours", leadText(2*time.Hour))
	assert.Equal(t, "1 hour", leadText(time.Hour))
	assert.Equal(t, "45 minutes", leadText(45*time.Minute))
}
