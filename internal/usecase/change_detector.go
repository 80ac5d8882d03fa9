package usecase

import (
	"fmt"
	"strconv"
	"strings"

	"flight-tracker-service/internal/domain/entity"
)

// ChangeField names a flight attribute that triggers an update
type ChangeField string

const (
	ChangeStatus ChangeField = "status"
	ChangeDelay  ChangeField = "delay"
	ChangeGate   ChangeField = "gate"
)

// UpdateTitle is the title of every flight update notification
const UpdateTitle = "Flight Update"

// Change describes one notifiable difference between two snapshots of a flight
type Change struct {
	Field ChangeField
	Old   string
	New   string
}

// ChangeDetector compares a tracked flight with its refreshed value
type ChangeDetector struct{}

// NewChangeDetector creates a new change detector
func NewChangeDetector() *ChangeDetector {
	return &ChangeDetector{}
}

// IsNotifiable reports whether the refresh changed status, delay or gate.
// A delay counts only when it is positive and differs from the previous one.
func (d *ChangeDetector) IsNotifiable(old, updated entity.Flight) bool {
	return len(d.Describe(old, updated)) > 0
}

// Describe lists every changed field, highest priority first
func (d *ChangeDetector) Describe(old, updated entity.Flight) []Change {
	var changes []Change

	if old.Status != updated.Status {
		changes = append(changes, Change{
			Field: ChangeStatus,
			Old:   string(old.Status),
			New:   string(updated.Status),
		})
	}

	if delayChanged(old, updated) {
		changes = append(changes, Change{
			Field: ChangeDelay,
			Old:   delayText(old.Delay),
			New:   delayText(updated.Delay),
		})
	}

	if !entity.SameStringPtr(old.Gate, updated.Gate) {
		changes = append(changes, Change{
			Field: ChangeGate,
			Old:   old.GateValue(),
			New:   updated.GateValue(),
		})
	}

	return changes
}

// Summary returns the single-line push text for the most important change.
// It returns an empty string when nothing notifiable changed.
func (d *ChangeDetector) Summary(old, updated entity.Flight) string {
	changes := d.Describe(old, updated)
	if len(changes) == 0 {
		return ""
	}

	c := changes[0]
	switch c.Field {
	case ChangeStatus:
		return fmt.Sprintf("Flight %s status changed to %s", updated.FlightNumber, updated.Status)
	case ChangeDelay:
		return fmt.Sprintf("Flight %s is delayed by %d minutes", updated.FlightNumber, updated.DelayMinutes())
	default:
		if updated.Gate == nil {
			return fmt.Sprintf("Flight %s gate is no longer assigned", updated.FlightNumber)
		}
		return fmt.Sprintf("Flight %s gate changed to %s", updated.FlightNumber, *updated.Gate)
	}
}

// EmailBody returns the multi-line update listing every change
func (d *ChangeDetector) EmailBody(old, updated entity.Flight) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Flight Update for %s\n\n", updated.FlightNumber)

	for _, c := range d.Describe(old, updated) {
		switch c.Field {
		case ChangeStatus:
			fmt.Fprintf(&b, "Status changed from %s to %s\n", c.Old, c.New)
		case ChangeDelay:
			fmt.Fprintf(&b, "Flight is delayed by %s minutes\n", c.New)
		case ChangeGate:
			if updated.Gate == nil {
				b.WriteString("Gate is no longer assigned\n")
			} else {
				fmt.Fprintf(&b, "Gate changed to %s\n", c.New)
			}
		}
	}

	fmt.Fprintf(&b, "\nNew departure time: %s\n", updated.DisplayDepartureTime())
	fmt.Fprintf(&b, "New arrival time: %s", updated.DisplayArrivalTime())

	return b.String()
}

// EmailSubject returns the subject line for an update e-mail
func (d *ChangeDetector) EmailSubject(updated entity.Flight) string {
	return "Flight Update for " + updated.FlightNumber
}

func delayChanged(old, updated entity.Flight) bool {
	if updated.DelayMinutes() <= 0 {
		return false
	}
	return old.DelayMinutes() != updated.DelayMinutes()
}

func delayText(delay *int) string {
	if delay == nil {
		return ""
	}
	return strconv.Itoa(*delay)
}
