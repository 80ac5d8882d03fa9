package usecase

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"flight-tracker-service/internal/domain/entity"
	"flight-tracker-service/internal/domain/repository"
	"flight-tracker-service/pkg/logger"
	"flight-tracker-service/pkg/metrics"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// DefaultRefreshConcurrency bounds parallel lookups during a refresh cycle
const DefaultRefreshConcurrency = 4

// addLookupTimeout bounds the lookup shared by concurrent Add calls for one number
const addLookupTimeout = 30 * time.Second

// RefreshFailure records a flight whose lookup failed during a cycle
type RefreshFailure struct {
	FlightNumber string
	Err          error
}

// RefreshReport summarizes one refresh cycle
type RefreshReport struct {
	Refreshed int
	Changed   []string
	Failed    []RefreshFailure
	// Dropped counts lookups whose flight was removed before the result was committed
	Dropped  int
	Skipped  bool
	Duration time.Duration
}

// TrackingStore owns the tracked flights and user settings
type TrackingStore struct {
	mu       sync.RWMutex
	flights  []entity.Flight
	settings entity.UserSettings

	persistMu sync.Mutex
	// remindMu orders reminder scheduling after a commit against the cancel in Remove
	remindMu    sync.Mutex
	refreshing  atomic.Bool
	adds        singleflight.Group
	concurrency int

	source   repository.FlightDataSource
	repo     repository.TrackingRepository
	notifier repository.Notifier
	mailer   repository.EmailSender
	location repository.LocationProvider
	detector *ChangeDetector
	planner  *ReminderPlanner
	metrics  *metrics.Metrics
	logger   logger.Logger
}

// NewTrackingStore creates a new tracking store
func NewTrackingStore(
	source repository.FlightDataSource,
	repo repository.TrackingRepository,
	notifier repository.Notifier,
	mailer repository.EmailSender,
	location repository.LocationProvider,
	detector *ChangeDetector,
	planner *ReminderPlanner,
	m *metrics.Metrics,
	logger logger.Logger,
) *TrackingStore {
	return &TrackingStore{
		concurrency: DefaultRefreshConcurrency,
		source:      source,
		repo:        repo,
		notifier:    notifier,
		mailer:      mailer,
		location:    location,
		detector:    detector,
		planner:     planner,
		metrics:     m,
		logger:      logger,
	}
}

// SetRefreshConcurrency changes how many lookups a refresh cycle runs at once
func (s *TrackingStore) SetRefreshConcurrency(n int) {
	if n < 1 {
		n = 1
	}
	s.concurrency = n
}

// Load restores flights and settings from storage and re-arms reminders
func (s *TrackingStore) Load(ctx context.Context) error {
	flights, err := s.repo.LoadFlights(ctx)
	if err != nil {
		return fmt.Errorf("failed to load tracked flights: %w", err)
	}
	settings, err := s.repo.LoadSettings(ctx)
	if err != nil {
		return fmt.Errorf("failed to load user settings: %w", err)
	}

	seen := make(map[string]bool, len(flights))
	unique := make([]entity.Flight, 0, len(flights))
	for _, f := range flights {
		f.FlightNumber = entity.NormalizeFlightNumber(f.FlightNumber)
		if f.FlightNumber == "" || seen[f.FlightNumber] {
			continue
		}
		if f.ID == uuid.Nil {
			f.ID = uuid.New()
		}
		seen[f.FlightNumber] = true
		unique = append(unique, f)
	}

	s.mu.Lock()
	s.flights = unique
	s.settings = settings
	s.mu.Unlock()

	s.metrics.TrackedFlights.Set(float64(len(unique)))
	s.logger.Info("Tracking state loaded", "flights", len(unique), "email", settings.WantsEmail())

	for _, f := range unique {
		if f.DepartureTime.After(time.Now()) {
			s.armReminders(ctx, f)
		}
	}
	return nil
}

// Flights returns a copy of the tracked flights in insertion order
func (s *TrackingStore) Flights() []entity.Flight {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entity.Flight, len(s.flights))
	copy(out, s.flights)
	return out
}

// Flight returns the tracked flight with the given id
func (s *TrackingStore) Flight(id uuid.UUID) (entity.Flight, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexByIDLocked(id); i >= 0 {
		return s.flights[i], true
	}
	return entity.Flight{}, false
}

// Settings returns the current user settings
func (s *TrackingStore) Settings() entity.UserSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// UpdateSettings replaces the user settings and persists them
func (s *TrackingStore) UpdateSettings(ctx context.Context, settings entity.UserSettings) error {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.Lock()
	s.settings = settings
	s.mu.Unlock()

	if err := s.repo.SaveSettings(ctx, settings); err != nil {
		s.metrics.ErrorsCount.WithLabelValues("persist").Inc()
		return fmt.Errorf("failed to save user settings: %w", err)
	}
	return nil
}

// Add looks up a flight and starts tracking it.
// If the flight number is already tracked the existing flight is returned.
func (s *TrackingStore) Add(ctx context.Context, flightNumber string) (entity.Flight, error) {
	number := entity.NormalizeFlightNumber(flightNumber)
	if number == "" {
		return entity.Flight{}, fmt.Errorf("%w: flight number is empty", entity.ErrInvalidRequest)
	}

	if existing, ok := s.flightByNumber(number); ok {
		return existing, nil
	}

	// The shared call outlives any single caller, so it runs detached with its own deadline.
	ch := s.adds.DoChan(number, func() (interface{}, error) {
		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), addLookupTimeout)
		defer cancel()
		return s.add(lookupCtx, number)
	})

	select {
	case <-ctx.Done():
		return entity.Flight{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return entity.Flight{}, res.Err
		}
		return res.Val.(entity.Flight), nil
	}
}

func (s *TrackingStore) add(ctx context.Context, number string) (entity.Flight, error) {
	flight, err := s.source.Lookup(ctx, number)
	if err != nil {
		s.metrics.ErrorsCount.WithLabelValues("lookup").Inc()
		return entity.Flight{}, fmt.Errorf("failed to look up flight %s: %w", number, err)
	}
	flight.FlightNumber = number

	s.mu.Lock()
	if i := s.indexByNumberLocked(number); i >= 0 {
		existing := s.flights[i]
		s.mu.Unlock()
		return existing, nil
	}
	s.flights = append(s.flights, flight)
	count := len(s.flights)
	s.mu.Unlock()

	s.metrics.TrackedFlights.Set(float64(count))
	s.logger.Info("Flight tracked", "flightNumber", number, "id", flight.ID)

	// side effects of a committed add are not bound by the lookup deadline
	sideCtx := context.WithoutCancel(ctx)
	s.persistFlights(sideCtx)
	s.armReminders(sideCtx, flight)

	return flight, nil
}

// Remove stops tracking a flight and cancels its reminders
func (s *TrackingStore) Remove(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	i := s.indexByIDLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", entity.ErrFlightNotTracked, id)
	}
	removed := s.flights[i]
	s.flights = append(s.flights[:i:i], s.flights[i+1:]...)
	count := len(s.flights)
	s.mu.Unlock()

	s.metrics.TrackedFlights.Set(float64(count))
	s.logger.Info("Flight removed", "flightNumber", removed.FlightNumber, "id", id)

	// the removal is committed; storage and the notifier must follow even if the caller goes away
	sideCtx := context.WithoutCancel(ctx)
	s.persistFlights(sideCtx)

	s.remindMu.Lock()
	defer s.remindMu.Unlock()
	s.cancelReminders(sideCtx, id)
	return nil
}

// RefreshAll looks up every tracked flight and commits the results.
// A failed lookup is reported and never aborts the cycle. A call made while
// another cycle is running returns immediately with Skipped set.
func (s *TrackingStore) RefreshAll(ctx context.Context) (RefreshReport, error) {
	var report RefreshReport

	if !s.refreshing.CompareAndSwap(false, true) {
		report.Skipped = true
		s.metrics.RefreshCycles.WithLabelValues("skipped").Inc()
		s.logger.Warn("Refresh cycle skipped, previous cycle still running")
		return report, nil
	}
	defer s.refreshing.Store(false)

	start := time.Now()
	snapshot := s.Flights()
	// committed results are always persisted and notified, even if the cycle is cancelled
	commitCtx := context.WithoutCancel(ctx)

	var (
		reportMu sync.Mutex
		g        errgroup.Group
	)
	g.SetLimit(s.concurrency)

	for _, tracked := range snapshot {
		tracked := tracked
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}

			updated, err := s.source.Lookup(ctx, tracked.FlightNumber)
			if err != nil {
				s.metrics.ErrorsCount.WithLabelValues("lookup").Inc()
				s.logger.Warn("Failed to refresh flight", "flightNumber", tracked.FlightNumber, "error", err)

				reportMu.Lock()
				report.Failed = append(report.Failed, RefreshFailure{FlightNumber: tracked.FlightNumber, Err: err})
				reportMu.Unlock()
				return nil
			}

			changed, committed := s.commitRefresh(commitCtx, tracked.ID, updated)

			reportMu.Lock()
			defer reportMu.Unlock()

			if !committed {
				report.Dropped++
				s.logger.Debug("Discarding refresh of removed flight", "flightNumber", tracked.FlightNumber)
				return nil
			}
			report.Refreshed++
			if changed {
				report.Changed = append(report.Changed, tracked.FlightNumber)
			}
			return nil
		})
	}
	_ = g.Wait()

	if report.Refreshed > 0 {
		s.persistFlights(commitCtx)
	}

	report.Duration = time.Since(start)
	s.metrics.RefreshDuration.Observe(report.Duration.Seconds())

	if err := ctx.Err(); err != nil {
		s.metrics.RefreshCycles.WithLabelValues("cancelled").Inc()
		return report, fmt.Errorf("refresh cycle interrupted: %w", err)
	}

	s.metrics.RefreshCycles.WithLabelValues("completed").Inc()
	s.logger.Info("Refresh cycle completed",
		"refreshed", report.Refreshed,
		"changed", len(report.Changed),
		"failed", len(report.Failed),
		"dropped", report.Dropped,
		"duration", report.Duration)

	return report, nil
}

// commitRefresh replaces the tracked entry with id and emits the resulting notifications.
// changed reports whether the update was notifiable; committed is false when the
// flight is no longer tracked.
func (s *TrackingStore) commitRefresh(ctx context.Context, id uuid.UUID, updated entity.Flight) (changed, committed bool) {
	s.mu.Lock()
	i := s.indexByIDLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return false, false
	}
	old := s.flights[i]
	updated.ID = old.ID
	updated.FlightNumber = old.FlightNumber
	s.flights[i] = updated
	settings := s.settings
	s.mu.Unlock()

	changed = s.detector.IsNotifiable(old, updated)
	replan := !old.DepartureTime.Equal(updated.DepartureTime)
	if !changed && !replan {
		return false, true
	}

	s.remindMu.Lock()
	defer s.remindMu.Unlock()

	// a Remove that landed after the commit owns the flight's side effects now
	if !s.isTracked(id) {
		return changed, true
	}

	if changed {
		s.notifyChange(ctx, old, updated, settings)
	}
	if replan {
		s.logger.Info("Departure time changed, re-planning reminders",
			"flightNumber", updated.FlightNumber,
			"old", old.DepartureTime,
			"new", updated.DepartureTime)
		s.cancelReminders(ctx, id)
		s.scheduleReminders(ctx, updated)
	}
	return changed, true
}

func (s *TrackingStore) notifyChange(ctx context.Context, old, updated entity.Flight, settings entity.UserSettings) {
	summary := s.detector.Summary(old, updated)
	if err := s.notifier.FireNow(ctx, UpdateTitle, summary); err != nil {
		s.metrics.ErrorsCount.WithLabelValues("notify").Inc()
		s.logger.Error("Failed to send update notification", "flightNumber", updated.FlightNumber, "error", err)
	} else {
		s.metrics.NotificationsTotal.WithLabelValues("update").Inc()
		s.logger.Info("Update notification sent", "flightNumber", updated.FlightNumber, "summary", summary)
	}

	if !settings.WantsEmail() {
		return
	}

	subject := s.detector.EmailSubject(updated)
	body := s.detector.EmailBody(old, updated)
	if err := s.mailer.Send(ctx, settings.Email, subject, body); err != nil {
		s.metrics.ErrorsCount.WithLabelValues("email").Inc()
		s.logger.Error("Failed to send update email", "flightNumber", updated.FlightNumber, "error", err)
		return
	}
	s.metrics.NotificationsTotal.WithLabelValues("email").Inc()
}

// armReminders schedules the flight's reminders while it is still tracked.
// Holding remindMu across the membership check keeps a concurrent Remove from
// cancelling before the schedule lands.
func (s *TrackingStore) armReminders(ctx context.Context, flight entity.Flight) {
	s.remindMu.Lock()
	defer s.remindMu.Unlock()

	if !s.isTracked(flight.ID) {
		s.logger.Debug("Skipping reminders for removed flight", "flightNumber", flight.FlightNumber)
		return
	}
	s.scheduleReminders(ctx, flight)
}

func (s *TrackingStore) cancelReminders(ctx context.Context, id uuid.UUID) {
	if err := s.notifier.Cancel(ctx, entity.ReminderIDs(id)); err != nil {
		s.metrics.ErrorsCount.WithLabelValues("notify").Inc()
		s.logger.Error("Failed to cancel reminders", "id", id, "error", err)
	}
}

// scheduleReminders must be called with remindMu held
func (s *TrackingStore) scheduleReminders(ctx context.Context, flight entity.Flight) {
	var coord *entity.Coordinate
	if c, ok := s.location.CurrentCoordinate(ctx); ok {
		coord = &c
	}

	for _, reminder := range s.planner.Plan(flight, coord) {
		if err := s.notifier.Schedule(ctx, reminder); err != nil {
			s.metrics.ErrorsCount.WithLabelValues("notify").Inc()
			s.logger.Error("Failed to schedule reminder", "id", reminder.ID, "error", err)
			continue
		}
		s.metrics.NotificationsTotal.WithLabelValues(string(reminder.Kind)).Inc()
		s.logger.Debug("Reminder scheduled", "id", reminder.ID, "fireAt", reminder.FireAt)
	}
}

// persistFlights saves a snapshot taken after acquiring persistMu, so the
// last completed save always holds the latest state.
func (s *TrackingStore) persistFlights(ctx context.Context) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	snapshot := s.Flights()
	if err := s.repo.SaveFlights(ctx, snapshot); err != nil {
		s.metrics.ErrorsCount.WithLabelValues("persist").Inc()
		s.logger.Error("Failed to save tracked flights", "count", len(snapshot), "error", err)
	}
}

func (s *TrackingStore) flightByNumber(number string) (entity.Flight, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexByNumberLocked(number); i >= 0 {
		return s.flights[i], true
	}
	return entity.Flight{}, false
}

func (s *TrackingStore) isTracked(id uuid.UUID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexByIDLocked(id) >= 0
}

func (s *TrackingStore) indexByNumberLocked(number string) int {
	for i, f := range s.flights {
		if f.FlightNumber == number {
			return i
		}
	}
	return -1
}

func (s *TrackingStore) indexByIDLocked(id uuid.UUID) int {
	for i, f := range s.flights {
		if f.ID == id {
			return i
		}
	}
	return -1
}
