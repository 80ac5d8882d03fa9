package usecase

import (
	"context"
	"sync"

	"flight-tracker-service/internal/domain/entity"
	"flight-tracker-service/internal/domain/repository"
)

type mockFlightSource struct {
	LookupFunc func(ctx context.Context, flightNumber string) (entity.Flight, error)

	mu    sync.Mutex
	calls []string
}

var _ repository.FlightDataSource = (*mockFlightSource)(nil)

func (m *mockFlightSource) Lookup(ctx context.Context, flightNumber string) (entity.Flight, error) {
	m.mu.Lock()
	m.calls = append(m.calls, flightNumber)
	m.mu.Unlock()
	return m.LookupFunc(ctx, flightNumber)
}

func (m *mockFlightSource) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

type mockTrackingRepo struct {
	mu       sync.Mutex
	flights  []entity.Flight
	settings entity.UserSettings
	saves    int
	SaveErr  error
}

var _ repository.TrackingRepository = (*mockTrackingRepo)(nil)

func (m *mockTrackingRepo) SaveFlights(ctx context.Context, flights []entity.Flight) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.flights = append([]entity.Flight(nil), flights...)
	m.saves++
	return nil
}

func (m *mockTrackingRepo) LoadFlights(_ context.Context) ([]entity.Flight, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]entity.Flight(nil), m.flights...), nil
}

func (m *mockTrackingRepo) SaveSettings(_ context.Context, settings entity.UserSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = settings
	return nil
}

func (m *mockTrackingRepo) LoadSettings(_ context.Context) (entity.UserSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings, nil
}

func (m *mockTrackingRepo) Saved() ([]entity.Flight, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]entity.Flight(nil), m.flights...), m.saves
}

type firedNotification struct {
	Title string
	Body  string
}

// mockNotifier fails like a network notifier when its context is done
type mockNotifier struct {
	mu        sync.Mutex
	scheduled []entity.Reminder
	fired     []firedNotification
	cancelled []string
	// pending holds reminder ids in effect after replaying schedule and cancel in order
	pending map[string]bool
}

var _ repository.Notifier = (*mockNotifier)(nil)

func (m *mockNotifier) Schedule(ctx context.Context, reminder entity.Reminder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	m.scheduled = append(m.scheduled, reminder)
	if m.pending == nil {
		m.pending = make(map[string]bool)
	}
	m.pending[reminder.ID] = true
	return nil
}

func (m *mockNotifier) FireNow(ctx context.Context, title, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	m.fired = append(m.fired, firedNotification{Title: title, Body: body})
	return nil
}

func (m *mockNotifier) Cancel(ctx context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	m.cancelled = append(m.cancelled, ids...)
	for _, id := range ids {
		delete(m.pending, id)
	}
	return nil
}

func (m *mockNotifier) Pending() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.pending))
	for id := range m.pending {
		out = append(out, id)
	}
	return out
}

func (m *mockNotifier) Scheduled() []entity.Reminder {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]entity.Reminder(nil), m.scheduled...)
}

func (m *mockNotifier) Fired() []firedNotification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]firedNotification(nil), m.fired...)
}

func (m *mockNotifier) Cancelled() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.cancelled...)
}

type sentEmail struct {
	To      string
	Subject string
	Body    string
}

type mockEmailSender struct {
	mu   sync.Mutex
	sent []sentEmail
}

var _ repository.EmailSender = (*mockEmailSender)(nil)

func (m *mockEmailSender) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentEmail{To: to, Subject: subject, Body: body})
	return nil
}

func (m *mockEmailSender) Sent() []sentEmail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentEmail(nil), m.sent...)
}

// blockingLocation parks the first caller until release is closed
type blockingLocation struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func newBlockingLocation() *blockingLocation {
	return &blockingLocation{entered: make(chan struct{}), release: make(chan struct{})}
}

func (b *blockingLocation) CurrentCoordinate(_ context.Context) (entity.Coordinate, bool) {
	first := false
	b.once.Do(func() {
		first = true
		close(b.entered)
	})
	if first {
		<-b.release
	}
	return entity.Coordinate{Latitude: 40.7, Longitude: -74.0}, true
}

type mockLocation struct {
	coord *entity.Coordinate
}

func (m mockLocation) CurrentCoordinate(_ context.Context) (entity.Coordinate, bool) {
	if m.coord == nil {
		return entity.Coordinate{}, false
	}
	return *m.coord, true
}
