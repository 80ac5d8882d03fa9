package repository

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"flight-tracker-service/internal/domain/entity"
	"flight-tracker-service/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type deliveries struct {
	mu     sync.Mutex
	titles []string
	ch     chan string
}

func newDeliveries() *deliveries {
	return &deliveries{ch: make(chan string, 10)}
}

func (d *deliveries) deliver(title, _ string) {
	d.mu.Lock()
	d.titles = append(d.titles, title)
	d.mu.Unlock()
	d.ch <- title
}

func TestLocalNotifier_FiresScheduledReminder(t *testing.T) {
	d := newDeliveries()
	n := NewLocalNotifier(d.deliver, logger.NewNopLogger())
	defer n.Stop()

	err := n.Schedule(context.Background(), entity.Reminder{
		ID:     "departure-1",
		FireAt: time.Now().Add(10 * time.Millisecond),
		Title:  "Flight Departure Reminder",
	})
	require.NoError(t, err)

	select {
	case title := <-d.ch:
		assert.Equal(t, "Flight Departure Reminder", title)
	case <-time.After(2 * time.Second):
		t.Fatal("reminder did not fire")
	}
	assert.Empty(t, n.Pending())
}

func TestLocalNotifier_RescheduleReplacesPending(t *testing.T) {
	d := newDeliveries()
	n := NewLocalNotifier(d.deliver, logger.NewNopLogger())
	defer n.Stop()

	ctx := context.Background()
	require.NoError(t, n.Schedule(ctx, entity.Reminder{ID: "leave-1", FireAt: time.Now().Add(time.Hour), Title: "old"}))
	require.NoError(t, n.Schedule(ctx, entity.Reminder{ID: "leave-1", FireAt: time.Now().Add(2 * time.Hour), Title: "new"}))

	pending := n.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, "new", pending[0].Title)
}

func TestLocalNotifier_Cancel(t *testing.T) {
	d := newDeliveries()
	n := NewLocalNotifier(d.deliver, logger.NewNopLogger())
	defer n.Stop()

	ctx := context.Background()
	require.NoError(t, n.Schedule(ctx, entity.Reminder{ID: "departure-1", FireAt: time.Now().Add(30 * time.Millisecond)}))
	require.NoError(t, n.Schedule(ctx, entity.Reminder{ID: "leave-1", FireAt: time.Now().Add(time.Hour)}))

	require.NoError(t, n.Cancel(ctx, []string{"departure-1", "leave-1", "unknown"}))
	assert.Empty(t, n.Pending())

	time.Sleep(80 * time.Millisecond)
	d.mu.Lock()
	defer d.mu.Unlock()
	assert.Empty(t, d.titles)
}

func TestLocalNotifier_FireNowAndPastReminder(t *testing.T) {
	d := newDeliveries()
	n := NewLocalNotifier(d.deliver, logger.NewNopLogger())
	defer n.Stop()

	ctx := context.Background()
	require.NoError(t, n.FireNow(ctx, "Flight Update", "AA100 gate changed"))
	assert.Equal(t, "Flight Update", <-d.ch)

	require.NoError(t, n.Schedule(ctx, entity.Reminder{ID: "x", FireAt: time.Now().Add(-time.Minute), Title: "late"}))
	select {
	case title := <-d.ch:
		assert.Equal(t, "late", title)
	case <-time.After(2 * time.Second):
		t.Fatal("past reminder did not fire")
	}
}

func TestLocalNotifier_PendingOrderedByFireTime(t *testing.T) {
	n := NewLocalNotifier(func(string, string) {}, logger.NewNopLogger())
	defer n.Stop()

	now := time.Now()
	ctx := context.Background()
	require.NoError(t, n.Schedule(ctx, entity.Reminder{ID: "b", FireAt: now.Add(2 * time.Hour)}))
	require.NoError(t, n.Schedule(ctx, entity.Reminder{ID: "a", FireAt: now.Add(time.Hour)}))

	pending := n.Pending()
	require.Len(t, pending, 2)
	assert.Equal(t, "a", pending[0].ID)
	assert.Equal(t, "b", pending[1].ID)
}

type recordedRequest struct {
	Method string
	Path   string
	Auth   string
	Body   pushMessage
}

func newPushGateway(t *testing.T, status int) (*httptest.Server, *[]recordedRequest, *sync.Mutex) {
	t.Helper()
	var mu sync.Mutex
	var got []recordedRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{Method: r.Method, Path: r.URL.Path, Auth: r.Header.Get("Authorization")}
		if r.Body != nil && r.Method == http.MethodPost {
			_ = json.NewDecoder(r.Body).Decode(&rec.Body)
		}
		mu.Lock()
		got = append(got, rec)
		mu.Unlock()
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, &got, &mu
}

func TestPushRepository_Schedule(t *testing.T) {
	srv, got, _ := newPushGateway(t, http.StatusAccepted)
	repo := NewPushRepository(srv.URL, "secret", logger.NewNopLogger())

	fireAt := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	err := repo.Schedule(context.Background(), entity.Reminder{
		ID:     "departure-abc",
		FireAt: fireAt,
		Title:  "Flight Departure Reminder",
		Body:   "Your flight AA100 to Los departs in 2 hours",
	})
	require.NoError(t, err)

	require.Len(t, *got, 1)
	req := (*got)[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/api/v1/notifications", req.Path)
	assert.Equal(t, "Bearer secret", req.Auth)
	assert.Equal(t, "departure-abc", req.Body.ID)
	assert.Equal(t, "2026-03-01T08:00:00Z", req.Body.ScheduleAt)
	assert.Equal(t, "Flight Departure Reminder", req.Body.Title)
}

func TestPushRepository_FireNowHasNoSchedule(t *testing.T) {
	srv, got, _ := newPushGateway(t, http.StatusOK)
	repo := NewPushRepository(srv.URL, "", logger.NewNopLogger())

	require.NoError(t, repo.FireNow(context.Background(), "Flight Update", "body"))
	require.Len(t, *got, 1)
	assert.Empty(t, (*got)[0].Body.ScheduleAt)
	assert.Empty(t, (*got)[0].Auth)
}

func TestPushRepository_CancelDeletesEachID(t *testing.T) {
	srv, got, _ := newPushGateway(t, http.StatusNotFound)
	repo := NewPushRepository(srv.URL, "secret", logger.NewNopLogger())

	err := repo.Cancel(context.Background(), entity.ReminderIDs(uuid.New()))
	require.NoError(t, err)

	require.Len(t, *got, 2)
	for _, req := range *got {
		assert.Equal(t, http.MethodDelete, req.Method)
	}
}

func TestPushRepository_ErrorStatus(t *testing.T) {
	srv, _, _ := newPushGateway(t, http.StatusInternalServerError)
	repo := NewPushRepository(srv.URL, "", logger.NewNopLogger())

	err := repo.FireNow(context.Background(), "t", "b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")

	err = repo.Cancel(context.Background(), []string{"leave-1"})
	require.Error(t, err)
}

func TestStaticLocationProvider(t *testing.T) {
	ctx := context.Background()

	_, ok := NewStaticLocationProvider(nil).CurrentCoordinate(ctx)
	assert.False(t, ok)

	coord := entity.Coordinate{Latitude: 40.7, Longitude: -74.0}
	got, ok := NewStaticLocationProvider(&coord).CurrentCoordinate(ctx)
	require.True(t, ok)
	assert.Equal(t, coord, got)
}

func TestLogEmailSender(t *testing.T) {
	sender := NewLogEmailSender(logger.NewNopLogger())
	assert.NoError(t, sender.Send(context.Background(), "a@b.c", "Flight Update for AA100", "body"))
}
