// Package httpapi exposes the tracking store over a JSON HTTP API.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"flight-tracker-service/internal/domain/entity"
	"flight-tracker-service/internal/usecase"
	"flight-tracker-service/pkg/logger"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const maxBodyBytes = 1 << 16

// FlightTracker is the set of tracking operations served over HTTP
type FlightTracker interface {
	Flights() []entity.Flight
	Flight(id uuid.UUID) (entity.Flight, bool)
	Add(ctx context.Context, flightNumber string) (entity.Flight, error)
	Remove(ctx context.Context, id uuid.UUID) error
	RefreshAll(ctx context.Context) (usecase.RefreshReport, error)
	Settings() entity.UserSettings
	UpdateSettings(ctx context.Context, settings entity.UserSettings) error
}

// Handler serves the flight and settings endpoints
type Handler struct {
	tracker FlightTracker
	logger  logger.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(tracker FlightTracker, logger logger.Logger) *Handler {
	return &Handler{tracker: tracker, logger: logger}
}

// Routes registers the endpoints on r
func (h *Handler) Routes(r chi.Router) {
	r.Route("/flights", func(r chi.Router) {
		r.Get("/", h.listFlights)
		r.Post("/", h.addFlight)
		r.Post("/refresh", h.refresh)
		r.Get("/{id}", h.getFlight)
		r.Delete("/{id}", h.removeFlight)
	})
	r.Get("/settings", h.getSettings)
	r.Put("/settings", h.updateSettings)
}

type addFlightRequest struct {
	FlightNumber string `json:"flightNumber"`
}

type settingsRequest struct {
	Email       string `json:"email"`
	HomeAddress string `json:"homeAddress"`
}

type refreshFailure struct {
	FlightNumber string `json:"flightNumber"`
	Error        string `json:"error"`
}

type refreshResponse struct {
	Refreshed  int              `json:"refreshed"`
	Changed    []string         `json:"changed"`
	Failed     []refreshFailure `json:"failed"`
	Dropped    int              `json:"dropped"`
	Skipped    bool             `json:"skipped"`
	DurationMs int64            `json:"durationMs"`
}

func (h *Handler) listFlights(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.tracker.Flights())
}

func (h *Handler) getFlight(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	flight, found := h.tracker.Flight(id)
	if !found {
		writeError(w, http.StatusNotFound, "not_found", "flight is not tracked")
		return
	}
	writeJSON(w, http.StatusOK, flight)
}

func (h *Handler) addFlight(w http.ResponseWriter, r *http.Request) {
	var req addFlightRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.FlightNumber) == "" {
		writeError(w, http.StatusBadRequest, "validation_error", "flightNumber is required")
		return
	}

	flight, err := h.tracker.Add(r.Context(), req.FlightNumber)
	if err != nil {
		h.logger.Warn("Failed to add flight", "flightNumber", req.FlightNumber, "error", err)
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, flight)
}

func (h *Handler) removeFlight(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.tracker.Remove(r.Context(), id); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	report, err := h.tracker.RefreshAll(r.Context())
	if err != nil {
		h.logger.Error("Manual refresh failed", "error", err)
		writeError(w, http.StatusServiceUnavailable, "refresh_interrupted", err.Error())
		return
	}

	resp := refreshResponse{
		Refreshed:  report.Refreshed,
		Changed:    report.Changed,
		Failed:     make([]refreshFailure, 0, len(report.Failed)),
		Dropped:    report.Dropped,
		Skipped:    report.Skipped,
		DurationMs: report.Duration.Milliseconds(),
	}
	if resp.Changed == nil {
		resp.Changed = []string{}
	}
	for _, f := range report.Failed {
		resp.Failed = append(resp.Failed, refreshFailure{FlightNumber: f.FlightNumber, Error: f.Err.Error()})
	}

	status := http.StatusOK
	if report.Skipped {
		status = http.StatusAccepted
	}
	writeJSON(w, status, resp)
}

func (h *Handler) getSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.tracker.Settings())
}

func (h *Handler) updateSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if !decodeBody(w, r, &req) {
		return
	}

	settings := entity.UserSettings{
		Email:       strings.TrimSpace(req.Email),
		HomeAddress: strings.TrimSpace(req.HomeAddress),
	}
	if settings.Email != "" {
		if _, err := mail.ParseAddress(settings.Email); err != nil {
			writeError(w, http.StatusBadRequest, "validation_error", "email is not a valid address")
			return
		}
	}

	if err := h.tracker.UpdateSettings(r.Context(), settings); err != nil {
		h.logger.Error("Failed to update settings", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to save settings")
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	var upstream *entity.UpstreamError

	switch {
	case errors.Is(err, entity.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, entity.ErrNotFound):
		writeError(w, http.StatusNotFound, "flight_not_found", err.Error())
	case errors.Is(err, entity.ErrFlightNotTracked):
		writeError(w, http.StatusNotFound, "not_found", "flight is not tracked")
	case errors.As(err, &upstream), errors.Is(err, entity.ErrTransport), errors.Is(err, entity.ErrDecode):
		writeError(w, http.StatusBadGateway, "upstream_error", err.Error())
	default:
		h.logger.Error("Unhandled error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "id must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "malformed request body")
		return false
	}
	return true
}
