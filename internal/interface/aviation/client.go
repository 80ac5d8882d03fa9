// Package aviation provides a client for the aviationstack flight data API.
//
// API Documentation: https://aviationstack.com/documentation
// The free plan has a small monthly quota, so requests go through a rate limiter.
package aviation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"flight-tracker-service/internal/domain/entity"
	"flight-tracker-service/internal/domain/repository"
	"flight-tracker-service/pkg/logger"
	"flight-tracker-service/pkg/metrics"
)

const (
	// DefaultBaseURL is the aviationstack v1 base URL
	DefaultBaseURL = "https://api.aviationstack.com/v1"

	// DefaultTimeout for API requests
	DefaultTimeout = 15 * time.Second

	maxErrorBody = 4096
)

// Config contains configuration for the aviationstack client.
type Config struct {
	APIKey            string
	BaseURL           string
	Timeout           time.Duration
	RequestsPerMinute int
}

// Client looks up flights on aviationstack and maps them to entity.Flight.
type Client struct {
	apiKey      string
	baseURL     string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	airports    repository.AirportDirectory
	metrics     *metrics.Metrics
	logger      logger.Logger
	now         func() time.Time
}

var _ repository.FlightDataSource = (*Client)(nil)

// NewClient creates a new aviationstack client.
func NewClient(cfg Config, airports repository.AirportDirectory, m *metrics.Metrics, log logger.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	limit := rate.Inf
	if cfg.RequestsPerMinute > 0 {
		limit = rate.Limit(float64(cfg.RequestsPerMinute) / 60.0)
	}

	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		rateLimiter: rate.NewLimiter(limit, 1),
		airports:    airports,
		metrics:     m,
		logger:      log,
		now:         time.Now,
	}
}

// WithClock overrides the clock used for default departure times
func (c *Client) WithClock(now func() time.Time) *Client {
	c.now = now
	return c
}

// Lookup fetches the current state of a flight by its IATA flight number.
//
// Errors wrap entity.ErrInvalidRequest, entity.ErrTransport, entity.ErrNotFound,
// entity.ErrDecode, or are an *entity.UpstreamError.
func (c *Client) Lookup(ctx context.Context, flightNumber string) (entity.Flight, error) {
	start := time.Now()
	flight, err := c.lookup(ctx, flightNumber)
	c.metrics.LookupDuration.Observe(time.Since(start).Seconds())
	c.metrics.LookupsTotal.WithLabelValues(resultLabel(err)).Inc()
	return flight, err
}

func (c *Client) lookup(ctx context.Context, flightNumber string) (entity.Flight, error) {
	number := entity.NormalizeFlightNumber(flightNumber)
	if number == "" {
		return entity.Flight{}, fmt.Errorf("%w: empty flight number", entity.ErrInvalidRequest)
	}

	endpoint, err := c.buildURL(number)
	if err != nil {
		return entity.Flight{}, err
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return entity.Flight{}, fmt.Errorf("%w: rate limiter: %w", entity.ErrTransport, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return entity.Flight{}, fmt.Errorf("%w: create request: %w", entity.ErrInvalidRequest, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return entity.Flight{}, fmt.Errorf("%w: %w", entity.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return entity.Flight{}, &entity.UpstreamError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var apiResp aviationstackResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return entity.Flight{}, fmt.Errorf("%w: %w", entity.ErrDecode, err)
	}

	if len(apiResp.Data) == 0 {
		return entity.Flight{}, fmt.Errorf("%w: %s", entity.ErrNotFound, number)
	}

	flight := c.convertToFlight(ctx, apiResp.Data[0], number)
	c.logger.Debug("Flight looked up",
		"flightNumber", number,
		"status", flight.Status,
		"origin", flight.Origin.Code,
		"destination", flight.Destination.Code)

	return flight, nil
}

// buildURL builds GET {base}/flights?access_key=..&flight_iata=..&limit=1
func (c *Client) buildURL(flightNumber string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: bad base URL %q", entity.ErrInvalidRequest, c.baseURL)
	}
	u = u.JoinPath("flights")

	q := url.Values{}
	q.Set("access_key", c.apiKey)
	q.Set("flight_iata", flightNumber)
	q.Set("limit", "1")
	u.RawQuery = q.Encode()

	return u.String(), nil
}

func resultLabel(err error) string {
	var upstream *entity.UpstreamError
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &upstream):
		return "upstream_error"
	case errors.Is(err, entity.ErrNotFound):
		return "not_found"
	case errors.Is(err, entity.ErrDecode):
		return "decode_error"
	case errors.Is(err, entity.ErrInvalidRequest):
		return "invalid_request"
	default:
		return "transport_error"
	}
}
