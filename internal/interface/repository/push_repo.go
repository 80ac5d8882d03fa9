package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"flight-tracker-service/internal/domain/entity"
	"flight-tracker-service/internal/domain/repository"
	"flight-tracker-service/pkg/logger"
)

// PushRepository hands notifications to a remote push gateway
type PushRepository struct {
	logger      logger.Logger
	baseURL     string
	bearerToken string
	client      *http.Client
}

// NewPushRepository creates a new push gateway repository
func NewPushRepository(baseURL, bearerToken string, logger logger.Logger) repository.Notifier {
	return &PushRepository{
		logger:      logger,
		baseURL:     baseURL,
		bearerToken: bearerToken,
		client:      &http.Client{Timeout: 30 * time.Second},
	}
}

// pushMessage is the request body of POST /api/v1/notifications
type pushMessage struct {
	ID         string `json:"id,omitempty"`
	Title      string `json:"title"`
	Body       string `json:"body"`
	ScheduleAt string `json:"scheduleAt,omitempty"`
	Sound      string `json:"sound"`
}

// Schedule registers a reminder; the gateway replaces a pending one with the same id
func (r *PushRepository) Schedule(ctx context.Context, reminder entity.Reminder) error {
	msg := pushMessage{
		ID:         reminder.ID,
		Title:      reminder.Title,
		Body:       reminder.Body,
		ScheduleAt: reminder.FireAt.UTC().Format(time.RFC3339),
		Sound:      "default",
	}

	if err := r.send(ctx, http.MethodPost, "/api/v1/notifications", msg); err != nil {
		return err
	}

	r.logger.Info("Reminder scheduled on push gateway",
		"id", reminder.ID,
		"scheduleAt", msg.ScheduleAt)
	return nil
}

// FireNow asks the gateway to deliver immediately
func (r *PushRepository) FireNow(ctx context.Context, title, body string) error {
	msg := pushMessage{Title: title, Body: body, Sound: "default"}
	return r.send(ctx, http.MethodPost, "/api/v1/notifications", msg)
}

// Cancel removes pending reminders from the gateway. A 404 means already gone.
func (r *PushRepository) Cancel(ctx context.Context, ids []string) error {
	var errs []error
	for _, id := range ids {
		req, err := http.NewRequestWithContext(ctx, http.MethodDelete, r.baseURL+"/api/v1/notifications/"+url.PathEscape(id), nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		if r.bearerToken != "" {
			req.Header.Set("Authorization", "Bearer "+r.bearerToken)
		}

		resp, err := r.client.Do(req)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to cancel %s: %w", id, err))
			continue
		}
		resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			continue
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			errs = append(errs, fmt.Errorf("push gateway returned status %d cancelling %s", resp.StatusCode, id))
		}
	}
	return errors.Join(errs...)
}

func (r *PushRepository) send(ctx context.Context, method, path string, payload interface{}) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if r.bearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+r.bearerToken)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("push gateway returned status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}
