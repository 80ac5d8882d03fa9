package repository

import (
	"context"

	"flight-tracker-service/internal/domain/repository"
	"flight-tracker-service/pkg/logger"
)

// LogEmailSender writes outgoing e-mails to the log instead of sending them
type LogEmailSender struct {
	logger logger.Logger
}

var _ repository.EmailSender = (*LogEmailSender)(nil)

// NewLogEmailSender creates a new log-only e-mail sender
func NewLogEmailSender(logger logger.Logger) *LogEmailSender {
	return &LogEmailSender{logger: logger}
}

// Send logs the message
func (s *LogEmailSender) Send(_ context.Context, to, subject, body string) error {
	s.logger.Info("Email to send", "to", to, "subject", subject, "body", body)
	return nil
}
