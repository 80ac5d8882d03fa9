package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"strings"

	"flight-tracker-service/internal/domain/repository"
	"flight-tracker-service/pkg/logger"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// GmailService sends flight update e-mails through the Gmail API
type GmailService struct {
	gmailService *gmail.Service
	userID       string
	logger       logger.Logger
}

var _ repository.EmailSender = (*GmailService)(nil)

// NewGmailService creates a sender authorized by tokenSource
func NewGmailService(ctx context.Context, tokenSource oauth2.TokenSource, userID string, logger logger.Logger) (*GmailService, error) {
	return NewGmailServiceWithOptions(ctx, userID, logger, option.WithTokenSource(tokenSource))
}

// NewGmailServiceWithOptions creates a sender with explicit client options
func NewGmailServiceWithOptions(ctx context.Context, userID string, logger logger.Logger, opts ...option.ClientOption) (*GmailService, error) {
	service, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}
	if userID == "" {
		userID = "me"
	}

	return &GmailService{
		gmailService: service,
		userID:       userID,
		logger:       logger,
	}, nil
}

// Send delivers a plain-text message
func (s *GmailService) Send(ctx context.Context, to, subject, body string) error {
	msg := &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString(buildMessage(to, subject, body)),
	}

	sent, err := s.gmailService.Users.Messages.Send(s.userID, msg).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}

	s.logger.Info("Email sent", "to", to, "subject", subject, "messageID", sent.Id)
	return nil
}

// buildMessage renders an RFC 5322 message. Header values are stripped of line breaks.
func buildMessage(to, subject, body string) []byte {
	var b strings.Builder
	b.WriteString("To: " + headerValue(to) + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", headerValue(subject)) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return []byte(b.String())
}

func headerValue(v string) string {
	return strings.NewReplacer("\r", "", "\n", " ").Replace(strings.TrimSpace(v))
}
