// Package resend delivers mailer emails through the Resend API.
package resend

import (
	"context"
	"errors"
	"fmt"

	"github.com/resend/resend-go/v3"

	"github.com/dmitrymomot/upresume/pkg/mailer"
)

var (
	// ErrNoAPIKey is returned by New when the API key is empty.
	ErrNoAPIKey = errors.New("resend: api key is required")
	// ErrNoData is returned when the API call succeeds without a message id.
	ErrNoData = errors.New("resend: no data returned")
)

// Config holds Resend credentials.
type Config struct {
	APIKey string `env:"RESEND_API_KEY"`
}

// Sender implements mailer.Sender.
type Sender struct {
	emails resend.EmailsSvc
}

// New creates a Sender from cfg.
func New(cfg Config) (*Sender, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	return &Sender{emails: resend.NewClient(cfg.APIKey).Emails}, nil
}

func (s *Sender) Send(ctx context.Context, email *mailer.Email) error {
	req := &resend.SendEmailRequest{
		From:    email.From,
		To:      email.To,
		Subject: email.Subject,
		Html:    email.HTML,
		Text:    email.Text,
		ReplyTo: email.ReplyTo,
	}
	for name, value := range email.Tags {
		req.Tags = append(req.Tags, resend.Tag{Name: name, Value: value})
	}

	resp, err := s.emails.SendWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("resend: send email: %w", err)
	}
	if resp == nil || resp.Id == "" {
		return ErrNoData
	}
	return nil
}

var _ mailer.Sender = (*Sender)(nil)
