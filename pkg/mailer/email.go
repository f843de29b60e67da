package mailer

import (
	"context"
	"fmt"
	"log/slog"
)

// Email is a fully rendered message ready for delivery.
type Email struct {
	From    string
	To      []string
	ReplyTo string
	Subject string
	HTML    string
	Text    string
	Tags    map[string]string
}

// Sender delivers rendered emails. Implementations live in subpackages.
type Sender interface {
	Send(ctx context.Context, email *Email) error
}

// Address formats an RFC 5322 address, "Name <email>" when name is set.
func Address(name, email string) string {
	if name == "" {
		return email
	}
	return fmt.Sprintf("%s <%s>", name, email)
}

// LogSender writes emails to a logger instead of delivering them.
type LogSender struct {
	log *slog.Logger
}

// NewLogSender returns a Sender for local development.
func NewLogSender(log *slog.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(ctx context.Context, email *Email) error {
	s.log.InfoContext(ctx, "email not delivered: log sender",
		slog.Any("to", email.To),
		slog.String("subject", email.Subject),
		slog.String("text", email.Text),
	)
	return nil
}
