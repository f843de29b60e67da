package auth

import (
	"context"
	"embed"
	"io/fs"
	"log/slog"
	"time"

	"github.com/dmitrymomot/upresume/pkg/logger"
	"github.com/dmitrymomot/upresume/pkg/mailer"
)

// Task names.
const (
	TaskSendVerificationEmail  = "send_verification_email"
	TaskSendPasswordReset      = "send_password_reset"
	TaskCleanupExpiredSessions = "cleanup_expired_sessions"
)

//go:embed templates/*.md
var templates embed.FS

// Templates returns the email templates with files at the root.
func Templates() fs.FS {
	sub, err := fs.Sub(templates, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}

// EmailPayload is the job payload of both email tasks.
type EmailPayload struct {
	To   string `json:"to"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Mailer sends templated emails.
type Mailer interface {
	Send(ctx context.Context, msg mailer.Message) error
}

// EmailTask renders one template per job.
type EmailTask struct {
	name     string
	template string
	mailer   Mailer
	logger   *slog.Logger
}

func (t *EmailTask) Name() string { return t.name }

func (t *EmailTask) Handle(ctx context.Context, p EmailPayload) error {
	err := t.mailer.Send(ctx, mailer.Message{
		To:       p.To,
		Template: t.template,
		Data:     p,
		Tags:     map[string]string{"category": t.name},
	})
	if err != nil {
		t.logger.ErrorContext(ctx, "email delivery failed",
			logger.Scope("email:send"),
			slog.String("task", t.name),
			logger.Error(err),
		)
		return err
	}
	return nil
}

// NewVerificationEmailTask sends the "Verify your email" message.
func NewVerificationEmailTask(m Mailer, log *slog.Logger) *EmailTask {
	return &EmailTask{name: TaskSendVerificationEmail, template: "verify_email.md", mailer: m, logger: orDiscard(log)}
}

// NewPasswordResetTask sends the "Reset your password" message.
func NewPasswordResetTask(m Mailer, log *slog.Logger) *EmailTask {
	return &EmailTask{name: TaskSendPasswordReset, template: "reset_password.md", mailer: m, logger: orDiscard(log)}
}

// ExpiredVerifications purges verification records past their expiry.
type ExpiredVerifications interface {
	DeleteExpiredVerifications(ctx context.Context, now time.Time) (int64, error)
}

// CleanupTask deletes expired sessions and verification records every hour.
// It needs only the stores, so it can be registered before the Service exists.
type CleanupTask struct {
	sessions      Sessions
	verifications ExpiredVerifications
	logger        *slog.Logger
}

func NewCleanupTask(sessions Sessions, verifications ExpiredVerifications, log *slog.Logger) *CleanupTask {
	return &CleanupTask{sessions: sessions, verifications: verifications, logger: orDiscard(log)}
}

func (t *CleanupTask) Name() string     { return TaskCleanupExpiredSessions }
func (t *CleanupTask) Schedule() string { return "0 * * * *" }

func (t *CleanupTask) Handle(ctx context.Context) error {
	_, _, err := t.Run(ctx, time.Now())
	return err
}

// Run removes everything that expired before now and reports the counts.
func (t *CleanupTask) Run(ctx context.Context, now time.Time) (sessions, verifications int64, err error) {
	sessions, err = t.sessions.DeleteExpired(ctx, now)
	if err != nil {
		return 0, 0, err
	}
	verifications, err = t.verifications.DeleteExpiredVerifications(ctx, now)
	if err != nil {
		return sessions, 0, err
	}
	if sessions > 0 || verifications > 0 {
		t.logger.InfoContext(ctx, "expired auth records removed",
			logger.Scope("auth:cleanup"),
			slog.Int64("sessions", sessions),
			slog.Int64("verifications", verifications),
		)
	}
	return sessions, verifications, nil
}

func orDiscard(log *slog.Logger) *slog.Logger {
	if log == nil {
		return slog.New(slog.DiscardHandler)
	}
	return log
}
