// Package job runs background tasks on River, a Postgres-backed queue.
//
// Every task travels as one River job kind carrying the task name and a
// JSON payload, so tasks are plain structs:
//
//	type SendVerification struct{ mailer *mailer.Mailer }
//
//	func (SendVerification) Name() string { return "send_verification_email" }
//	func (t SendVerification) Handle(ctx context.Context, p VerificationPayload) error {
//		return t.mailer.Send(ctx, mailer.Message{To: p.Email, Template: "verify.md", Data: p})
//	}
//
//	m, err := job.NewManager(pool,
//		job.WithTask[VerificationPayload](SendVerification{mailer}),
//		job.WithScheduledTask(CleanupExpired{repo}),
//		job.WithLogger(log),
//	)
//
// Run Migrate once before NewManager to install River's tables. A payload
// that fails to decode cancels the job instead of retrying it.
package job
