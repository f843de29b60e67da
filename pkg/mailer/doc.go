// Package mailer renders markdown email templates and hands the result to a Sender.
//
// Templates live in an fs.FS. Each file is markdown with an optional YAML
// front matter block; the subject line is itself a text/template:
//
//	---
//	subject: Verify your email
//	---
//	Hi {{ .Name }},
//
//	[!button|Verify email]({{ .URL }})
//
// The rendered markdown becomes the plain-text part, goldmark's HTML output
// is wrapped in the layout and becomes the HTML part. Raw HTML in templates
// is not passed through; the [!button|Label](URL) syntax renders the styled
// call-to-action link.
//
//	m := mailer.New(resend.New(cfg.Resend), templates.FS, mailer.Config{From: cfg.EmailFrom})
//	err := m.Send(ctx, mailer.Message{To: "jane@example.com", Template: "verify.md", Data: data})
//
// Use NewLogSender during development to log emails instead of delivering them.
package mailer
