package mailer

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"io/fs"
	"strings"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Config holds sender identity. Embed it in the application config.
type Config struct {
	From    string `env:"EMAIL_FROM" envDefault:"Upresume <noreply@upresume.io>"`
	ReplyTo string `env:"EMAIL_REPLY_TO"`
}

// Message describes a templated email.
type Message struct {
	To       string
	Template string // file name within the template FS, e.g. "verify.md"
	Data     any
	Tags     map[string]string
}

// Mailer renders templates from an fs.FS and delivers them through a Sender.
type Mailer struct {
	sender Sender
	fsys   fs.FS
	cfg    Config
	md     goldmark.Markdown
	layout *template.Template

	mu        sync.RWMutex
	templates map[string]*parsedTemplate
}

var defaultLayout = template.Must(template.New("layout").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><meta name="viewport" content="width=device-width,initial-scale=1"><title>{{ .Subject }}</title></head>
<body style="margin:0;padding:24px;background:#f9fafb;font-family:-apple-system,Segoe UI,Roboto,sans-serif;color:#111827">
{{ if .Preheader }}<div style="display:none">{{ .Preheader }}</div>{{ end }}
<div style="max-width:560px;margin:0 auto;background:#ffffff;border-radius:8px;padding:32px">{{ .Content }}</div>
</body>
</html>`))

// New creates a Mailer. Templates are parsed lazily and cached.
func New(sender Sender, templates fs.FS, cfg Config) *Mailer {
	return &Mailer{
		sender: sender,
		fsys:   templates,
		cfg:    cfg,
		md: goldmark.New(
			goldmark.WithExtensions(extension.Linkify, ButtonExtension()),
		),
		layout:    defaultLayout,
		templates: make(map[string]*parsedTemplate),
	}
}

// Send renders msg and delivers it.
func (m *Mailer) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return ErrNoRecipient
	}

	email, err := m.Render(msg)
	if err != nil {
		return err
	}

	if err := m.sender.Send(ctx, email); err != nil {
		return errors.Join(ErrSendFailed, err)
	}
	return nil
}

// Render produces the Email for msg without sending it.
func (m *Mailer) Render(msg Message) (*Email, error) {
	tmpl, err := m.template(msg.Template)
	if err != nil {
		return nil, err
	}

	subject, err := execute(tmpl.subject, msg.Data)
	if err != nil {
		return nil, err
	}
	if subject = strings.TrimSpace(subject); subject == "" {
		return nil, ErrNoSubject
	}

	text, err := execute(tmpl.body, msg.Data)
	if err != nil {
		return nil, err
	}

	var content bytes.Buffer
	if err := m.md.Convert([]byte(text), &content); err != nil {
		return nil, errors.Join(ErrRenderFailed, err)
	}

	var page bytes.Buffer
	err = m.layout.Execute(&page, map[string]any{
		"Subject":   subject,
		"Preheader": tmpl.meta.Preheader,
		"Content":   template.HTML(content.String()),
	})
	if err != nil {
		return nil, errors.Join(ErrRenderFailed, err)
	}

	return &Email{
		From:    m.cfg.From,
		To:      []string{msg.To},
		ReplyTo: m.cfg.ReplyTo,
		Subject: subject,
		HTML:    page.String(),
		Text:    text,
		Tags:    msg.Tags,
	}, nil
}

func (m *Mailer) template(name string) (*parsedTemplate, error) {
	m.mu.RLock()
	t, ok := m.templates[name]
	m.mu.RUnlock()
	if ok {
		return t, nil
	}

	content, err := fs.ReadFile(m.fsys, name)
	if err != nil {
		return nil, errors.Join(ErrTemplateNotFound, err)
	}
	t, err = parseTemplate(name, content)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.templates[name] = t
	m.mu.Unlock()
	return t, nil
}
