package mailer

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	texttemplate "text/template"

	"gopkg.in/yaml.v3"
)

const frontmatterFence = "---"

type frontmatter struct {
	Subject   string `yaml:"subject"`
	Preheader string `yaml:"preheader"`
}

type parsedTemplate struct {
	meta    frontmatter
	subject *texttemplate.Template
	body    *texttemplate.Template
}

func parseTemplate(name string, content []byte) (*parsedTemplate, error) {
	meta, body, err := splitFrontmatter(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	subject, err := texttemplate.New(name + ":subject").Parse(meta.Subject)
	if err != nil {
		return nil, errors.Join(ErrRenderFailed, err)
	}
	tmpl, err := texttemplate.New(name).Parse(body)
	if err != nil {
		return nil, errors.Join(ErrRenderFailed, err)
	}

	return &parsedTemplate{meta: meta, subject: subject, body: tmpl}, nil
}

// splitFrontmatter separates an optional leading YAML block from the markdown body.
func splitFrontmatter(content []byte) (frontmatter, string, error) {
	var meta frontmatter

	text := strings.ReplaceAll(string(content), "\r\n", "\n")
	if !strings.HasPrefix(text, frontmatterFence+"\n") {
		return meta, text, nil
	}

	rest := text[len(frontmatterFence)+1:]
	end := strings.Index(rest, "\n"+frontmatterFence)
	if end == -1 {
		return meta, "", fmt.Errorf("%w: closing fence not found", ErrInvalidFrontmatter)
	}

	if err := yaml.Unmarshal([]byte(rest[:end]), &meta); err != nil {
		return meta, "", errors.Join(ErrInvalidFrontmatter, err)
	}

	body := rest[end+len(frontmatterFence)+1:]
	return meta, strings.TrimPrefix(body, "\n"), nil
}

func execute(t *texttemplate.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", errors.Join(ErrRenderFailed, err)
	}
	return buf.String(), nil
}
