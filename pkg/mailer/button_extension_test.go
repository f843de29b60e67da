package mailer_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark"

	"github.com/dmitrymomot/upresume/pkg/mailer"
)

func renderMarkdown(t *testing.T, src string) string {
	t.Helper()
	md := goldmark.New(goldmark.WithExtensions(mailer.ButtonExtension()))
	var buf bytes.Buffer
	require.NoError(t, md.Convert([]byte(src), &buf))
	return buf.String()
}

func TestButtonExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		src      string
		contains []string
		excludes []string
	}{
		{
			name:     "renders styled link",
			src:      "[!button|Verify email](https://upresume.io/verify-email?token=abc&next=1)",
			contains: []string{`<a href="https://upresume.io/verify-email?token=abc&amp;next=1" class="button"`, ">Verify email</a>"},
		},
		{
			name:     "surrounding text kept",
			src:      "Before [!button|Go](https://x.io) after",
			contains: []string{"Before <a href=\"https://x.io\"", "</a> after"},
		},
		{
			name:     "label escaped",
			src:      "[!button|<b>Go</b>](https://x.io)",
			contains: []string{"&lt;b&gt;Go&lt;/b&gt;"},
			excludes: []string{"<b>"},
		},
		{
			name:     "javascript url neutralised",
			src:      "[!button|Click](javascript:alert(1))",
			contains: []string{`href="#"`},
			excludes: []string{"javascript:"},
		},
		{
			name:     "plain link untouched",
			src:      "[docs](https://x.io/docs)",
			contains: []string{`<a href="https://x.io/docs">docs</a>`},
			excludes: []string{`class="button"`},
		},
		{
			name:     "missing url is not a button",
			src:      "[!button|Go] later",
			excludes: []string{`class="button"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			out := renderMarkdown(t, tt.src)
			for _, want := range tt.contains {
				require.Contains(t, out, want)
			}
			for _, unwanted := range tt.excludes {
				require.NotContains(t, out, unwanted)
			}
		})
	}
}

func TestMailer_RawHTMLNotPassedThrough(t *testing.T) {
	t.Parallel()

	email, err := mailer.New(&recordingSender{}, templatesWithRaw, mailer.Config{}).Render(mailer.Message{
		To:       "jane@example.com",
		Template: "raw.md",
	})
	require.NoError(t, err)
	require.NotContains(t, email.HTML, "<script>")
}
