// Package view renders the server-side pages. Each page is an embedded
// html/template exposed as a templ.Component, so handlers render with
// c.Render like any other component.
package view

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/upresume/internal/theme"
)

//go:embed templates
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Static returns the stylesheet and scripts served under /static.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

var funcs = template.FuncMap{
	"toggleLabel": ToggleLabel,
	"toggleTheme": func(t theme.Theme) string { return string(t.Toggle()) },
}

var pages = mustParse()

func mustParse() map[string]*template.Template {
	base := template.Must(template.New("base").Funcs(funcs).ParseFS(templateFS, "templates/layouts/*.html"))

	files, err := fs.Glob(templateFS, "templates/pages/*.html")
	if err != nil {
		panic(err)
	}
	out := make(map[string]*template.Template, len(files))
	for _, f := range files {
		t := template.Must(template.Must(base.Clone()).ParseFS(templateFS, f))
		out[strings.TrimSuffix(path.Base(f), ".html")] = t
	}
	return out
}

// render executes the "base" layout of page with data.
func render(page string, data any) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		t, ok := pages[page]
		if !ok {
			return fmt.Errorf("view: unknown page %q", page)
		}
		return t.ExecuteTemplate(w, "base", data)
	})
}

// Base is embedded in every page's data.
type Base struct {
	Title string
	Theme theme.Theme
}

// ThemeClass is the class set on <html>.
func (b Base) ThemeClass() string {
	if b.Theme == theme.Dark {
		return "dark"
	}
	return "light"
}

// ToggleLabel is the aria-label of the theme toggle for the current theme.
func ToggleLabel(current theme.Theme) string {
	if current == theme.Dark {
		return "Switch to light theme (Shift+D)"
	}
	return "Switch to dark theme (Shift+D)"
}

// Initial is the avatar fallback: the first letter of name, else the
// uppercased first letter of email.
func Initial(name, email string) string {
	if r, _ := utf8.DecodeRuneInString(strings.TrimSpace(name)); r != utf8.RuneError {
		return string(r)
	}
	if r, _ := utf8.DecodeRuneInString(email); r != utf8.RuneError {
		return string(unicode.ToUpper(r))
	}
	return "U"
}
