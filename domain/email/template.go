package email

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"strings"

	"github.com/aymerick/raymond"

	"github.com/zerovacancy/zerovacancy/pkg/logger"
)

//go:embed templates
var templateFS embed.FS

// DefaultLayout wraps every rendered template.
const DefaultLayout = "default"

// TemplateContext is the data passed to templates.
type TemplateContext map[string]any

// Rendered is a rendered email body.
type Rendered struct {
	HTML string
	Text string
}

// Templates renders Handlebars emails from an fs.FS laid out as
//
//	templates/*.hbs          message bodies
//	templates/layouts/*.hbs  wrappers receiving the body as {{content}}
//	templates/partials/*.hbs partials available to layouts and bodies
//
// Sources are parsed once at construction; Templates is safe for concurrent use.
type Templates struct {
	log       *slog.Logger
	templates map[string]*raymond.Template
	layouts   map[string]*raymond.Template
	fallback  *raymond.Template
}

const fallbackSource = `<p>{{#if recipientName}}Hello {{recipientName}},{{else}}Hello,{{/if}}</p>
<p>{{message}}</p>
{{#if ctaUrl}}<p><a href="{{ctaUrl}}">{{#if ctaText}}{{ctaText}}{{else}}Open{{/if}}</a></p>{{/if}}`

// NewTemplates loads the embedded templates.
func NewTemplates(log *slog.Logger) (*Templates, error) {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, err
	}
	return LoadTemplates(sub, log)
}

// LoadTemplates parses every template in fsys.
func LoadTemplates(fsys fs.FS, log *slog.Logger) (*Templates, error) {
	t := &Templates{
		log:       log.With(logger.Scope("email.template")),
		templates: make(map[string]*raymond.Template),
		layouts:   make(map[string]*raymond.Template),
	}

	partials, err := readDir(fsys, "partials")
	if err != nil {
		return nil, err
	}

	load := func(dir string, into map[string]*raymond.Template) error {
		sources, err := readDir(fsys, dir)
		if err != nil {
			return err
		}
		for name, src := range sources {
			tmpl, err := raymond.Parse(src)
			if err != nil {
				return fmt.Errorf("parse template %s: %w", path.Join(dir, name), err)
			}
			tmpl.RegisterPartials(partials)
			into[name] = tmpl
		}
		return nil
	}
	if err := load(".", t.templates); err != nil {
		return nil, err
	}
	if err := load("layouts", t.layouts); err != nil {
		return nil, err
	}

	t.fallback = raymond.MustParse(fallbackSource)

	t.log.Debug("loaded email templates",
		slog.Int("templates", len(t.templates)),
		slog.Int("layouts", len(t.layouts)),
		slog.Int("partials", len(partials)))
	return t, nil
}

// readDir returns name -> source for each .hbs file directly in dir.
// A missing directory is empty.
func readDir(fsys fs.FS, dir string) (map[string]string, error) {
	out := make(map[string]string)
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return out, nil
		}
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".hbs") {
			continue
		}
		b, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", e.Name(), err)
		}
		out[strings.TrimSuffix(e.Name(), ".hbs")] = string(b)
	}
	return out, nil
}

// Has reports whether a body template exists.
func (t *Templates) Has(name string) bool {
	_, ok := t.templates[name]
	return ok
}

// Names lists the body templates.
func (t *Templates) Names() []string {
	names := make([]string, 0, len(t.templates))
	for n := range t.templates {
		names = append(names, n)
	}
	return names
}

// Render executes template name inside layout. An empty or unknown layout
// leaves the body unwrapped.
func (t *Templates) Render(name string, ctx TemplateContext, layout string) (*Rendered, error) {
	tmpl, ok := t.templates[name]
	if !ok {
		return nil, fmt.Errorf("template not found: %s", name)
	}

	body, err := tmpl.Exec(map[string]any(ctx))
	if err != nil {
		return nil, fmt.Errorf("render template %s: %w", name, err)
	}

	html, err := t.wrap(body, ctx, layout)
	if err != nil {
		return nil, err
	}
	return &Rendered{HTML: html, Text: PlainText(ctx)}, nil
}

// RenderFallback builds a minimal message from the common context keys
// (recipientName, message, ctaUrl, ctaText) for jobs whose template is
// missing or broken.
func (t *Templates) RenderFallback(ctx TemplateContext) (*Rendered, error) {
	body, err := t.fallback.Exec(map[string]any(ctx))
	if err != nil {
		return nil, fmt.Errorf("render fallback: %w", err)
	}
	html, err := t.wrap(body, ctx, DefaultLayout)
	if err != nil {
		return nil, err
	}
	return &Rendered{HTML: html, Text: PlainText(ctx)}, nil
}

func (t *Templates) wrap(body string, ctx TemplateContext, layout string) (string, error) {
	l, ok := t.layouts[layout]
	if layout == "" || !ok {
		if layout != "" {
			t.log.Debug("layout not found, sending body unwrapped", slog.String("layout", layout))
		}
		return body, nil
	}

	layoutCtx := make(map[string]any, len(ctx)+1)
	for k, v := range ctx {
		layoutCtx[k] = v
	}
	layoutCtx["content"] = raymond.SafeString(body)

	out, err := l.Exec(layoutCtx)
	if err != nil {
		return "", fmt.Errorf("render layout %s: %w", layout, err)
	}
	return out, nil
}

// PlainText builds the text/plain alternative from the common context keys.
// A non-empty plainText key wins.
func PlainText(ctx TemplateContext) string {
	if s, ok := ctx["plainText"].(string); ok && s != "" {
		return s
	}

	var parts []string
	add := func(key, prefix string) {
		if s, ok := ctx[key].(string); ok && s != "" {
			parts = append(parts, prefix+s, "")
		}
	}
	add("title", "")
	add("message", "")
	add("ctaUrl", "Link: ")
	add("siteUrl", "")

	return strings.TrimRight(strings.Join(parts, "\n"), "\n")
}
