// Package render turns render contexts into file contents. Templates are
// text/template sources looked up by id in a file system; ids ending in
// ".go.tmpl" are formatted as Go after execution.
package render

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"text/template"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/tools/imports"
)

// DefaultCacheSize bounds the number of parsed templates kept in memory.
const DefaultCacheSize = 64

var ErrUnknownTemplate = errors.New("unknown template")

//go:embed templates/*.tmpl
var builtin embed.FS

// Renderer renders the template identified by templateID with data.
type Renderer interface {
	Render(templateID string, data any) ([]byte, error)
}

// Func renders data without a template.
type Func func(data any) ([]byte, error)

// Templates is the default Renderer. It is safe for concurrent use.
type Templates struct {
	fsys      fs.FS
	funcs     map[string]Func
	cacheSize int
	cache     *lru.Cache[string, *template.Template]
	format    bool
}

type Option func(*Templates)

// WithFS replaces the built-in templates.
func WithFS(fsys fs.FS) Option {
	return func(t *Templates) {
		t.fsys = fsys
	}
}

// WithFunc serves id with fn instead of a template.
func WithFunc(id string, fn Func) Option {
	return func(t *Templates) {
		t.funcs[id] = fn
	}
}

func WithCacheSize(n int) Option {
	return func(t *Templates) {
		t.cacheSize = n
	}
}

// WithoutFormatting leaves generated Go source as the template wrote it.
func WithoutFormatting() Option {
	return func(t *Templates) {
		t.format = false
	}
}

// New creates a renderer over the built-in templates.
func New(opts ...Option) (*Templates, error) {
	sub, err := fs.Sub(builtin, "templates")
	if err != nil {
		return nil, fmt.Errorf("failed to open built-in templates: %w", err)
	}
	t := &Templates{
		fsys:      sub,
		funcs:     make(map[string]Func),
		cacheSize: DefaultCacheSize,
		format:    true,
	}
	for _, opt := range opts {
		opt(t)
	}

	cache, err := lru.New[string, *template.Template](t.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create template cache: %w", err)
	}
	t.cache = cache
	return t, nil
}

// Render implements Renderer.
func (t *Templates) Render(templateID string, data any) ([]byte, error) {
	if fn, ok := t.funcs[templateID]; ok {
		return fn(data)
	}

	tmpl, err := t.template(templateID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute template %s: %w", templateID, err)
	}

	out := buf.Bytes()
	if t.format && strings.HasSuffix(templateID, ".go.tmpl") {
		if out, err = FormatGo(strings.TrimSuffix(templateID, ".tmpl"), out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (t *Templates) template(id string) (*template.Template, error) {
	if tmpl, ok := t.cache.Get(id); ok {
		return tmpl, nil
	}

	src, err := fs.ReadFile(t.fsys, id)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownTemplate, id)
		}
		return nil, fmt.Errorf("failed to read template %s: %w", id, err)
	}

	tmpl, err := template.New(id).Funcs(funcMap).Option("missingkey=error").Parse(string(src))
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", id, err)
	}
	t.cache.Add(id, tmpl)
	return tmpl, nil
}

var funcMap = template.FuncMap{
	"quote": strconv.Quote,
	"lower": strings.ToLower,
	"upper": strings.ToUpper,
	"join":  strings.Join,
}

// FormatGo gofmts src. Imports are grouped and sorted but never added or
// removed, so the result does not depend on the local module cache.
func FormatGo(filename string, src []byte) ([]byte, error) {
	out, err := imports.Process(filename, src, &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to format %s: %w", filename, err)
	}
	return out, nil
}
