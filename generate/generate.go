// Package generate runs the whole pipeline: schema text is parsed,
// compiled and normalized, every manifest artifact is rendered, and the
// regeneration engine writes the results under an output directory.
package generate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/simplify-framework/graphql/chain"
	"github.com/simplify-framework/graphql/compiler"
	"github.com/simplify-framework/graphql/diagram"
	"github.com/simplify-framework/graphql/internal/ctxlog"
	"github.com/simplify-framework/graphql/internal/strcase"
	"github.com/simplify-framework/graphql/ir"
	"github.com/simplify-framework/graphql/normalize"
	"github.com/simplify-framework/graphql/parser"
	"github.com/simplify-framework/graphql/regen"
	"github.com/simplify-framework/graphql/render"
)

// DefaultRuntime is the chain engine imported by generated resolvers.
const DefaultRuntime = "github.com/simplify-framework/graphql/chain"

var ErrPathCollision = errors.New("two artifacts render to the same path")

// Data is the render context of one artifact. Project is always set; the
// field matching the artifact's scope holds the current entity.
type Data struct {
	Project  *normalize.Project
	Model    *normalize.Type
	Server   *normalize.Server
	Resolver *normalize.Resolver
	Step     *normalize.Step
}

// Source is a schema document.
type Source struct {
	Name    string
	Content string
}

// Config controls one run.
type Config struct {
	Info   normalize.Info
	Policy regen.Policy
	// Seed overrides the sample seed derived from the document.
	Seed []byte
	// Clock pins DateTime samples.
	Clock func() time.Time
}

// Output is everything a run produced before writing.
type Output struct {
	Model   *ir.ProjectModel
	Project *normalize.Project
	Files   []regen.File
}

type Generator struct {
	manifest Manifest
	renderer render.Renderer
}

// New returns a Generator rendering manifest with renderer.
func New(manifest Manifest, renderer render.Renderer) *Generator {
	return &Generator{manifest: manifest, renderer: renderer}
}

// NewDefault returns a Generator for the default manifest and the
// built-in templates.
func NewDefault() (*Generator, error) {
	r, err := NewRenderer()
	if err != nil {
		return nil, err
	}
	return New(DefaultManifest(), r), nil
}

// NewRenderer returns the built-in templates plus the chain diagram
// renderer.
func NewRenderer(opts ...render.Option) (*render.Templates, error) {
	opts = append([]render.Option{render.WithFunc(DiagramTemplate, renderDiagram)}, opts...)
	return render.New(opts...)
}

// Compile parses and compiles src without rendering anything.
func Compile(ctx context.Context, src Source, cfg Config) (*ir.ProjectModel, error) {
	decls, err := parser.Parse(src.Name, src.Content)
	if err != nil {
		return nil, err
	}

	var opts []compiler.Option
	if cfg.Seed != nil {
		opts = append(opts, compiler.WithSeed(cfg.Seed))
	}
	if cfg.Clock != nil {
		opts = append(opts, compiler.WithClock(cfg.Clock))
	}
	return compiler.Compile(ctx, decls, opts...)
}

// Build compiles src and renders every artifact. Nothing is written.
func (g *Generator) Build(ctx context.Context, src Source, cfg Config) (*Output, error) {
	if err := g.manifest.Validate(); err != nil {
		return nil, err
	}

	model, err := Compile(ctx, src, cfg)
	if err != nil {
		return nil, err
	}
	project := normalize.Normalize(model, withDefaults(cfg.Info))

	files, err := g.Render(ctx, project)
	if err != nil {
		return nil, err
	}
	return &Output{Model: model, Project: project, Files: files}, nil
}

// Run builds src and applies the files under root.
func (g *Generator) Run(ctx context.Context, src Source, root string, cfg Config) (*Report, error) {
	out, err := g.Build(ctx, src, cfg)
	if err != nil {
		return nil, err
	}

	engine := regen.New(root, cfg.Policy)
	results, err := engine.ApplyAll(ctx, out.Files)
	report := NewReport(results)
	if err != nil {
		return report, fmt.Errorf("failed to write output: %w", err)
	}
	return report, nil
}

// Render renders every artifact of the manifest for p in manifest order.
func (g *Generator) Render(ctx context.Context, p *normalize.Project) ([]regen.File, error) {
	logger := ctxlog.FromContext(ctx)

	var files []regen.File
	seen := make(map[string]string)
	for _, a := range g.manifest {
		for _, job := range jobs(a, p) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			path := expandPath(a.Path, p.Name, job.name)
			if prev, ok := seen[path]; ok {
				return nil, fmt.Errorf("%w: %s from %s and %s", ErrPathCollision, path, prev, a.Template)
			}
			seen[path] = a.Template

			content, err := g.renderer.Render(a.Template, job.data)
			if err != nil {
				return nil, fmt.Errorf("failed to render %s: %w", path, err)
			}
			logger.Debug("rendered artifact", "template", a.Template, "path", path, "bytes", len(content))
			files = append(files, regen.File{Path: path, Content: content, Class: a.Class})
		}
	}
	return files, nil
}

type job struct {
	name normalize.Names
	data Data
}

func jobs(a Artifact, p *normalize.Project) []job {
	var out []job
	switch a.Scope {
	case ScopeProject:
		out = append(out, job{name: p.Name, data: Data{Project: p}})
	case ScopeModel:
		for _, m := range p.Models.Values() {
			out = append(out, job{name: m.Name, data: Data{Project: p, Model: m}})
		}
	case ScopeServer:
		for _, s := range p.Servers.Values() {
			out = append(out, job{name: s.Name, data: Data{Project: p, Server: s}})
		}
	case ScopeResolver:
		for _, r := range p.Resolvers.Values() {
			out = append(out, job{name: r.Name, data: Data{Project: p, Resolver: r}})
		}
	case ScopeStep:
		for _, s := range p.Steps.Values() {
			out = append(out, job{name: s.Run, data: Data{Project: p, Step: s}})
		}
	}
	return out
}

func renderDiagram(data any) ([]byte, error) {
	d, ok := data.(Data)
	if !ok || d.Resolver == nil {
		return nil, fmt.Errorf("%s needs a resolver", DiagramTemplate)
	}

	steps := make([]chain.Step, 0, d.Resolver.Steps.Len)
	for _, s := range d.Resolver.Steps.Values() {
		steps = append(steps, chain.Step{
			Run:        s.Run.Value,
			OnSuccess:  s.OnSuccess.Value,
			OnFailure:  s.OnFailure.Value,
			RetryCount: s.RetryCount,
			Remote:     s.Remote,
		})
	}

	var buf bytes.Buffer
	if err := diagram.RenderChain(d.Resolver.Name.Value, steps, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func withDefaults(info normalize.Info) normalize.Info {
	if info.Name == "" {
		info.Name = "backend"
	}
	if info.Module == "" {
		info.Module = strcase.ToKebabCase(info.Name)
	}
	if info.Runtime == "" {
		info.Runtime = DefaultRuntime
	}
	return info
}
