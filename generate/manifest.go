package generate

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/simplify-framework/graphql/normalize"
	"github.com/simplify-framework/graphql/regen"
)

// Scope selects the entities an artifact is rendered for.
type Scope string

const (
	// ScopeProject renders the artifact once.
	ScopeProject  Scope = "project"
	ScopeModel    Scope = "model"
	ScopeServer   Scope = "server"
	ScopeResolver Scope = "resolver"
	// ScopeStep renders once per distinct step Run.
	ScopeStep Scope = "step"
)

func (s Scope) valid() bool {
	switch s {
	case ScopeProject, ScopeModel, ScopeServer, ScopeResolver, ScopeStep:
		return true
	}
	return false
}

// Artifact maps a template to output paths. Path may contain {name},
// {kebab} and {pascal}, replaced with the snake, kebab and Pascal case
// of the scoped entity's name, and {project} with the project's kebab
// name.
type Artifact struct {
	Template string
	Path     string
	Scope    Scope
	Class    regen.Classification
}

// Manifest is the ordered list of artifacts of a generation run.
type Manifest []Artifact

// DiagramTemplate is served by the chain diagram renderer rather than a
// text template.
const DiagramTemplate = "chain.mmd"

// DefaultManifest targets a Go backend built on package chain.
func DefaultManifest() Manifest {
	return Manifest{
		{Template: "schema.txt.tmpl", Path: "schema.txt", Scope: ScopeProject},
		{Template: "go.mod.tmpl", Path: "go.mod", Scope: ScopeProject, Class: regen.Customizable},
		{Template: "deploy.yaml.tmpl", Path: "deploy/functions.yaml", Scope: ScopeProject},
		{Template: "model.go.tmpl", Path: "models/{name}.go", Scope: ScopeModel},
		{Template: "resolver.go.tmpl", Path: "resolvers/{name}.go", Scope: ScopeResolver},
		{Template: "function.go.tmpl", Path: "functions/{name}.go", Scope: ScopeStep, Class: regen.Customizable},
		{Template: "server.go.tmpl", Path: "servers/{kebab}/server.go", Scope: ScopeServer, Class: regen.Customizable},
		{Template: DiagramTemplate, Path: "docs/{kebab}.mmd", Scope: ScopeResolver},
	}
}

type manifestFile struct {
	Artifacts []struct {
		Template string `yaml:"template"`
		Path     string `yaml:"path"`
		Scope    string `yaml:"scope"`
		Class    string `yaml:"class"`
	} `yaml:"artifacts"`
}

// LoadManifest reads a YAML manifest:
//
//	artifacts:
//	  - template: model.go.tmpl
//	    path: models/{name}.go
//	    scope: model
//	    class: regenerable
func LoadManifest(r io.Reader) (Manifest, error) {
	var f manifestFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}

	m := make(Manifest, 0, len(f.Artifacts))
	for i, a := range f.Artifacts {
		class, err := regen.ParseClassification(a.Class)
		if err != nil {
			return nil, fmt.Errorf("artifact %d: %w", i, err)
		}
		scope := Scope(a.Scope)
		if a.Scope == "" {
			scope = ScopeProject
		}
		m = append(m, Artifact{Template: a.Template, Path: a.Path, Scope: scope, Class: class})
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m Manifest) Validate() error {
	for i, a := range m {
		if a.Template == "" || a.Path == "" {
			return fmt.Errorf("artifact %d: template and path are required", i)
		}
		if !a.Scope.valid() {
			return fmt.Errorf("artifact %d: unknown scope %q", i, a.Scope)
		}
		if a.Scope != ScopeProject && !strings.Contains(a.Path, "{") {
			return fmt.Errorf("artifact %d: path %q of a %s artifact needs a name placeholder", i, a.Path, a.Scope)
		}
	}
	return nil
}

func expandPath(pattern string, project, name normalize.Names) string {
	return strings.NewReplacer(
		"{name}", name.Snake,
		"{kebab}", name.Kebab,
		"{pascal}", name.Pascal,
		"{project}", project.Kebab,
	).Replace(pattern)
}
