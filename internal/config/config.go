// Package config persists the project record kept next to a schema and
// resolves run settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// FileName is the project record written in the working directory.
const FileName = ".simplify-graphql.yaml"

const DefaultEnv = "dev"

var ErrNotFound = errors.New("project record not found")

// Environment holds the generation settings of one deployment stage.
type Environment struct {
	Output   string `yaml:"output,omitempty"`
	Merge    bool   `yaml:"merge,omitempty"`
	Override bool   `yaml:"override,omitempty"`
	Diff     bool   `yaml:"diff,omitempty"`
	// Manifest is a YAML artifact manifest replacing the default one.
	Manifest string `yaml:"manifest,omitempty"`
}

// Project identifies a generated backend across runs.
type Project struct {
	Name   string `yaml:"name"`
	ID     string `yaml:"id"`
	Module string `yaml:"module,omitempty"`
	// CreatedAt pins DateTime samples so regenerations are reproducible.
	CreatedAt    time.Time              `yaml:"createdAt"`
	DefaultEnv   string                 `yaml:"defaultEnv"`
	Environments map[string]Environment `yaml:"environments,omitempty"`
}

// NewProject returns a record with a fresh ID and a default environment
// writing to ./backend.
func NewProject(name string, now time.Time) *Project {
	return &Project{
		Name:       name,
		ID:         uuid.NewString(),
		CreatedAt:  now.UTC().Truncate(time.Second),
		DefaultEnv: DefaultEnv,
		Environments: map[string]Environment{
			DefaultEnv: {Output: "backend"},
		},
	}
}

// Load reads the record at path. A missing file yields ErrNotFound.
func Load(path string) (*Project, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read project record: %w", err)
	}

	var p Project
	if err := yaml.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("failed to parse project record %s: %w", path, err)
	}
	if p.ID == "" {
		return nil, fmt.Errorf("project record %s has no id", path)
	}
	if _, err := uuid.Parse(p.ID); err != nil {
		return nil, fmt.Errorf("project record %s: invalid id: %w", path, err)
	}
	if p.DefaultEnv == "" {
		p.DefaultEnv = DefaultEnv
	}
	return &p, nil
}

// LoadOrCreate loads the record at path or starts a new one named name.
// created reports whether the record is new; it is not saved.
func LoadOrCreate(path, name string, now func() time.Time) (p *Project, created bool, err error) {
	p, err = Load(path)
	if errors.Is(err, ErrNotFound) {
		return NewProject(name, now()), true, nil
	}
	return p, false, err
}

// Save writes the record to path.
func (p *Project) Save(path string) error {
	b, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode project record: %w", err)
	}
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("failed to write project record: %w", err)
	}
	return nil
}

// Environment returns the named environment, or the default one when
// name is empty. An unknown name is an error listing the known ones.
func (p *Project) Environment(name string) (string, Environment, error) {
	if name == "" {
		name = p.DefaultEnv
	}
	if env, ok := p.Environments[name]; ok {
		return name, env, nil
	}
	if name == p.DefaultEnv && len(p.Environments) == 0 {
		return name, Environment{}, nil
	}

	known := make([]string, 0, len(p.Environments))
	for k := range p.Environments {
		known = append(known, k)
	}
	sort.Strings(known)
	return "", Environment{}, fmt.Errorf("unknown environment %q (known: %s)", name, strings.Join(known, ", "))
}

// SetEnvironment records env under name.
func (p *Project) SetEnvironment(name string, env Environment) {
	if p.Environments == nil {
		p.Environments = make(map[string]Environment)
	}
	p.Environments[name] = env
}
