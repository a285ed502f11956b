// Package chain executes resolver chains: ordered steps connected by
// success and failure transitions, each step optionally retried before its
// failure transition is taken.
//
// The Step type is shared with the compiler, which validates every chain
// with Validate before any code is generated, so a chain that reaches the
// engine has already been checked for dangling transitions.
package chain

import (
	"errors"
	"fmt"
)

// Done is the transition target that terminates a chain.
const Done = "DONE"

// Step is one state of a resolver chain.
type Step struct {
	Run        string `json:"run" yaml:"run"`
	OnSuccess  string `json:"onSuccess" yaml:"onSuccess"`
	OnFailure  string `json:"onFailure" yaml:"onFailure"`
	RetryCount int    `json:"retryCount,omitempty" yaml:"retryCount,omitempty"`
	// Remote marks a step that runs as a separately deployed function.
	Remote bool `json:"remote,omitempty" yaml:"remote,omitempty"`
}

// Terminal reports whether both transitions of the step end the chain.
func (s Step) Terminal() bool {
	return s.OnSuccess == Done && s.OnFailure == Done
}

// Chain is a validated, immutable list of steps.
type Chain struct {
	name  string
	steps []Step
	index map[string]int
}

// New validates steps and builds a chain. The first step is the entry point.
func New(name string, steps ...Step) (*Chain, error) {
	if err := Validate(steps); err != nil {
		return nil, fmt.Errorf("chain %s: %w", name, err)
	}

	c := &Chain{
		name:  name,
		steps: append([]Step(nil), steps...),
		index: make(map[string]int, len(steps)),
	}
	for i, s := range c.steps {
		c.index[s.Run] = i
	}
	return c, nil
}

// MustNew is like New but panics on an invalid chain. It is meant for
// generated code whose chains were validated at compile time.
func MustNew(name string, steps ...Step) *Chain {
	c, err := New(name, steps...)
	if err != nil {
		panic(err)
	}
	return c
}

// Name returns the chain name.
func (c *Chain) Name() string {
	return c.name
}

// Steps returns a copy of the steps in declaration order.
func (c *Chain) Steps() []Step {
	return append([]Step(nil), c.steps...)
}

// Step returns the step with the given Run name.
func (c *Chain) Step(run string) (Step, bool) {
	i, ok := c.index[run]
	if !ok {
		return Step{}, false
	}
	return c.steps[i], true
}

func (c *Chain) first() Step {
	return c.steps[0]
}

// Validate checks that steps form a well-formed chain: at least one step,
// unique non-empty Run names, non-negative retry counts, and transitions
// that target either Done or another step of the same chain. Every step
// reachable from the first must also have some path to Done. All problems
// are reported together.
func Validate(steps []Step) error {
	if len(steps) == 0 {
		return ErrEmptyChain
	}

	runs := make(map[string]bool, len(steps))
	var errs []error
	for i, s := range steps {
		if s.Run == "" {
			errs = append(errs, fmt.Errorf("step #%d has no run name: %w", i+1, ErrInvalidStep))
			continue
		}
		if runs[s.Run] {
			errs = append(errs, fmt.Errorf("step %q: %w", s.Run, ErrDuplicateStep))
		}
		runs[s.Run] = true
		if s.RetryCount < 0 {
			errs = append(errs, fmt.Errorf("step %q has negative retry count %d: %w", s.Run, s.RetryCount, ErrInvalidStep))
		}
	}

	for _, s := range steps {
		if s.Run == "" {
			continue
		}
		for _, t := range []struct{ label, target string }{
			{"onSuccess", s.OnSuccess},
			{"onFailure", s.OnFailure},
		} {
			switch {
			case t.target == "":
				errs = append(errs, fmt.Errorf("step %q has no %s target: %w", s.Run, t.label, ErrInvalidStep))
			case t.target != Done && !runs[t.target]:
				errs = append(errs, fmt.Errorf("step %q %s target %q: %w", s.Run, t.label, t.target, ErrUnknownStep))
			}
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return checkExits(steps)
}

// checkExits reports steps that run from the entry point but can never
// reach Done. Loops with a way out are allowed.
func checkExits(steps []Step) error {
	byRun := make(map[string]Step, len(steps))
	for _, s := range steps {
		byRun[s.Run] = s
	}

	exits := map[string]bool{Done: true}
	for changed := true; changed; {
		changed = false
		for _, s := range steps {
			if !exits[s.Run] && (exits[s.OnSuccess] || exits[s.OnFailure]) {
				exits[s.Run] = true
				changed = true
			}
		}
	}

	var errs []error
	seen := map[string]bool{Done: true}
	queue := []string{steps[0].Run}
	seen[steps[0].Run] = true
	for len(queue) > 0 {
		run := queue[0]
		queue = queue[1:]
		if !exits[run] {
			errs = append(errs, fmt.Errorf("step %q: %w", run, ErrNoExit))
		}
		s := byRun[run]
		for _, next := range []string{s.OnSuccess, s.OnFailure} {
			if !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}
	return errors.Join(errs...)
}
