package chain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/simplify-framework/graphql/internal/ctxlog"
)

const (
	DefaultStepTimeout    = 30 * time.Second
	DefaultMaxTransitions = 1000
)

// Input is handed to a step function.
type Input struct {
	Chain   string
	Step    string
	Attempt int
	Args    any
	State   *State
}

// Func is the body of a step. It must report exactly one outcome.
type Func func(ctx context.Context, in Input) Outcome

// Resolver looks up the function implementing a step.
type Resolver interface {
	Lookup(run string) (Func, bool)
}

// Registry is a map-backed Resolver.
type Registry map[string]Func

// Lookup implements Resolver.
func (r Registry) Lookup(run string) (Func, bool) {
	fn, ok := r[run]
	return fn, ok && fn != nil
}

// Meta keys set by generated servers.
const (
	MetaDataType   = "dataType"
	MetaDataSchema = "dataSchema"
)

// Request is one chain execution.
type Request struct {
	Chain *Chain
	Args  any
	// Meta seeds the execution state, e.g. the result data type and schema.
	Meta map[string]any
}

// Result is the terminal outcome of an execution.
type Result struct {
	Chain   string
	Data    any
	Err     error
	Records []Record
}

// Succeeded reports whether the chain terminated through a success transition.
func (r Result) Succeeded() bool {
	return r.Err == nil
}

// Engine runs chains. It holds no per-execution state and is safe for
// concurrent use.
type Engine struct {
	funcs          Resolver
	stepTimeout    time.Duration
	maxTransitions int
	logger         *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithStepTimeout bounds every step invocation. A step that does not
// report in time fails with ErrStepTimeout. Zero disables the bound.
func WithStepTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.stepTimeout = d
	}
}

// WithMaxTransitions bounds the number of step invocations (retries
// excluded) of a single execution.
func WithMaxTransitions(n int) Option {
	return func(e *Engine) {
		e.maxTransitions = n
	}
}

// WithLogger sets the logger. Without it the logger is taken from the
// execution context.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine creates an engine resolving step functions through funcs.
func NewEngine(funcs Resolver, opts ...Option) *Engine {
	e := &Engine{
		funcs:          funcs,
		stepTimeout:    DefaultStepTimeout,
		maxTransitions: DefaultMaxTransitions,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs req.Chain from its first step until a transition reaches Done.
func (e *Engine) Execute(ctx context.Context, req Request) Result {
	c := req.Chain
	if c == nil || len(c.steps) == 0 {
		return Result{Err: ErrEmptyChain}
	}

	logger := e.logger
	if logger == nil {
		logger = ctxlog.FromContext(ctx)
	}
	logger = logger.With("chain", c.name)

	state := newState(req.Meta)
	result := func(data any, err error) Result {
		return Result{Chain: c.name, Data: data, Err: err, Records: state.Records()}
	}

	current := c.first()
	for transitions := 0; ; transitions++ {
		if e.maxTransitions > 0 && transitions >= e.maxTransitions {
			return result(nil, fmt.Errorf("chain %s stopped at step %q after %d transitions: %w", c.name, current.Run, transitions, ErrTransitionLimit))
		}

		fn, ok := e.funcs.Lookup(current.Run)
		if !ok {
			return result(nil, fmt.Errorf("chain %s step %q: %w", c.name, current.Run, ErrUnregisteredStep))
		}

		out, attempt := e.runStep(ctx, logger, c, current, fn, req.Args, state.view())
		if err := ctx.Err(); err != nil {
			return result(out.Data, fmt.Errorf("chain %s canceled at step %q: %w", c.name, current.Run, err))
		}
		state.append(Record{Step: current.Run, Attempt: attempt, Data: out.Data, Err: out.Err})

		next := current.OnSuccess
		if !out.Succeeded() {
			next = current.OnFailure
		}
		logger.Debug("step finished", "step", current.Run, "succeeded", out.Succeeded(), "next", next)

		if next == Done {
			if out.Succeeded() {
				return result(out.Data, nil)
			}
			return result(out.Data, out.Err)
		}

		step, ok := c.Step(next)
		if !ok {
			return result(nil, fmt.Errorf("chain %s step %q transitions to %q: %w", c.name, current.Run, next, ErrUnknownStep))
		}
		current = step
	}
}

// runStep invokes a step, retrying it up to RetryCount times while it fails.
func (e *Engine) runStep(ctx context.Context, logger *slog.Logger, c *Chain, step Step, fn Func, args any, view *State) (Outcome, int) {
	var out Outcome
	attempt := 0
	for {
		out = e.invoke(ctx, fn, Input{
			Chain:   c.name,
			Step:    step.Run,
			Attempt: attempt,
			Args:    args,
			State:   view,
		})
		if out.Succeeded() || attempt >= step.RetryCount || ctx.Err() != nil {
			return out, attempt
		}
		attempt++
		logger.Warn("retrying step", "step", step.Run, "attempt", attempt, "of", step.RetryCount, "error", out.Err)
	}
}

func (e *Engine) invoke(ctx context.Context, fn Func, in Input) Outcome {
	stepCtx := ctx
	cancel := context.CancelFunc(func() {})
	if e.stepTimeout > 0 {
		stepCtx, cancel = context.WithTimeout(ctx, e.stepTimeout)
	}
	defer cancel()

	done := make(chan Outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- Failure(fmt.Errorf("step %q: %w: %v", in.Step, ErrStepPanic, r), nil)
			}
		}()
		done <- fn(stepCtx, in)
	}()

	timedOut := func() bool {
		return ctx.Err() == nil && errors.Is(stepCtx.Err(), context.DeadlineExceeded)
	}
	timeout := func() Outcome {
		return Failure(fmt.Errorf("step %q after %s: %w", in.Step, e.stepTimeout, ErrStepTimeout), nil)
	}

	select {
	case out := <-done:
		// A step that gave up because its deadline passed still timed out.
		if !out.Succeeded() && timedOut() {
			return timeout()
		}
		return out
	case <-stepCtx.Done():
		if err := ctx.Err(); err != nil {
			return Failure(err, nil)
		}
		return timeout()
	}
}

// ExecuteAll runs every request concurrently, at most limit at a time when
// limit is positive, and returns the results in request order.
func (e *Engine) ExecuteAll(ctx context.Context, reqs []Request, limit int) []Result {
	results := make([]Result, len(reqs))

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, req := range reqs {
		g.Go(func() error {
			results[i] = e.Execute(ctx, req)
			return nil
		})
	}
	_ = g.Wait()

	return results
}
