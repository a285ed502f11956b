package chain

import "errors"

var (
	ErrEmptyChain       = errors.New("chain has no steps")
	ErrInvalidStep      = errors.New("invalid step")
	ErrDuplicateStep    = errors.New("duplicate step")
	ErrUnknownStep      = errors.New("unknown step")
	ErrNoExit           = errors.New("step cannot reach DONE")
	ErrUnregisteredStep = errors.New("no function registered for step")
	ErrStepFailed       = errors.New("step failed")
	ErrStepTimeout      = errors.New("step timed out")
	ErrStepPanic        = errors.New("step panicked")
	ErrTransitionLimit  = errors.New("transition limit exceeded")
)
