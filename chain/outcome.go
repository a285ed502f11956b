package chain

// Outcome is what a step reports: Success(data) or Failure(err, data).
type Outcome struct {
	Data any
	Err  error
}

// Success reports a successful step.
func Success(data any) Outcome {
	return Outcome{Data: data}
}

// Failure reports a failed step. A nil err is replaced by ErrStepFailed so
// that a failure can never be mistaken for a success.
func Failure(err error, data any) Outcome {
	if err == nil {
		err = ErrStepFailed
	}
	return Outcome{Data: data, Err: err}
}

// Succeeded reports whether the outcome is a success.
func (o Outcome) Succeeded() bool {
	return o.Err == nil
}
