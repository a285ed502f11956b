package chain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		steps   []Step
		wantErr error
	}{
		{
			name: "valid two step chain",
			steps: []Step{
				{Run: "A", OnSuccess: "B", OnFailure: Done},
				{Run: "B", OnSuccess: Done, OnFailure: Done},
			},
		},
		{
			name:    "empty chain",
			steps:   nil,
			wantErr: ErrEmptyChain,
		},
		{
			name: "onSuccess references missing step",
			steps: []Step{
				{Run: "A", OnSuccess: "C", OnFailure: Done},
			},
			wantErr: ErrUnknownStep,
		},
		{
			name: "onFailure references missing step",
			steps: []Step{
				{Run: "A", OnSuccess: Done, OnFailure: "missing"},
			},
			wantErr: ErrUnknownStep,
		},
		{
			name: "duplicate run names",
			steps: []Step{
				{Run: "A", OnSuccess: Done, OnFailure: Done},
				{Run: "A", OnSuccess: Done, OnFailure: Done},
			},
			wantErr: ErrDuplicateStep,
		},
		{
			name: "negative retry",
			steps: []Step{
				{Run: "A", OnSuccess: Done, OnFailure: Done, RetryCount: -1},
			},
			wantErr: ErrInvalidStep,
		},
		{
			name: "missing target",
			steps: []Step{
				{Run: "A", OnFailure: Done},
			},
			wantErr: ErrInvalidStep,
		},
		{
			name: "closed loop",
			steps: []Step{
				{Run: "A", OnSuccess: "B", OnFailure: "B"},
				{Run: "B", OnSuccess: "A", OnFailure: "A"},
			},
			wantErr: ErrNoExit,
		},
		{
			name: "self loop after entry",
			steps: []Step{
				{Run: "A", OnSuccess: "B", OnFailure: Done},
				{Run: "B", OnSuccess: "B", OnFailure: "B"},
			},
			wantErr: ErrNoExit,
		},
		{
			name: "loop with a way out",
			steps: []Step{
				{Run: "A", OnSuccess: "B", OnFailure: Done},
				{Run: "B", OnSuccess: "A", OnFailure: "A", RetryCount: 1},
			},
		},
		{
			name: "unreachable closed loop",
			steps: []Step{
				{Run: "A", OnSuccess: Done, OnFailure: Done},
				{Run: "B", OnSuccess: "B", OnFailure: "B"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := Validate(tt.steps)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "Validate() error = %v, want %v", err, tt.wantErr)
		})
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	c, err := New("readBook",
		Step{Run: "checkBookPaid", OnSuccess: "readNewBook", OnFailure: "errorPaidBook"},
		Step{Run: "readNewBook", OnSuccess: Done, OnFailure: Done},
		Step{Run: "errorPaidBook", OnSuccess: Done, OnFailure: Done},
	)
	require.NoError(t, err)
	assert.Equal(t, "readBook", c.Name())
	assert.Len(t, c.Steps(), 3)

	step, ok := c.Step("readNewBook")
	require.True(t, ok)
	assert.True(t, step.Terminal())

	_, err = New("broken", Step{Run: "a", OnSuccess: "b", OnFailure: Done})
	require.ErrorIs(t, err, ErrUnknownStep)
	assert.Contains(t, err.Error(), "chain broken")
}

func TestMustNew_Panics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		MustNew("empty")
	})
}
