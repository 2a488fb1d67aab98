package pipeline

import (
	"fmt"

	"github.com/desertthunder/vidx/internal/operations"
)

// StepError identifies the step that aborted a run. Position is zero-based in sorted order.
type StepError struct {
	Position int
	Kind     string
	Err      error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", e.Position+1, e.Kind, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

func stepError(pos int, op operations.Operation, err error) *StepError {
	return &StepError{Position: pos, Kind: op.Kind, Err: err}
}
