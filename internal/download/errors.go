package download

import (
	"errors"
	"fmt"

	"github.com/ytget/ytfetch/internal/model"
)

// StageError records which pipeline stage failed
type StageError struct {
	Stage model.Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage.Description(), e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// newStageError wraps err for stage unless it already carries a stage
func newStageError(stage model.Stage, err error) *StageError {
	var se *StageError
	if errors.As(err, &se) {
		return se
	}
	return &StageError{Stage: stage, Err: err}
}

// StageOf returns the stage recorded in err, if any
func StageOf(err error) (model.Stage, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return "", false
}
