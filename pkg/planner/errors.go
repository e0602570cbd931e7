package planner

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyInput           = errors.New("stage input must not be empty")
	ErrRetriesExhausted     = errors.New("llm retries exhausted")
	ErrPlanNotFound         = errors.New("plan not found")
	ErrDuplicatePlan        = errors.New("plan id already exists")
	ErrInvalidTarget        = errors.New("invalid correction target")
	ErrEmptyInstruction     = errors.New("correction instruction must not be empty")
	ErrCorrectionInProgress = errors.New("a correction for this user is already running")
)

// PipelineError records the state a run failed in.
type PipelineError struct {
	State RunState
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("plan pipeline failed in %s: %v", e.State, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}
