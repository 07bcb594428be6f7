package domain

import (
	"errors"
	"fmt"
)

// ============================================================================
// Ingestion Errors
// ============================================================================

var (
	ErrEmptyCollection = errors.New("collection returned no documents")
	ErrMissingColumn   = errors.New("column not found in dataset")
	ErrNotEnoughRows   = errors.New("not enough rows to split into train and test sets")
	ErrInvalidSchema   = errors.New("invalid schema config")
)

// ============================================================================
// Validation / Training Errors
// ============================================================================

var (
	ErrValidationFailed   = errors.New("data validation failed")
	ErrModelBelowExpected = errors.New("trained model score is below the expected score")
)

// ============================================================================
// Storage Errors
// ============================================================================

var (
	ErrObjectNotFound = errors.New("object not found in bucket")
	ErrRunNotFound    = errors.New("training run not found")
)

// ============================================================================
// Pipeline Error
// ============================================================================

// PipelineError is the single error type surfaced by pipeline stages. It
// records which stage failed, the operation inside that stage and the cause.
type PipelineError struct {
	Stage Stage
	Op    string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Stage, e.Op, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// NewPipelineError wraps err for the given stage and operation. An error that
// already is a PipelineError is returned unchanged so the innermost stage is kept.
func NewPipelineError(stage Stage, op string, err error) error {
	if err == nil {
		return nil
	}
	var pe *PipelineError
	if errors.As(err, &pe) {
		return err
	}
	return &PipelineError{Stage: stage, Op: op, Err: err}
}

// FailedStage returns the stage recorded in err, or an empty stage when err
// did not come from a pipeline stage.
func FailedStage(err error) Stage {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Stage
	}
	return ""
}
