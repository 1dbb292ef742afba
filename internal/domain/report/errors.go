package report

import (
	"errors"
	"fmt"
)

var (
	// ErrIndexOutOfRange indicates the oracle chose an option that does not exist.
	ErrIndexOutOfRange = errors.New("oracle index out of range")
	// ErrInvalidReport indicates component outputs that cannot form a report.
	ErrInvalidReport = errors.New("invalid report")
	// ErrTaskPanicked indicates a per-project task panicked.
	ErrTaskPanicked = errors.New("project task panicked")
	// ErrPublishFailed indicates the sink could not deliver the report.
	ErrPublishFailed = errors.New("publishing report failed")
	// ErrNoCachedReport indicates no report has been cached for the roadmap.
	ErrNoCachedReport = errors.New("no cached report")
	// ErrStageOrder indicates an attempt to move the pipeline backwards.
	ErrStageOrder = errors.New("pipeline stage out of order")
	// ErrInvalidConfig indicates a service configuration that cannot run.
	ErrInvalidConfig = errors.New("invalid report configuration")
)

// StageError is a fatal error that aborted a run at Stage.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("report run aborted at %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
