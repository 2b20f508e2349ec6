package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownAnalysisType is returned by an Analyzer for a task type it has
	// no routine for. The scheduler treats it as an empty result.
	ErrUnknownAnalysisType = errors.New("unknown analysis type")

	// ErrNoContext is returned by operations that need an initialized session.
	ErrNoContext = errors.New("no active context")

	// ErrStopped is returned when the engine has been stopped.
	ErrStopped = errors.New("engine stopped")
)

// TaskExecutionError records why a task failed. It is stored on Task.Error
// and never returned past the scheduler.
type TaskExecutionError struct {
	TaskID string
	Type   TaskType
	Err    error
}

func (e *TaskExecutionError) Error() string {
	return fmt.Sprintf("task %s (%s) failed: %v", e.TaskID, e.Type, e.Err)
}

func (e *TaskExecutionError) Unwrap() error {
	return e.Err
}
