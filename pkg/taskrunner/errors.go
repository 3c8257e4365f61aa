package taskrunner

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoTasksRequested indicates Run was called without task names.
	ErrNoTasksRequested = errors.New("no tasks requested")
	// ErrUnknownTask indicates a requested task or dependency that was never registered.
	ErrUnknownTask = errors.New("unknown task")
	// ErrDependencyCycle indicates tasks that depend on each other.
	ErrDependencyCycle = errors.New("dependency cycle detected")
	// ErrTaskPanicked indicates a task body panicked.
	ErrTaskPanicked = errors.New("task panicked")
)

// PlanError describes a run rejected before any task executed.
type PlanError struct {
	Kind error
	Msg  string
}

func (planError *PlanError) Error() string {
	if planError == nil {
		return ""
	}
	if planError.Msg == "" {
		return planError.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", planError.Kind.Error(), planError.Msg)
}

func (planError *PlanError) Unwrap() error { return planError.Kind }

func unknownTaskf(format string, arguments ...any) error {
	return &PlanError{Kind: ErrUnknownTask, Msg: fmt.Sprintf(format, arguments...)}
}

func cycleError(path []string) error {
	message := "cycle"
	if len(path) > 0 {
		message = "cycle: " + strings.Join(path, " -> ")
	}
	return &PlanError{Kind: ErrDependencyCycle, Msg: message}
}

// TaskError wraps the failure reported by a task body.
type TaskError struct {
	Task  string
	Cause error
}

// Error implements the error interface.
func (taskError *TaskError) Error() string {
	return fmt.Sprintf("task %q failed: %v", taskError.Task, taskError.Cause)
}

// Unwrap exposes the task failure.
func (taskError *TaskError) Unwrap() error {
	return taskError.Cause
}
