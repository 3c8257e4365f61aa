package taskclass

import (
	"errors"
	"fmt"
)

const (
	invalidRunnerMessageConstant           = "a valid runner instance is required"
	taskNameHasSpacesMessageConstant       = "task name contains spaces"
	accessorTargetMessageConstant          = "task target must be a static method, not an accessor"
	notStaticMethodMessageConstant         = "task target must be a static method"
	configurationErrorTemplateConstant     = "%s (received %T)"
	namingErrorTemplateConstant            = "task %q has spaces, which is not recommended for task names; set AllowSpacesInTaskNames to allow them"
	accessorShapeErrorTemplateConstant     = "task %q can not be a property getter or setter, it must be a static method"
	staticMethodShapeErrorTemplateConstant = "task %q must be a static method"
)

var (
	// ErrInvalidRunner indicates that Gulp received no runner or a value without task registration.
	ErrInvalidRunner = errors.New(invalidRunnerMessageConstant)
	// ErrTaskNameHasSpaces indicates a task name containing whitespace while spaces are disallowed.
	ErrTaskNameHasSpaces = errors.New(taskNameHasSpacesMessageConstant)
	// ErrAccessorTarget indicates a task declaration on a property accessor.
	ErrAccessorTarget = errors.New(accessorTargetMessageConstant)
	// ErrNotStaticMethod indicates a task declaration on something other than a static method of a class.
	ErrNotStaticMethod = errors.New(notStaticMethodMessageConstant)
)

// ConfigurationError reports an invalid runner instance passed to Gulp.
type ConfigurationError struct {
	Instance any
}

// Error implements the error interface.
func (configurationError *ConfigurationError) Error() string {
	return fmt.Sprintf(configurationErrorTemplateConstant, invalidRunnerMessageConstant, configurationError.Instance)
}

// Unwrap exposes ErrInvalidRunner.
func (configurationError *ConfigurationError) Unwrap() error {
	return ErrInvalidRunner
}

// NamingError reports a task name rejected by name validation.
type NamingError struct {
	TaskName string
}

// Error implements the error interface.
func (namingError *NamingError) Error() string {
	return fmt.Sprintf(namingErrorTemplateConstant, namingError.TaskName)
}

// Unwrap exposes ErrTaskNameHasSpaces.
func (namingError *NamingError) Unwrap() error {
	return ErrTaskNameHasSpaces
}

// ShapeError reports a task declared on a member that is not a static method.
// Cause is ErrAccessorTarget or ErrNotStaticMethod.
type ShapeError struct {
	TaskName string
	Cause    error
}

// Error implements the error interface.
func (shapeError *ShapeError) Error() string {
	if errors.Is(shapeError.Cause, ErrAccessorTarget) {
		return fmt.Sprintf(accessorShapeErrorTemplateConstant, shapeError.TaskName)
	}
	return fmt.Sprintf(staticMethodShapeErrorTemplateConstant, shapeError.TaskName)
}

// Unwrap exposes the shape sentinel.
func (shapeError *ShapeError) Unwrap() error {
	return shapeError.Cause
}
