package taskclass

import (
	"fmt"
	"reflect"
	"strings"

	"go.uber.org/zap"
)

const (
	classSetupTemplateConstant       = "%s defines %d task(s)\n"
	taskSetupTemplateConstant        = "    %s: run %s first\n"
	noDependenciesRenderingConstant  = "nothing else"
	dependencyListPrefixConstant     = "[ "
	dependencyListSuffixConstant     = " ]"
	dependencyListSeparatorConstant  = ", "
	taskRegisteredMessageConstant    = "task registered"
	classWithoutTasksMessageConstant = "class declares no tasks"
	taskCountFieldNameConstant       = "task_count"
)

// TaskFunc is the body handed to a Runner. The runner may pass a Done callback;
// a returned non-nil Handle is the task result to await instead.
type TaskFunc func(done Done) Handle

// Runner is the task registration capability of a task runner.
type Runner interface {
	Task(name string, dependencies []string, function TaskFunc)
}

// ClassDecorator registers every declared task of a class with a runner.
type ClassDecorator func(class *Class) error

// Gulp validates the runner instance and returns a decorator registering
// classes of the default registry with it.
func Gulp(instance any) (ClassDecorator, error) {
	return defaultRegistry.Gulp(instance)
}

// ApplyRegistrations registers the declared tasks of class with the runner
// instance using the default registry.
func ApplyRegistrations(class *Class, instance any) error {
	return defaultRegistry.ApplyRegistrations(class, instance)
}

// Gulp validates the runner instance and returns a class decorator bound to it.
func (registry *Registry) Gulp(instance any) (ClassDecorator, error) {
	runner, valid := resolveRunner(instance)
	if !valid {
		return nil, &ConfigurationError{Instance: instance}
	}
	return func(class *Class) error {
		registry.apply(class, runner)
		return nil
	}, nil
}

// ApplyRegistrations registers the declared tasks of class with the runner instance.
func (registry *Registry) ApplyRegistrations(class *Class, instance any) error {
	decorate, decoratorError := registry.Gulp(instance)
	if decoratorError != nil {
		return decoratorError
	}
	return decorate(class)
}

func (registry *Registry) apply(class *Class, runner Runner) {
	settings := registry.CurrentOptions()

	records, declared := registry.records(class)
	if !declared {
		settings.Logger.Debug(classWithoutTasksMessageConstant, zap.String(classFieldNameConstant, class.Name()))
		return
	}

	if settings.OutputSetup {
		fmt.Fprintf(settings.Output, classSetupTemplateConstant, class.Name(), len(records))
	}

	for _, record := range records {
		var dependencies []string
		if len(record.DependentTasks) > 0 {
			dependencies = append([]string{}, record.DependentTasks...)
		}

		runner.Task(record.TaskName, dependencies, executionAdapter(class, record.TaskName))

		settings.Logger.Debug(taskRegisteredMessageConstant,
			zap.String(classFieldNameConstant, class.Name()),
			zap.String(taskFieldNameConstant, record.TaskName),
			zap.Strings(dependenciesFieldNameConstant, dependencies),
			zap.Int(taskCountFieldNameConstant, len(records)),
		)

		if settings.OutputSetup {
			fmt.Fprintf(settings.Output, taskSetupTemplateConstant, record.TaskName, RenderDependencies(record.DependentTasks))
		}
	}
}

// RenderDependencies formats a dependency list for the setup listing.
func RenderDependencies(dependencies []string) string {
	switch len(dependencies) {
	case 0:
		return noDependenciesRenderingConstant
	case 1:
		return dependencies[0]
	default:
		return dependencyListPrefixConstant + strings.Join(dependencies, dependencyListSeparatorConstant) + dependencyListSuffixConstant
	}
}

// executionAdapter resolves the static method when the runner invokes the task.
func executionAdapter(class *Class, taskName string) TaskFunc {
	return func(done Done) Handle {
		body, found := class.staticBody(taskName)
		if !found {
			return Completed(&ShapeError{TaskName: taskName, Cause: ErrNotStaticMethod})
		}

		switch body.kind {
		case BodySignal:
			if done == nil {
				done = func(error) {}
			}
			body.signal(done)
			return nil
		default:
			handle := body.value()
			if handle == nil {
				return Completed(nil)
			}
			return handle
		}
	}
}

func resolveRunner(instance any) (Runner, bool) {
	if instance == nil {
		return nil, false
	}
	reflected := reflect.ValueOf(instance)
	switch reflected.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		if reflected.IsNil() {
			return nil, false
		}
	}
	runner, implementsRunner := instance.(Runner)
	return runner, implementsRunner
}
