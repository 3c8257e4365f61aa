// Package projecttasks declares the built-in task classes that build, lint,
// test and clean a Go project.
package projecttasks

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"

	"go.uber.org/zap"

	"github.com/tyemirov/gtasks/internal/execshell"
	"github.com/tyemirov/gtasks/internal/settings"
	"github.com/tyemirov/gtasks/pkg/taskclass"
)

const (
	goFileClassNameConstant    = "GoFile"
	testingClassNameConstant   = "Testing"
	lintingClassNameConstant   = "Linting"
	cleansingClassNameConstant = "Cleansing"
	miscClassNameConstant      = "MiscTasks"

	defaultTaskNameConstant       = "default"
	buildTaskNameConstant         = "build"
	testsTaskNameConstant         = "tests"
	coverageTaskNameConstant      = "coverage"
	buildTestsTaskNameConstant    = "build-tests"
	lintTaskNameConstant          = "lint"
	lintTestsTaskNameConstant     = "lint-tests"
	cleanTaskNameConstant         = "clean"
	cleanTestsTaskNameConstant    = "clean-tests"
	cleanUpTaskNameConstant       = "clean-up"
	cleanResetTaskNameConstant    = "clean-reset"
	updateSchemasTaskNameConstant = "update-schemas"

	currentDirectoryConstant = "."
)

var (
	// ErrExecutorNotConfigured indicates the command executor dependency was missing.
	ErrExecutorNotConfigured = errors.New("project tasks command executor not configured")
	// ErrRegistryNotConfigured indicates the declaration registry was missing.
	ErrRegistryNotConfigured = errors.New("project tasks registry not configured")
)

// CommandExecutor runs external commands.
type CommandExecutor interface {
	Execute(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error)
}

// Dependencies configures the project task classes.
type Dependencies struct {
	Context       context.Context
	Settings      settings.Settings
	Executor      CommandExecutor
	RootDirectory string
	HTTPClient    *http.Client
	Logger        *zap.Logger
	Output        io.Writer
	Errors        io.Writer
}

// Tasks holds the collaborators shared by every project task body.
type Tasks struct {
	context       context.Context
	settings      settings.Settings
	executor      CommandExecutor
	rootDirectory string
	httpClient    *http.Client
	logger        *zap.Logger
	output        io.Writer
	errors        io.Writer
}

// New validates the dependencies and fills defaults.
func New(dependencies Dependencies) (*Tasks, error) {
	if dependencies.Executor == nil {
		return nil, ErrExecutorNotConfigured
	}

	tasks := &Tasks{
		context:       dependencies.Context,
		settings:      dependencies.Settings,
		executor:      dependencies.Executor,
		rootDirectory: dependencies.RootDirectory,
		httpClient:    dependencies.HTTPClient,
		logger:        dependencies.Logger,
		output:        dependencies.Output,
		errors:        dependencies.Errors,
	}
	if tasks.context == nil {
		tasks.context = context.Background()
	}
	if len(tasks.rootDirectory) == 0 {
		tasks.rootDirectory = currentDirectoryConstant
	}
	if tasks.httpClient == nil {
		tasks.httpClient = http.DefaultClient
	}
	if tasks.logger == nil {
		tasks.logger = zap.NewNop()
	}
	if tasks.output == nil {
		tasks.output = os.Stdout
	}
	if tasks.errors == nil {
		tasks.errors = os.Stderr
	}
	return tasks, nil
}

// Declare builds the project task classes and declares their tasks with the
// registry. Classes are returned in the order they should be applied so that
// listings show the entry points first.
func Declare(registry *taskclass.Registry, dependencies Dependencies) ([]*taskclass.Class, error) {
	if registry == nil {
		return nil, ErrRegistryNotConfigured
	}
	tasks, tasksError := New(dependencies)
	if tasksError != nil {
		return nil, tasksError
	}

	declarations := []struct {
		build func() (*taskclass.Class, []declaration)
	}{
		{build: tasks.goFileClass},
		{build: tasks.testingClass},
		{build: tasks.lintingClass},
		{build: tasks.cleansingClass},
		{build: tasks.miscClass},
	}

	classes := make([]*taskclass.Class, 0, len(declarations))
	for _, entry := range declarations {
		class, taskDeclarations := entry.build()
		for _, taskDeclaration := range taskDeclarations {
			if declareError := registry.RegisterTask(class, taskDeclaration.name, taskDeclaration.dependencies...); declareError != nil {
				return nil, declareError
			}
		}
		classes = append(classes, class)
	}
	return classes, nil
}

type declaration struct {
	name         string
	dependencies []string
}

func declare(name string, dependencies ...string) declaration {
	return declaration{name: name, dependencies: dependencies}
}
