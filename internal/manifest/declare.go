package manifest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/tyemirov/gtasks/internal/execshell"
	"github.com/tyemirov/gtasks/pkg/taskclass"
)

const (
	manifestClassNameConstant    = "Manifest"
	manifestTaskDeclaredConstant = "manifest task declared"
	taskFieldNameConstant        = "task"
	descriptionFieldNameConstant = "description"
	commandFieldNameConstant     = "command"
	directoryFieldNameConstant   = "directory"
)

var (
	// ErrExecutorNotConfigured indicates the command executor dependency was missing.
	ErrExecutorNotConfigured = errors.New("manifest command executor not configured")
	// ErrRegistryNotConfigured indicates the declaration registry was missing.
	ErrRegistryNotConfigured = errors.New("manifest registry not configured")
)

// CommandExecutor runs external commands.
type CommandExecutor interface {
	Execute(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error)
}

// DeclareOptions carries the collaborators of manifest tasks.
type DeclareOptions struct {
	Context context.Context
	Logger  *zap.Logger
	Output  io.Writer
	Errors  io.Writer
}

// Declare builds the Manifest class with one static task per definition and
// declares the tasks with the registry.
func Declare(registry *taskclass.Registry, definitions []Definition, executor CommandExecutor, options DeclareOptions) (*taskclass.Class, error) {
	if registry == nil {
		return nil, ErrRegistryNotConfigured
	}
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	options = options.withDefaults()

	class := taskclass.NewClass(manifestClassNameConstant)
	for _, definition := range definitions {
		class.Static(definition.Name, taskclass.Signal(commandBody(definition, executor, options)))
	}
	for _, definition := range definitions {
		if declareError := registry.RegisterTask(class, definition.Name, definition.DependsOn...); declareError != nil {
			return nil, fmt.Errorf("manifest.declare: %w", declareError)
		}
		options.Logger.Debug(manifestTaskDeclaredConstant,
			zap.String(taskFieldNameConstant, definition.Name),
			zap.String(descriptionFieldNameConstant, definition.Description),
			zap.Strings(commandFieldNameConstant, definition.Command),
			zap.String(directoryFieldNameConstant, definition.Directory),
		)
	}
	return class, nil
}

// Descriptions maps task names to their manifest descriptions.
func Descriptions(definitions []Definition) map[string]string {
	descriptions := make(map[string]string, len(definitions))
	for _, definition := range definitions {
		if len(strings.TrimSpace(definition.Description)) > 0 {
			descriptions[definition.Name] = definition.Description
		}
	}
	return descriptions
}

func commandBody(definition Definition, executor CommandExecutor, options DeclareOptions) func(done taskclass.Done) {
	return func(done taskclass.Done) {
		command, commandError := execshell.ArgumentsCommand(definition.Command, definition.Directory)
		if commandError != nil {
			done(fmt.Errorf("manifest.%s: %w", definition.Name, commandError))
			return
		}
		go func() {
			done(execshell.RunEchoed(options.Context, executor, command, options.Output, options.Errors))
		}()
	}
}

func (options DeclareOptions) withDefaults() DeclareOptions {
	if options.Context == nil {
		options.Context = context.Background()
	}
	if options.Logger == nil {
		options.Logger = zap.NewNop()
	}
	if options.Output == nil {
		options.Output = os.Stdout
	}
	if options.Errors == nil {
		options.Errors = os.Stderr
	}
	return options
}
