package execshell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

const trailingNewlineConstant = "\n"

// CommandExecutor executes a single shell command.
type CommandExecutor interface {
	Execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

// ArgumentsCommand builds a command from an argument vector whose first element
// names the executable.
func ArgumentsCommand(arguments []string, workingDirectory string) (ShellCommand, error) {
	if len(arguments) == 0 || len(strings.TrimSpace(arguments[0])) == 0 {
		return ShellCommand{}, ErrCommandNameMissing
	}
	return ShellCommand{
		Name: CommandName(arguments[0]),
		Details: CommandDetails{
			Arguments:        append([]string(nil), arguments[1:]...),
			WorkingDirectory: workingDirectory,
		},
	}, nil
}

// RunEchoed executes the command, writing its standard output to output on
// success and its standard error to errorOutput when the command fails.
func RunEchoed(executionContext context.Context, executor CommandExecutor, command ShellCommand, output io.Writer, errorOutput io.Writer) error {
	result, executionError := executor.Execute(executionContext, command)
	if executionError != nil {
		var failure CommandFailedError
		if errors.As(executionError, &failure) {
			echo(errorOutput, failure.Result.StandardError)
		}
		return executionError
	}
	echo(output, result.StandardOutput)
	return nil
}

func echo(writer io.Writer, text string) {
	if writer == nil || len(strings.TrimSpace(text)) == 0 {
		return
	}
	fmt.Fprintln(writer, strings.TrimRight(text, trailingNewlineConstant))
}
