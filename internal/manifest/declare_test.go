package manifest_test

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tyemirov/gtasks/internal/execshell"
	"github.com/tyemirov/gtasks/internal/manifest"
	"github.com/tyemirov/gtasks/pkg/taskclass"
	"github.com/tyemirov/gtasks/pkg/taskrunner"
)

type recordingExecutor struct {
	mutex    sync.Mutex
	commands []execshell.ShellCommand
	result   execshell.ExecutionResult
	err      error
}

func (executor *recordingExecutor) Execute(_ context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	executor.mutex.Lock()
	defer executor.mutex.Unlock()
	executor.commands = append(executor.commands, command)
	return executor.result, executor.err
}

func TestDeclareRegistersRunnableTasks(testInstance *testing.T) {
	definitions := []manifest.Definition{
		{Name: "prepare", Command: []string{"mkdir", "-p", "out"}, Directory: "/work"},
		{Name: "generate", DependsOn: []string{"prepare"}, Command: []string{"go", "generate", "./..."}, Directory: "/work"},
	}
	executor := &recordingExecutor{result: execshell.ExecutionResult{StandardOutput: "generated\n"}}
	output := &bytes.Buffer{}
	registry := taskclass.NewRegistry()

	class, declareError := manifest.Declare(registry, definitions, executor, manifest.DeclareOptions{Output: output})
	require.NoError(testInstance, declareError)
	require.Equal(testInstance, "Manifest", class.Name())

	runner := taskrunner.New(taskrunner.Dependencies{})
	require.NoError(testInstance, registry.ApplyRegistrations(class, runner))
	require.Equal(testInstance, []taskrunner.Definition{
		{Name: "prepare"},
		{Name: "generate", Dependencies: []string{"prepare"}},
	}, runner.Definitions())

	_, runError := runner.Run(context.Background(), []string{"generate"})
	require.NoError(testInstance, runError)

	require.Len(testInstance, executor.commands, 2)
	require.Equal(testInstance, execshell.CommandName("mkdir"), executor.commands[0].Name)
	require.Equal(testInstance, []string{"generate", "./..."}, executor.commands[1].Details.Arguments)
	require.Equal(testInstance, "/work", executor.commands[1].Details.WorkingDirectory)
	require.Equal(testInstance, "generated\ngenerated\n", output.String())
}

func TestDeclareRejectsSpacesUnlessAllowed(testInstance *testing.T) {
	definitions := []manifest.Definition{{Name: "run all", Command: []string{"true"}}}

	registry := taskclass.NewRegistry()
	_, declareError := manifest.Declare(registry, definitions, &recordingExecutor{}, manifest.DeclareOptions{})
	require.ErrorIs(testInstance, declareError, taskclass.ErrTaskNameHasSpaces)

	registry.SetOptions(taskclass.Options{AllowSpacesInTaskNames: taskclass.Bool(true)})
	_, allowedError := manifest.Declare(registry, definitions, &recordingExecutor{}, manifest.DeclareOptions{})
	require.NoError(testInstance, allowedError)
}

func TestDeclareValidatesDependencies(testInstance *testing.T) {
	_, registryError := manifest.Declare(nil, nil, &recordingExecutor{}, manifest.DeclareOptions{})
	require.ErrorIs(testInstance, registryError, manifest.ErrRegistryNotConfigured)

	_, executorError := manifest.Declare(taskclass.NewRegistry(), nil, nil, manifest.DeclareOptions{})
	require.ErrorIs(testInstance, executorError, manifest.ErrExecutorNotConfigured)
}

func TestDeclaredTaskReportsCommandFailure(testInstance *testing.T) {
	failure := execshell.CommandFailedError{
		Command: execshell.ShellCommand{Name: "false"},
		Result:  execshell.ExecutionResult{ExitCode: 1, StandardError: "boom"},
	}
	executor := &recordingExecutor{err: failure}
	errorsBuffer := &bytes.Buffer{}
	registry := taskclass.NewRegistry()

	class, declareError := manifest.Declare(registry, []manifest.Definition{{Name: "fail", Command: []string{"false"}}}, executor, manifest.DeclareOptions{Errors: errorsBuffer})
	require.NoError(testInstance, declareError)

	runner := taskrunner.New(taskrunner.Dependencies{})
	require.NoError(testInstance, registry.ApplyRegistrations(class, runner))

	_, runError := runner.Run(context.Background(), []string{"fail"})
	require.ErrorAs(testInstance, runError, &execshell.CommandFailedError{})
	require.Equal(testInstance, "boom\n", errorsBuffer.String())
}
