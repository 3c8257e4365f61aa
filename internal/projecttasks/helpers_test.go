package projecttasks

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tyemirov/gtasks/internal/execshell"
)

const (
	testModulePathConstant    = "example.com/project"
	testGoModContentConstant  = "module example.com/project\n\ngo 1.22\n"
	testFormattedGoConstant   = "package sample\n\nimport \"fmt\"\n\nfunc Hello() string {\n\treturn fmt.Sprint(\"hello\")\n}\n"
	testUnformattedGoConstant = "package sample\nfunc  Hello( ) string { return \"hello\" }\n"
	testFormattedTestConstant = "package sample\n\nimport \"testing\"\n\nfunc TestHello(t *testing.T) {\n\tif Hello() != \"hello\" {\n\t\tt.Fail()\n\t}\n}\n"
	testFileModeConstant      = 0o644
	testDirectoryModeConstant = 0o755
)

type recordingExecutor struct {
	mutex    sync.Mutex
	commands []execshell.ShellCommand
	results  map[string]execshell.ExecutionResult
	failures map[string]error
}

func newRecordingExecutor() *recordingExecutor {
	return &recordingExecutor{
		results:  map[string]execshell.ExecutionResult{},
		failures: map[string]error{},
	}
}

func (executor *recordingExecutor) Execute(_ context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	executor.mutex.Lock()
	defer executor.mutex.Unlock()
	executor.commands = append(executor.commands, command)
	key := commandLine(command)
	if failure, exists := executor.failures[key]; exists {
		return execshell.ExecutionResult{}, failure
	}
	return executor.results[key], nil
}

func (executor *recordingExecutor) commandLines() []string {
	executor.mutex.Lock()
	defer executor.mutex.Unlock()
	lines := make([]string, 0, len(executor.commands))
	for _, command := range executor.commands {
		lines = append(lines, commandLine(command))
	}
	return lines
}

func commandLine(command execshell.ShellCommand) string {
	return strings.Join(append([]string{string(command.Name)}, command.Details.Arguments...), " ")
}

func writeProjectFile(testInstance *testing.T, root string, relativePath string, content string) {
	testInstance.Helper()
	absolutePath := filepath.Join(root, filepath.FromSlash(relativePath))
	require.NoError(testInstance, os.MkdirAll(filepath.Dir(absolutePath), testDirectoryModeConstant))
	require.NoError(testInstance, os.WriteFile(absolutePath, []byte(content), testFileModeConstant))
}
