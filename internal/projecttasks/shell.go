package projecttasks

import (
	"path/filepath"
	"strings"

	"github.com/tyemirov/gtasks/internal/execshell"
	"github.com/tyemirov/gtasks/pkg/taskclass"
)

// execute runs the command in the background and reports through done,
// echoing standard output on success and standard error on failure.
func (tasks *Tasks) execute(command execshell.ShellCommand, done taskclass.Done) {
	go func() {
		done(tasks.run(command))
	}()
}

func (tasks *Tasks) run(command execshell.ShellCommand) error {
	if len(command.Details.WorkingDirectory) == 0 {
		command.Details.WorkingDirectory = tasks.rootDirectory
	}

	return execshell.RunEchoed(tasks.context, tasks.executor, command, tasks.output, tasks.errors)
}

func goCommand(arguments ...string) execshell.ShellCommand {
	return execshell.ShellCommand{
		Name:    execshell.CommandGo,
		Details: execshell.CommandDetails{Arguments: arguments},
	}
}

// packagePatterns expands a directory into the recursive package pattern of
// the go tool.
func packagePatterns(directory string) []string {
	cleaned := filepath.ToSlash(filepath.Clean(directory))
	if cleaned == currentDirectoryConstant {
		return []string{"./..."}
	}
	if strings.HasPrefix(cleaned, "/") || strings.HasPrefix(cleaned, "../") {
		return []string{cleaned + "/..."}
	}
	return []string{"./" + cleaned + "/..."}
}
