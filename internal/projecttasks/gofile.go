package projecttasks

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/mod/modfile"

	"github.com/tyemirov/gtasks/pkg/taskclass"
)

const (
	goModFileNameConstant          = "go.mod"
	buildStartingMessageConstant   = "building module"
	modulePathFieldNameConstant    = "module"
	buildOutputFieldNameConstant   = "output"
	buildPackagesFieldNameConstant = "packages"
	outputDirectoryModeConstant    = 0o755
)

// ErrModuleFileMissing indicates the project root has no go.mod.
var ErrModuleFileMissing = errors.New("go.mod not found")

func (tasks *Tasks) goFileClass() (*taskclass.Class, []declaration) {
	class := taskclass.NewClass(goFileClassNameConstant).
		Static(defaultTaskNameConstant, taskclass.Signal(func(done taskclass.Done) { done(nil) })).
		Static(buildTaskNameConstant, taskclass.Signal(tasks.build))

	return class, []declaration{
		declare(defaultTaskNameConstant, buildTaskNameConstant),
		declare(buildTaskNameConstant, lintTaskNameConstant, cleanTaskNameConstant),
	}
}

// build compiles the configured packages into the build output directory.
func (tasks *Tasks) build(done taskclass.Done) {
	modulePath, moduleError := ModulePath(tasks.rootDirectory)
	if moduleError != nil {
		done(moduleError)
		return
	}

	outputDirectory := tasks.settings.BuildOutput
	outputPath := outputDirectory
	if !filepath.IsAbs(outputPath) {
		outputPath = filepath.Join(tasks.rootDirectory, outputPath)
	}
	if mkdirError := os.MkdirAll(outputPath, outputDirectoryModeConstant); mkdirError != nil {
		done(fmt.Errorf("projecttasks.build: %w", mkdirError))
		return
	}

	tasks.logger.Info(buildStartingMessageConstant,
		zap.String(modulePathFieldNameConstant, modulePath),
		zap.String(buildOutputFieldNameConstant, outputDirectory),
		zap.Strings(buildPackagesFieldNameConstant, tasks.settings.BuildPackages),
	)

	arguments := append([]string{"build", "-o", filepath.ToSlash(outputDirectory) + "/"}, tasks.settings.BuildPackages...)
	tasks.execute(goCommand(arguments...), done)
}

// ModulePath reads the module path declared by the go.mod in rootDirectory.
func ModulePath(rootDirectory string) (string, error) {
	goModPath := filepath.Join(rootDirectory, goModFileNameConstant)
	data, readError := os.ReadFile(goModPath)
	if readError != nil {
		if errors.Is(readError, os.ErrNotExist) {
			return "", fmt.Errorf("%w in %s", ErrModuleFileMissing, rootDirectory)
		}
		return "", fmt.Errorf("projecttasks.module: %w", readError)
	}

	modulePath := modfile.ModulePath(data)
	if len(modulePath) == 0 {
		file, parseError := modfile.Parse(goModPath, data, nil)
		if parseError != nil {
			return "", fmt.Errorf("projecttasks.module: %w", parseError)
		}
		if file.Module != nil {
			modulePath = file.Module.Mod.Path
		}
	}
	if len(modulePath) == 0 {
		return "", fmt.Errorf("projecttasks.module: %s declares no module path", goModPath)
	}
	return modulePath, nil
}
