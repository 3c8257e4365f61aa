package projecttasks

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/tools/imports"

	"github.com/tyemirov/gtasks/pkg/taskclass"
)

const (
	goFileExtensionConstant     = ".go"
	goTestFileSuffixConstant    = "_test.go"
	vendorDirectoryNameConstant = "vendor"
	testdataDirectoryConstant   = "testdata"
	importsTabWidthConstant     = 8
	lintPassedMessageConstant   = "lint passed"
	filesFieldNameConstant      = "files"
	rootFieldNameConstant       = "root"
)

// ErrUnformattedSources indicates Go files that differ from their goimports rendering.
var ErrUnformattedSources = errors.New("go sources are not goimports formatted")

// LintError lists the files that failed the formatting check.
type LintError struct {
	Root  string
	Files []string
}

// Error implements the error interface.
func (lintError *LintError) Error() string {
	return fmt.Sprintf("%s in %s: %s", ErrUnformattedSources.Error(), lintError.Root, strings.Join(lintError.Files, ", "))
}

// Unwrap exposes ErrUnformattedSources.
func (lintError *LintError) Unwrap() error {
	return ErrUnformattedSources
}

type lintSelection int

const (
	lintSources lintSelection = iota
	lintTests
)

func (tasks *Tasks) lintingClass() (*taskclass.Class, []declaration) {
	class := taskclass.NewClass(lintingClassNameConstant).
		Static(lintTaskNameConstant, taskclass.Value(func() taskclass.Handle {
			return tasks.lintHandle(tasks.settings.SourcePath, lintSources)
		})).
		Static(lintTestsTaskNameConstant, taskclass.Value(func() taskclass.Handle {
			return tasks.lintHandle(tasks.settings.TestsPath, lintTests)
		}))

	return class, []declaration{
		declare(lintTaskNameConstant),
		declare(lintTestsTaskNameConstant),
	}
}

func (tasks *Tasks) lintHandle(relativeRoot string, selection lintSelection) taskclass.Handle {
	return taskclass.HandleFunc(func() error {
		root := filepath.Join(tasks.rootDirectory, relativeRoot)
		files, lintError := LintDirectory(root, selection == lintTests)
		if lintError != nil {
			return lintError
		}
		tasks.logger.Info(lintPassedMessageConstant, zap.String(rootFieldNameConstant, root), zap.Int(filesFieldNameConstant, files))
		return nil
	})
}

// LintDirectory checks that every Go file under root matches its goimports
// rendering. When tests is true only _test.go files are checked, otherwise only
// non-test files. It returns the number of files inspected.
func LintDirectory(root string, tests bool) (int, error) {
	var unformatted []string
	inspected := 0

	walkError := filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkError error) error {
		if walkError != nil {
			return walkError
		}
		if entry.IsDir() {
			if path != root && skipDirectory(entry.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(entry.Name(), goFileExtensionConstant) {
			return nil
		}
		if strings.HasSuffix(entry.Name(), goTestFileSuffixConstant) != tests {
			return nil
		}

		inspected++
		formatted, checkError := isFormatted(path)
		if checkError != nil {
			return checkError
		}
		if !formatted {
			relativePath, relativeError := filepath.Rel(root, path)
			if relativeError != nil {
				relativePath = path
			}
			unformatted = append(unformatted, filepath.ToSlash(relativePath))
		}
		return nil
	})
	if walkError != nil {
		return inspected, fmt.Errorf("projecttasks.lint: %w", walkError)
	}

	if len(unformatted) > 0 {
		sort.Strings(unformatted)
		return inspected, &LintError{Root: root, Files: unformatted}
	}
	return inspected, nil
}

func skipDirectory(name string) bool {
	return name == vendorDirectoryNameConstant ||
		name == testdataDirectoryConstant ||
		strings.HasPrefix(name, ".") ||
		strings.HasPrefix(name, "_")
}

func isFormatted(path string) (bool, error) {
	source, readError := os.ReadFile(path)
	if readError != nil {
		return false, readError
	}
	formatted, formatError := imports.Process(path, source, &imports.Options{
		Comments:   true,
		FormatOnly: true,
		TabIndent:  true,
		TabWidth:   importsTabWidthConstant,
	})
	if formatError != nil {
		return false, fmt.Errorf("%s: %w", path, formatError)
	}
	return bytes.Equal(source, formatted), nil
}
