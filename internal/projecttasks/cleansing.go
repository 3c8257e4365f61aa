package projecttasks

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"

	"github.com/tyemirov/gtasks/pkg/taskclass"
)

const (
	globMagicCharactersConstant = "*?[{"
	pathSeparatorConstant       = "/"
	parentDirectoryConstant     = ".."
	cleanedMessageConstant      = "removed files"
	removedFieldNameConstant    = "removed"
	patternsFieldNameConstant   = "patterns"
)

// ErrPatternOutsideRoot indicates a clean pattern escaping the project root.
var ErrPatternOutsideRoot = errors.New("clean pattern must stay inside the project root")

func (tasks *Tasks) cleansingClass() (*taskclass.Class, []declaration) {
	class := taskclass.NewClass(cleansingClassNameConstant).
		Static(cleanTaskNameConstant, tasks.cleanBody(tasks.settings.CleanBuildGlobs)).
		Static(cleanTestsTaskNameConstant, tasks.cleanBody(tasks.settings.CleanTestsGlobs)).
		Static(cleanUpTaskNameConstant, tasks.cleanBody(tasks.settings.CleanUpGlobs)).
		Static(cleanResetTaskNameConstant, tasks.cleanBody(tasks.settings.CleanResetGlobs))

	return class, []declaration{
		declare(cleanTaskNameConstant),
		declare(cleanTestsTaskNameConstant),
		declare(cleanUpTaskNameConstant),
		declare(cleanResetTaskNameConstant),
	}
}

func (tasks *Tasks) cleanBody(patterns func() []string) taskclass.Body {
	return taskclass.Signal(func(done taskclass.Done) {
		globs := patterns()
		removed, cleanError := Clean(tasks.rootDirectory, globs)
		if cleanError == nil {
			tasks.logger.Info(cleanedMessageConstant, zap.Int(removedFieldNameConstant, removed), zap.Strings(patternsFieldNameConstant, globs))
		}
		done(cleanError)
	})
}

// Clean removes every path under root matching the patterns, then removes the
// fixed directory prefix of each pattern when no files remain beneath it. It
// returns the number of matches removed.
func Clean(root string, patterns []string) (int, error) {
	fileSystem := os.DirFS(root)
	removed := 0
	normalizedPatterns := make([]string, 0, len(patterns))

	for _, pattern := range patterns {
		normalized, normalizeError := normalizePattern(pattern)
		if normalizeError != nil {
			return removed, normalizeError
		}
		if len(normalized) == 0 {
			continue
		}
		normalizedPatterns = append(normalizedPatterns, normalized)

		matches, globError := doublestar.Glob(fileSystem, normalized)
		if globError != nil {
			return removed, fmt.Errorf("projecttasks.clean: %s: %w", pattern, globError)
		}
		sort.Strings(matches)
		for _, match := range matches {
			if match == "." || len(match) == 0 {
				continue
			}
			// parents sort first; their children are already gone
			if _, statError := os.Lstat(filepath.Join(root, filepath.FromSlash(match))); errors.Is(statError, fs.ErrNotExist) {
				continue
			}
			if removeError := os.RemoveAll(filepath.Join(root, filepath.FromSlash(match))); removeError != nil {
				return removed, fmt.Errorf("projecttasks.clean: %w", removeError)
			}
			removed++
		}
	}

	for _, pattern := range normalizedPatterns {
		if pruneError := pruneEmptyDirectory(root, fixedPrefix(pattern)); pruneError != nil {
			return removed, pruneError
		}
	}
	return removed, nil
}

func normalizePattern(pattern string) (string, error) {
	trimmed := strings.TrimSpace(strings.ReplaceAll(pattern, "\\", pathSeparatorConstant))
	if len(trimmed) == 0 {
		return "", nil
	}
	if strings.HasPrefix(trimmed, pathSeparatorConstant) {
		return "", fmt.Errorf("%w: %s", ErrPatternOutsideRoot, pattern)
	}
	cleaned := path.Clean(trimmed)
	if cleaned == parentDirectoryConstant || strings.HasPrefix(cleaned, parentDirectoryConstant+pathSeparatorConstant) {
		return "", fmt.Errorf("%w: %s", ErrPatternOutsideRoot, pattern)
	}
	if cleaned == "." {
		return "", nil
	}
	if !doublestar.ValidatePattern(cleaned) {
		return "", fmt.Errorf("projecttasks.clean: invalid pattern %q", pattern)
	}
	return cleaned, nil
}

// fixedPrefix returns the leading path segments of pattern that contain no
// glob syntax.
func fixedPrefix(pattern string) string {
	segments := strings.Split(pattern, pathSeparatorConstant)
	fixed := make([]string, 0, len(segments))
	for _, segment := range segments {
		if strings.ContainsAny(segment, globMagicCharactersConstant) {
			break
		}
		fixed = append(fixed, segment)
	}
	return strings.Join(fixed, pathSeparatorConstant)
}

func pruneEmptyDirectory(root string, relativeDirectory string) error {
	if len(relativeDirectory) == 0 {
		return nil
	}
	directory := filepath.Join(root, filepath.FromSlash(relativeDirectory))
	info, statError := os.Stat(directory)
	if statError != nil {
		if errors.Is(statError, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("projecttasks.clean: %w", statError)
	}
	if !info.IsDir() {
		return nil
	}

	containsFiles := false
	walkError := filepath.WalkDir(directory, func(_ string, entry fs.DirEntry, walkError error) error {
		if walkError != nil {
			return walkError
		}
		if !entry.IsDir() {
			containsFiles = true
			return fs.SkipAll
		}
		return nil
	})
	if walkError != nil {
		return fmt.Errorf("projecttasks.clean: %w", walkError)
	}
	if containsFiles {
		return nil
	}
	if removeError := os.RemoveAll(directory); removeError != nil {
		return fmt.Errorf("projecttasks.clean: %w", removeError)
	}
	return nil
}
