package taskrunner

import (
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	errOutputWriterMissing = errors.New("taskrunner.dependencies: output writer unavailable")
	errErrorWriterMissing  = errors.New("taskrunner.dependencies: error writer unavailable")
)

// DependenciesConfig captures providers required to build runner dependencies.
type DependenciesConfig struct {
	LoggerProvider func() *zap.Logger
}

// DependenciesOptions allows per-command overrides when resolving dependencies.
type DependenciesOptions struct {
	Command        *cobra.Command
	Output         io.Writer
	Errors         io.Writer
	DisableSummary bool
}

// BuildDependencies resolves the logger and writers used by runners.
func BuildDependencies(config DependenciesConfig, options DependenciesOptions) (Dependencies, error) {
	outputWriter := resolveWriter(options.Output, options.Command, true)
	if outputWriter == nil {
		return Dependencies{}, errOutputWriterMissing
	}
	errorWriter := resolveWriter(options.Errors, options.Command, false)
	if errorWriter == nil {
		return Dependencies{}, errErrorWriterMissing
	}

	return Dependencies{
		Logger:         resolveLogger(config.LoggerProvider),
		Output:         outputWriter,
		Errors:         errorWriter,
		DisableSummary: options.DisableSummary,
	}, nil
}

func resolveLogger(provider func() *zap.Logger) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func resolveWriter(provided io.Writer, command *cobra.Command, useStdout bool) io.Writer {
	if provided != nil {
		return provided
	}
	if command != nil {
		if useStdout {
			if writer := command.OutOrStdout(); writer != nil && writer != io.Discard {
				return writer
			}
		} else {
			if writer := command.ErrOrStderr(); writer != nil && writer != io.Discard {
				return writer
			}
		}
	}
	if useStdout {
		return os.Stdout
	}
	return os.Stderr
}
