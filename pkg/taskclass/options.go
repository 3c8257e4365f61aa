package taskclass

import (
	"io"
	"os"

	"go.uber.org/zap"
)

// Options is a partial override of the registration settings. Nil fields keep
// their current value when passed to SetOptions.
type Options struct {
	// AllowSpacesInTaskNames permits whitespace in task names. Spaces make tasks
	// awkward to invoke from a shell, so they are rejected by default.
	AllowSpacesInTaskNames *bool
	// OutputSetup prints every applied class and its tasks to Output.
	OutputSetup *bool
	// Output receives the setup listing. Defaults to os.Stdout.
	Output io.Writer
	// Logger receives debug events for declarations and registrations.
	Logger *zap.Logger
}

// Settings is a snapshot of the effective registration settings.
type Settings struct {
	AllowSpacesInTaskNames bool
	OutputSetup            bool
	Output                 io.Writer
	Logger                 *zap.Logger
}

// Bool returns a pointer to the provided value for use in Options.
func Bool(value bool) *bool {
	return &value
}

func defaultSettings() Settings {
	return Settings{
		AllowSpacesInTaskNames: false,
		OutputSetup:            false,
		Output:                 os.Stdout,
		Logger:                 zap.NewNop(),
	}
}

func (settings Settings) merge(options Options) Settings {
	if options.AllowSpacesInTaskNames != nil {
		settings.AllowSpacesInTaskNames = *options.AllowSpacesInTaskNames
	}
	if options.OutputSetup != nil {
		settings.OutputSetup = *options.OutputSetup
	}
	if options.Output != nil {
		settings.Output = options.Output
	}
	if options.Logger != nil {
		settings.Logger = options.Logger
	}
	return settings
}
