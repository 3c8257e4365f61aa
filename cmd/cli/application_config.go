package cli

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/tyemirov/gtasks/internal/settings"
	"github.com/tyemirov/gtasks/internal/utils"
)

//go:embed config.yaml
var embeddedDefaultConfiguration []byte

// EmbeddedDefaultConfiguration returns the default configuration shipped with the binary.
func EmbeddedDefaultConfiguration() ([]byte, string) {
	return embeddedDefaultConfiguration, configurationTypeConstant
}

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common   ApplicationCommonConfiguration `mapstructure:"common"`
	Tasks    ApplicationTasksConfiguration  `mapstructure:"tasks"`
	Settings map[string]any                 `mapstructure:"settings"`
}

// ApplicationCommonConfiguration stores logging defaults shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// ApplicationTasksConfiguration stores task declaration and run defaults.
type ApplicationTasksConfiguration struct {
	DefaultTask            string `mapstructure:"default_task"`
	AllowSpacesInTaskNames bool   `mapstructure:"allow_spaces_in_task_names"`
	OutputSetup            bool   `mapstructure:"output_setup"`
	DisableSummary         bool   `mapstructure:"disable_summary"`
	Manifest               string `mapstructure:"manifest"`
}

// withExecutionFlags applies command-line overrides to the configured task defaults.
func (configuration ApplicationTasksConfiguration) withExecutionFlags(executionFlags utils.ExecutionFlags) ApplicationTasksConfiguration {
	if executionFlags.AllowSpacesSet {
		configuration.AllowSpacesInTaskNames = executionFlags.AllowSpaces
	}
	if executionFlags.PrintSetupSet {
		configuration.OutputSetup = executionFlags.PrintSetup
	}
	if executionFlags.ManifestSet {
		configuration.Manifest = executionFlags.Manifest
	}
	configuration.Manifest = strings.TrimSpace(configuration.Manifest)
	configuration.DefaultTask = strings.TrimSpace(configuration.DefaultTask)
	if len(configuration.DefaultTask) == 0 {
		configuration.DefaultTask = defaultTaskNameConstant
	}
	return configuration
}

func (application *Application) projectSettings() (settings.Settings, error) {
	projectSettings, decodeError := settings.Decode(application.configuration.Settings)
	if decodeError != nil {
		return settings.Settings{}, fmt.Errorf(settingsDecodeErrorTemplateConstant, decodeError)
	}
	return projectSettings, nil
}

func (application *Application) tasksConfiguration(executionFlags utils.ExecutionFlags) ApplicationTasksConfiguration {
	return application.configuration.Tasks.withExecutionFlags(executionFlags)
}
