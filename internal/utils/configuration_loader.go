package utils

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	environmentKeySeparatorConstant      = "_"
	configurationKeySeparatorConstant    = "."
	currentDirectorySearchPathConstant   = "."
	xdgConfigHomeEnvironmentVariableName = "XDG_CONFIG_HOME"
	userConfigurationDirectoryPrefix     = "."
	embeddedConfigurationErrorTemplate   = "utils.configuration: read embedded configuration: %w"
	configurationFileErrorTemplate       = "utils.configuration: read configuration file: %w"
	configurationDecodeErrorTemplate     = "utils.configuration: decode configuration: %w"
)

// LoadedConfiguration reports metadata about a configuration load.
type LoadedConfiguration struct {
	ConfigFileUsed string
}

// ConfigurationLoader merges embedded defaults, a configuration file and
// environment overrides into a typed configuration value.
type ConfigurationLoader struct {
	configurationName      string
	configurationType      string
	environmentPrefix      string
	searchPaths            []string
	embeddedConfiguration  []byte
	embeddedConfigFileType string
}

// NewConfigurationLoader constructs a ConfigurationLoader.
func NewConfigurationLoader(configurationName string, configurationType string, environmentPrefix string, searchPaths []string) *ConfigurationLoader {
	return &ConfigurationLoader{
		configurationName: configurationName,
		configurationType: configurationType,
		environmentPrefix: environmentPrefix,
		searchPaths:       append([]string(nil), searchPaths...),
	}
}

// SetEmbeddedConfiguration registers configuration content merged before any file.
func (loader *ConfigurationLoader) SetEmbeddedConfiguration(content []byte, configurationType string) {
	loader.embeddedConfiguration = append([]byte(nil), content...)
	loader.embeddedConfigFileType = configurationType
}

// LoadConfiguration decodes the merged configuration into target. An explicit
// configuration file path must exist; otherwise the search paths are tried in
// order and a missing file is not an error.
func (loader *ConfigurationLoader) LoadConfiguration(configurationFilePath string, defaultValues map[string]any, target any) (LoadedConfiguration, error) {
	configuration := viper.New()
	for key, value := range defaultValues {
		configuration.SetDefault(key, value)
	}

	if len(loader.embeddedConfiguration) > 0 {
		configuration.SetConfigType(loader.embeddedConfigFileType)
		if mergeError := configuration.MergeConfig(bytes.NewReader(loader.embeddedConfiguration)); mergeError != nil {
			return LoadedConfiguration{}, fmt.Errorf(embeddedConfigurationErrorTemplate, mergeError)
		}
	}

	trimmedPath := strings.TrimSpace(configurationFilePath)
	if len(trimmedPath) > 0 {
		configuration.SetConfigFile(trimmedPath)
	} else {
		configuration.SetConfigName(loader.configurationName)
		configuration.SetConfigType(loader.configurationType)
		for _, searchPath := range loader.searchPaths {
			configuration.AddConfigPath(searchPath)
		}
	}

	if mergeError := configuration.MergeInConfig(); mergeError != nil {
		var notFoundError viper.ConfigFileNotFoundError
		if len(trimmedPath) > 0 || !errors.As(mergeError, &notFoundError) {
			return LoadedConfiguration{}, fmt.Errorf(configurationFileErrorTemplate, mergeError)
		}
	}

	if len(loader.environmentPrefix) > 0 {
		configuration.SetEnvPrefix(loader.environmentPrefix)
	}
	configuration.SetEnvKeyReplacer(strings.NewReplacer(configurationKeySeparatorConstant, environmentKeySeparatorConstant))
	configuration.AutomaticEnv()

	if decodeError := configuration.Unmarshal(target); decodeError != nil {
		return LoadedConfiguration{}, fmt.Errorf(configurationDecodeErrorTemplate, decodeError)
	}

	return LoadedConfiguration{ConfigFileUsed: configuration.ConfigFileUsed()}, nil
}

// DefaultConfigurationSearchPaths lists the working directory, the XDG
// configuration directory and the home configuration directory for the application.
func DefaultConfigurationSearchPaths(applicationName string) []string {
	searchPaths := []string{currentDirectorySearchPathConstant}

	xdgConfigHome := strings.TrimSpace(os.Getenv(xdgConfigHomeEnvironmentVariableName))
	homeDirectory, homeError := os.UserHomeDir()
	if len(xdgConfigHome) == 0 && homeError == nil {
		xdgConfigHome = filepath.Join(homeDirectory, ".config")
	}
	if len(xdgConfigHome) > 0 {
		searchPaths = append(searchPaths, filepath.Join(xdgConfigHome, applicationName))
	}
	if homeError == nil {
		searchPaths = append(searchPaths, filepath.Join(homeDirectory, userConfigurationDirectoryPrefix+applicationName))
	}
	return searchPaths
}
