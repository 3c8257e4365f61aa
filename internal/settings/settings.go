// Package settings holds the project layout consumed by the built-in task classes.
package settings

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

const (
	defaultSourcePathConstant      = "."
	defaultTestsPathConstant       = "."
	defaultBuildOutputConstant     = "bin"
	defaultBuildPackageConstant    = "./..."
	defaultCoverageProfileConstant = "coverage.out"
	defaultSchemaSourcesConstant   = "schema-sources.json"
	defaultSchemaOutputConstant    = "json-schemas"
	mapstructureTagNameConstant    = "mapstructure"
	sliceSeparatorConstant         = ","
	schemaOutputGlobSuffixConstant = "**"
	decodeErrorTemplateConstant    = "settings.decode: %w"
	encodeErrorTemplateConstant    = "settings.encode: %w"
	invalidFieldTemplateConstant   = "%w: %s %s"
)

// CoverageReport selects the coverage report rendered by the coverage task.
type CoverageReport string

// Supported coverage reports.
const (
	CoverageReportFunc CoverageReport = "func"
	CoverageReportHTML CoverageReport = "html"
)

// ErrInvalidSettings indicates settings that cannot drive the project tasks.
var ErrInvalidSettings = errors.New("invalid settings")

// Settings describes where the project keeps its sources, outputs and residual files.
type Settings struct {
	SourcePath      string         `mapstructure:"source_path"`
	TestsPath       string         `mapstructure:"tests_path"`
	BuildOutput     string         `mapstructure:"build_output"`
	BuildPackages   []string       `mapstructure:"build_packages"`
	CoverageProfile string         `mapstructure:"coverage_profile"`
	CoverageReport  CoverageReport `mapstructure:"coverage_report"`
	SchemaSources   string         `mapstructure:"schema_sources"`
	SchemaOutput    string         `mapstructure:"schema_output"`
	CleanBuild      []string       `mapstructure:"clean_build"`
	CleanTests      []string       `mapstructure:"clean_tests"`
	CleanUp         []string       `mapstructure:"clean_up"`
	CleanReset      []string       `mapstructure:"clean_reset"`
}

// Defaults returns the settings used when no overrides are configured.
func Defaults() Settings {
	return Settings{
		SourcePath:      defaultSourcePathConstant,
		TestsPath:       defaultTestsPathConstant,
		BuildOutput:     defaultBuildOutputConstant,
		BuildPackages:   []string{defaultBuildPackageConstant},
		CoverageProfile: defaultCoverageProfileConstant,
		CoverageReport:  CoverageReportFunc,
		SchemaSources:   defaultSchemaSourcesConstant,
		SchemaOutput:    defaultSchemaOutputConstant,
		CleanBuild:      []string{defaultBuildOutputConstant + "/**"},
		CleanTests:      []string{"**/*.test", defaultCoverageProfileConstant},
		CleanUp:         []string{"coverage.html", "**/*.prof"},
		CleanReset:      []string{"vendor"},
	}
}

// Decode overlays the provided values onto the defaults and validates the result.
func Decode(values map[string]any) (Settings, error) {
	result := Defaults()
	if len(values) == 0 {
		return result, nil
	}

	decoder, decoderError := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          mapstructureTagNameConstant,
		WeaklyTypedInput: true,
		ZeroFields:       true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.StringToSliceHookFunc(sliceSeparatorConstant),
		Result:           &result,
	})
	if decoderError != nil {
		return Settings{}, fmt.Errorf(decodeErrorTemplateConstant, decoderError)
	}
	if decodeError := decoder.Decode(values); decodeError != nil {
		return Settings{}, fmt.Errorf(decodeErrorTemplateConstant, decodeError)
	}
	if validationError := result.Validate(); validationError != nil {
		return Settings{}, validationError
	}
	return result, nil
}

// Validate reports the first setting that cannot be used.
func (settings Settings) Validate() error {
	if len(strings.TrimSpace(settings.SourcePath)) == 0 {
		return fmt.Errorf(invalidFieldTemplateConstant, ErrInvalidSettings, "source_path", "must not be empty")
	}
	if len(strings.TrimSpace(settings.TestsPath)) == 0 {
		return fmt.Errorf(invalidFieldTemplateConstant, ErrInvalidSettings, "tests_path", "must not be empty")
	}
	if len(settings.BuildPackages) == 0 {
		return fmt.Errorf(invalidFieldTemplateConstant, ErrInvalidSettings, "build_packages", "must list at least one package")
	}
	switch settings.CoverageReport {
	case CoverageReportFunc, CoverageReportHTML:
	default:
		return fmt.Errorf(invalidFieldTemplateConstant, ErrInvalidSettings, "coverage_report", fmt.Sprintf("%q is not one of func, html", settings.CoverageReport))
	}
	return nil
}

// CleanBuildGlobs lists the build output.
func (settings Settings) CleanBuildGlobs() []string {
	return append([]string(nil), settings.CleanBuild...)
}

// CleanTestsGlobs lists the test output.
func (settings Settings) CleanTestsGlobs() []string {
	return append([]string(nil), settings.CleanTests...)
}

// CleanUpGlobs lists the test output plus residual files.
func (settings Settings) CleanUpGlobs() []string {
	return concatenate(settings.CleanTests, settings.CleanUp)
}

// CleanResetGlobs lists every non-essential file: build output, residual files,
// downloaded schemas and vendored dependencies.
func (settings Settings) CleanResetGlobs() []string {
	schemaGlobs := []string{}
	if len(strings.TrimSpace(settings.SchemaOutput)) > 0 {
		schemaGlobs = append(schemaGlobs, path.Join(settings.SchemaOutput, schemaOutputGlobSuffixConstant))
	}
	return concatenate(settings.CleanBuild, settings.CleanUpGlobs(), schemaGlobs, settings.CleanReset)
}

// ToMap renders the settings keyed by their configuration names.
func (settings Settings) ToMap() (map[string]any, error) {
	values := map[string]any{}
	if encodeError := mapstructure.Decode(settings, &values); encodeError != nil {
		return nil, fmt.Errorf(encodeErrorTemplateConstant, encodeError)
	}
	return values, nil
}

func concatenate(groups ...[]string) []string {
	var combined []string
	for _, group := range groups {
		combined = append(combined, group...)
	}
	return combined
}
