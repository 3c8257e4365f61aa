package projecttasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"go.uber.org/zap"

	"github.com/tyemirov/gtasks/pkg/taskclass"
)

const (
	schemaSuffixConstant           = "-schema"
	jsonExtensionConstant          = ".json"
	schemaNameFieldConstant        = "name"
	schemaURLFieldConstant         = "url"
	schemaFileModeConstant         = 0o644
	schemaWrittenMessageConstant   = "schema updated"
	schemaSourceFieldNameConstant  = "source"
	schemaTargetFieldNameConstant  = "target"
	maximumSchemaBytesConstant     = 16 << 20
	schemaDownloadTemplateConstant = "projecttasks.schemas: download %s: %w"
)

var (
	// ErrInvalidSchemaSources indicates a schema sources document that is not a JSON object or array.
	ErrInvalidSchemaSources = errors.New("schema sources must be a JSON object of name to URL or an array of {name, url}")
	// ErrInvalidSchemaDocument indicates a downloaded schema that is not valid JSON.
	ErrInvalidSchemaDocument = errors.New("downloaded schema is not valid JSON")

	schemaNamePattern = regexp.MustCompile(`(?i)schema`)
)

// SchemaSource names a JSON schema and where to fetch it from.
type SchemaSource struct {
	Name string
	URL  string
}

func (tasks *Tasks) miscClass() (*taskclass.Class, []declaration) {
	class := taskclass.NewClass(miscClassNameConstant).
		Static(updateSchemasTaskNameConstant, taskclass.Value(func() taskclass.Handle {
			return taskclass.HandleFunc(tasks.updateSchemas)
		}))

	return class, []declaration{
		declare(updateSchemasTaskNameConstant),
	}
}

func (tasks *Tasks) updateSchemas() error {
	sourcesPath := filepath.Join(tasks.rootDirectory, tasks.settings.SchemaSources)
	document, readError := os.ReadFile(sourcesPath)
	if readError != nil {
		return fmt.Errorf("projecttasks.schemas: %w", readError)
	}
	sources, parseError := ParseSchemaSources(document)
	if parseError != nil {
		return parseError
	}

	outputDirectory := filepath.Join(tasks.rootDirectory, tasks.settings.SchemaOutput)
	if mkdirError := os.MkdirAll(outputDirectory, outputDirectoryModeConstant); mkdirError != nil {
		return fmt.Errorf("projecttasks.schemas: %w", mkdirError)
	}

	for _, source := range sources {
		schema, downloadError := tasks.downloadSchema(tasks.context, source.URL)
		if downloadError != nil {
			return downloadError
		}
		target := filepath.Join(outputDirectory, SchemaFileName(source.Name))
		if writeError := os.WriteFile(target, pretty.Pretty(schema), schemaFileModeConstant); writeError != nil {
			return fmt.Errorf("projecttasks.schemas: %w", writeError)
		}
		tasks.logger.Info(schemaWrittenMessageConstant, zap.String(schemaSourceFieldNameConstant, source.URL), zap.String(schemaTargetFieldNameConstant, target))
	}
	return nil
}

// ParseSchemaSources reads either {"name": "url", ...} or
// [{"name": "...", "url": "..."}, ...].
func ParseSchemaSources(document []byte) ([]SchemaSource, error) {
	if !gjson.ValidBytes(document) {
		return nil, ErrInvalidSchemaSources
	}
	parsed := gjson.ParseBytes(document)

	var sources []SchemaSource
	switch {
	case parsed.IsObject():
		parsed.ForEach(func(key gjson.Result, value gjson.Result) bool {
			sources = append(sources, SchemaSource{Name: key.String(), URL: value.String()})
			return true
		})
	case parsed.IsArray():
		for _, entry := range parsed.Array() {
			sources = append(sources, SchemaSource{
				Name: entry.Get(schemaNameFieldConstant).String(),
				URL:  entry.Get(schemaURLFieldConstant).String(),
			})
		}
	default:
		return nil, ErrInvalidSchemaSources
	}

	for _, source := range sources {
		if len(strings.TrimSpace(source.Name)) == 0 || len(strings.TrimSpace(source.URL)) == 0 {
			return nil, fmt.Errorf("%w: entry %q has an empty name or url", ErrInvalidSchemaSources, source.Name)
		}
	}
	return sources, nil
}

// SchemaFileName derives the output file name, appending "-schema" to base
// names that do not already mention a schema.
func SchemaFileName(name string) string {
	base := path.Base(filepath.ToSlash(name))
	extension := path.Ext(base)
	if len(extension) == 0 {
		extension = jsonExtensionConstant
	}
	base = strings.TrimSuffix(base, path.Ext(base))
	if !schemaNamePattern.MatchString(base) {
		base += schemaSuffixConstant
	}
	return base + extension
}

func (tasks *Tasks) downloadSchema(ctx context.Context, url string) ([]byte, error) {
	request, requestError := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if requestError != nil {
		return nil, fmt.Errorf(schemaDownloadTemplateConstant, url, requestError)
	}
	response, responseError := tasks.httpClient.Do(request)
	if responseError != nil {
		return nil, fmt.Errorf(schemaDownloadTemplateConstant, url, responseError)
	}
	defer response.Body.Close()

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf(schemaDownloadTemplateConstant, url, fmt.Errorf("unexpected status %s", response.Status))
	}
	body, readError := io.ReadAll(io.LimitReader(response.Body, maximumSchemaBytesConstant))
	if readError != nil {
		return nil, fmt.Errorf(schemaDownloadTemplateConstant, url, readError)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSchemaDocument, url)
	}
	return body, nil
}
