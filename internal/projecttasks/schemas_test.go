package projecttasks

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tyemirov/gtasks/internal/settings"
)

func TestSchemaFileName(testInstance *testing.T) {
	testCases := []struct {
		name     string
		expected string
	}{
		{name: "tsconfig", expected: "tsconfig-schema.json"},
		{name: "package.json", expected: "package-schema.json"},
		{name: "JSONSchema-draft7.json", expected: "JSONSchema-draft7.json"},
		{name: "remote/path/goreleaser.yaml", expected: "goreleaser-schema.yaml"},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expected, SchemaFileName(testCase.name))
		})
	}
}

func TestParseSchemaSources(testInstance *testing.T) {
	objectSources, objectError := ParseSchemaSources([]byte(`{"tsconfig": "https://example.com/tsconfig", "package": "https://example.com/package"}`))
	require.NoError(testInstance, objectError)
	require.Equal(testInstance, []SchemaSource{
		{Name: "tsconfig", URL: "https://example.com/tsconfig"},
		{Name: "package", URL: "https://example.com/package"},
	}, objectSources)

	arraySources, arrayError := ParseSchemaSources([]byte(`[{"name": "gomod", "url": "https://example.com/gomod"}]`))
	require.NoError(testInstance, arrayError)
	require.Equal(testInstance, []SchemaSource{{Name: "gomod", URL: "https://example.com/gomod"}}, arraySources)

	for _, invalid := range []string{`not json`, `"string"`, `[{"name": "missing-url"}]`} {
		_, invalidError := ParseSchemaSources([]byte(invalid))
		require.ErrorIs(testInstance, invalidError, ErrInvalidSchemaSources, invalid)
	}
}

func TestUpdateSchemasDownloadsAndPrettyPrints(testInstance *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		switch request.URL.Path {
		case "/tsconfig":
			_, _ = writer.Write([]byte(`{"title":"tsconfig","type":"object"}`))
		default:
			http.NotFound(writer, request)
		}
	}))
	defer server.Close()

	root := testInstance.TempDir()
	writeProjectFile(testInstance, root, "schema-sources.json", fmt.Sprintf(`{"tsconfig": "%s/tsconfig"}`, server.URL))

	tasks, tasksError := New(Dependencies{
		Executor:      newRecordingExecutor(),
		RootDirectory: root,
		Settings:      settings.Defaults(),
		HTTPClient:    server.Client(),
	})
	require.NoError(testInstance, tasksError)

	require.NoError(testInstance, tasks.updateSchemas())

	written, readError := os.ReadFile(filepath.Join(root, "json-schemas", "tsconfig-schema.json"))
	require.NoError(testInstance, readError)
	require.Equal(testInstance, "{\n  \"title\": \"tsconfig\",\n  \"type\": \"object\"\n}\n", string(written))
}

func TestUpdateSchemasReportsHTTPFailures(testInstance *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	root := testInstance.TempDir()
	writeProjectFile(testInstance, root, "schema-sources.json", fmt.Sprintf(`[{"name": "missing", "url": "%s/missing"}]`, server.URL))

	tasks, tasksError := New(Dependencies{
		Executor:      newRecordingExecutor(),
		RootDirectory: root,
		Settings:      settings.Defaults(),
		HTTPClient:    server.Client(),
	})
	require.NoError(testInstance, tasksError)

	updateError := tasks.updateSchemas()
	require.Error(testInstance, updateError)
	require.Contains(testInstance, updateError.Error(), "404")
}
