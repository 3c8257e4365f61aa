// Package manifest loads additional tasks declared in an HCL file:
//
//	task "generate" {
//	  description = "regenerate mocks"
//	  depends_on  = ["clean"]
//	  command     = ["go", "generate", "./..."]
//	  directory   = settings.source_path
//	}
//
// Expressions may reference the project settings through the settings object
// and the process environment through the env object.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/tyemirov/gtasks/internal/settings"
)

const (
	settingsVariableNameConstant    = "settings"
	environmentVariableNameConstant = "env"
	environmentSeparatorConstant    = "="
)

var (
	// ErrDuplicateTask indicates two task blocks sharing a name.
	ErrDuplicateTask = errors.New("duplicate manifest task")
	// ErrEmptyCommand indicates a task block without a command.
	ErrEmptyCommand = errors.New("manifest task has an empty command")
)

// Definition is a task declared in a manifest.
type Definition struct {
	Name        string
	Description string
	DependsOn   []string
	Command     []string
	Directory   string
}

type manifestFile struct {
	Tasks []*taskBlock `hcl:"task,block"`
}

type taskBlock struct {
	Name        string   `hcl:"name,label"`
	Description string   `hcl:"description,optional"`
	DependsOn   []string `hcl:"depends_on,optional"`
	Command     []string `hcl:"command"`
	Directory   string   `hcl:"directory,optional"`
}

// Load parses the manifest at path. Relative task directories resolve against
// the directory containing the manifest.
func Load(path string, projectSettings settings.Settings) ([]Definition, error) {
	source, readError := os.ReadFile(path)
	if readError != nil {
		return nil, fmt.Errorf("manifest.load: %w", readError)
	}
	return Parse(path, source, projectSettings)
}

// Parse decodes manifest source. The filename is used for diagnostics and to
// resolve relative task directories.
func Parse(filename string, source []byte, projectSettings settings.Settings) ([]Definition, error) {
	parser := hclparse.NewParser()
	file, diagnostics := parser.ParseHCL(source, filename)
	if diagnostics.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL manifest %s: %w", filename, diagnostics)
	}

	evaluationContext, contextError := EvalContext(projectSettings)
	if contextError != nil {
		return nil, contextError
	}

	var decoded manifestFile
	diagnostics = gohcl.DecodeBody(file.Body, evaluationContext, &decoded)
	if diagnostics.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL manifest %s: %w", filename, diagnostics)
	}

	baseDirectory := filepath.Dir(filename)
	seen := make(map[string]struct{}, len(decoded.Tasks))
	definitions := make([]Definition, 0, len(decoded.Tasks))
	for _, block := range decoded.Tasks {
		if _, duplicate := seen[block.Name]; duplicate {
			return nil, fmt.Errorf("%w %q in %s", ErrDuplicateTask, block.Name, filename)
		}
		seen[block.Name] = struct{}{}

		if len(block.Command) == 0 || len(strings.TrimSpace(block.Command[0])) == 0 {
			return nil, fmt.Errorf("%w: %q in %s", ErrEmptyCommand, block.Name, filename)
		}

		directory := block.Directory
		if len(directory) == 0 {
			directory = baseDirectory
		} else if !filepath.IsAbs(directory) {
			directory = filepath.Join(baseDirectory, directory)
		}

		definitions = append(definitions, Definition{
			Name:        block.Name,
			Description: block.Description,
			DependsOn:   append([]string(nil), block.DependsOn...),
			Command:     append([]string(nil), block.Command...),
			Directory:   directory,
		})
	}
	return definitions, nil
}

// EvalContext exposes the project settings and the environment to manifest expressions.
func EvalContext(projectSettings settings.Settings) (*hcl.EvalContext, error) {
	values, encodeError := projectSettings.ToMap()
	if encodeError != nil {
		return nil, encodeError
	}

	settingsObject := make(map[string]cty.Value, len(values))
	for key, value := range values {
		settingsObject[key] = toCtyValue(value)
	}

	environmentObject := map[string]cty.Value{}
	for _, entry := range os.Environ() {
		key, value, found := strings.Cut(entry, environmentSeparatorConstant)
		if !found || len(key) == 0 {
			continue
		}
		environmentObject[key] = cty.StringVal(value)
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			settingsVariableNameConstant:    cty.ObjectVal(settingsObject),
			environmentVariableNameConstant: cty.ObjectVal(environmentObject),
		},
	}, nil
}

func toCtyValue(value any) cty.Value {
	reflected := reflect.ValueOf(value)
	switch reflected.Kind() {
	case reflect.String:
		return cty.StringVal(reflected.String())
	case reflect.Bool:
		return cty.BoolVal(reflected.Bool())
	case reflect.Slice, reflect.Array:
		if reflected.Len() == 0 {
			return cty.ListValEmpty(cty.String)
		}
		elements := make([]cty.Value, 0, reflected.Len())
		for index := 0; index < reflected.Len(); index++ {
			elements = append(elements, cty.StringVal(fmt.Sprint(reflected.Index(index).Interface())))
		}
		return cty.ListVal(elements)
	case reflect.Invalid:
		return cty.NullVal(cty.String)
	default:
		return cty.StringVal(fmt.Sprint(value))
	}
}
