package taskclass

import (
	"strings"
	"sync"
	"unicode"

	"go.uber.org/zap"
)

const (
	taskDeclaredMessageConstant   = "task declared"
	classFieldNameConstant        = "class"
	taskFieldNameConstant         = "task"
	dependenciesFieldNameConstant = "dependencies"
)

// TaskRecord is one declared task of a class.
type TaskRecord struct {
	TaskName       string
	DependentTasks []string
}

// MethodDecorator declares the named member of target as a task.
type MethodDecorator func(target any, name string) error

// Registry holds task declarations keyed by class identity together with the
// registration settings. The zero value is not usable; call NewRegistry.
type Registry struct {
	mutex    sync.Mutex
	tasks    map[*Class][]TaskRecord
	settings Settings
}

// NewRegistry creates an empty registry with default settings.
func NewRegistry() *Registry {
	return &Registry{
		tasks:    map[*Class][]TaskRecord{},
		settings: defaultSettings(),
	}
}

var defaultRegistry = NewRegistry()

// SetOptions merges options into the default registry settings.
func SetOptions(options ...Options) {
	defaultRegistry.SetOptions(options...)
}

// CurrentOptions returns the default registry settings.
func CurrentOptions() Settings {
	return defaultRegistry.CurrentOptions()
}

// Task returns a decorator declaring tasks on the default registry.
func Task(dependencies ...string) MethodDecorator {
	return defaultRegistry.Task(dependencies...)
}

// RegisterTask declares name on class as a task of the default registry.
func RegisterTask(class *Class, name string, dependencies ...string) error {
	return defaultRegistry.RegisterTask(class, name, dependencies...)
}

// SetOptions merges every provided options value into the current settings.
// Calling it without arguments changes nothing.
func (registry *Registry) SetOptions(options ...Options) {
	registry.mutex.Lock()
	defer registry.mutex.Unlock()
	for _, override := range options {
		registry.settings = registry.settings.merge(override)
	}
}

// CurrentOptions returns a snapshot of the current settings.
func (registry *Registry) CurrentOptions() Settings {
	registry.mutex.Lock()
	defer registry.mutex.Unlock()
	return registry.settings
}

// Task returns a decorator that declares a static method as a task depending on
// the provided task names.
func (registry *Registry) Task(dependencies ...string) MethodDecorator {
	declaredDependencies := append([]string{}, dependencies...)
	return func(target any, name string) error {
		return registry.declare(target, name, declaredDependencies)
	}
}

// RegisterTask declares the named static method of class as a task.
func (registry *Registry) RegisterTask(class *Class, name string, dependencies ...string) error {
	return registry.declare(class, name, append([]string{}, dependencies...))
}

func (registry *Registry) declare(target any, name string, dependencies []string) error {
	settings := registry.CurrentOptions()

	if !settings.AllowSpacesInTaskNames && strings.IndexFunc(name, unicode.IsSpace) >= 0 {
		return &NamingError{TaskName: name}
	}

	class, isClass := target.(*Class)
	if isClass && class == nil {
		isClass = false
	}

	var definition member
	if isClass {
		definition, _ = class.lookup(name)
	}
	if definition.isAccessor() {
		return &ShapeError{TaskName: name, Cause: ErrAccessorTarget}
	}

	if !isClass {
		return &ShapeError{TaskName: name, Cause: ErrNotStaticMethod}
	}
	if _, isStatic := class.staticBody(name); !isStatic {
		return &ShapeError{TaskName: name, Cause: ErrNotStaticMethod}
	}

	registry.mutex.Lock()
	registry.tasks[class] = append(registry.tasks[class], TaskRecord{TaskName: name, DependentTasks: dependencies})
	registry.mutex.Unlock()

	settings.Logger.Debug(taskDeclaredMessageConstant,
		zap.String(classFieldNameConstant, class.Name()),
		zap.String(taskFieldNameConstant, name),
		zap.Strings(dependenciesFieldNameConstant, dependencies),
	)
	return nil
}

func (registry *Registry) records(class *Class) ([]TaskRecord, bool) {
	registry.mutex.Lock()
	defer registry.mutex.Unlock()
	records, exists := registry.tasks[class]
	if !exists {
		return nil, false
	}
	return append([]TaskRecord{}, records...), true
}
