package taskclass

import (
	"strings"
	"sync"
)

const anonymousClassNameConstant = "AnonymousClass"

type memberKind int

const (
	memberStatic memberKind = iota + 1
	memberInstance
	memberAccessor
)

type member struct {
	kind   memberKind
	body   Body
	getter func() any
	setter func(any)
}

// Class is the identity of a task class and the table of its members. Two
// classes are the same class only when they are the same pointer.
type Class struct {
	name    string
	mutex   sync.RWMutex
	members map[string]member
}

// NewClass creates an empty class with the provided display name.
func NewClass(name string) *Class {
	trimmedName := strings.TrimSpace(name)
	if len(trimmedName) == 0 {
		trimmedName = anonymousClassNameConstant
	}
	return &Class{name: trimmedName, members: map[string]member{}}
}

// Name returns the class display name.
func (class *Class) Name() string {
	if class == nil {
		return ""
	}
	return class.name
}

// Static defines or replaces a static method.
func (class *Class) Static(name string, body Body) *Class {
	return class.define(name, member{kind: memberStatic, body: body})
}

// Instance defines or replaces an instance method. Instance methods can not be
// declared as tasks.
func (class *Class) Instance(name string, body Body) *Class {
	return class.define(name, member{kind: memberInstance, body: body})
}

// Accessor defines or replaces a property accessor. Either function may be nil.
func (class *Class) Accessor(name string, getter func() any, setter func(any)) *Class {
	return class.define(name, member{kind: memberAccessor, getter: getter, setter: setter})
}

func (class *Class) define(name string, definition member) *Class {
	class.mutex.Lock()
	defer class.mutex.Unlock()
	class.members[name] = definition
	return class
}

func (class *Class) lookup(name string) (member, bool) {
	if class == nil {
		return member{}, false
	}
	class.mutex.RLock()
	defer class.mutex.RUnlock()
	definition, exists := class.members[name]
	return definition, exists
}

func (class *Class) staticBody(name string) (Body, bool) {
	definition, exists := class.lookup(name)
	if !exists || definition.kind != memberStatic || !definition.body.invocable() {
		return Body{}, false
	}
	return definition.body, true
}

func (definition member) isAccessor() bool {
	return definition.kind == memberAccessor && (definition.getter != nil || definition.setter != nil)
}
