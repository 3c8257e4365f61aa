package taskclass_test

import (
	"github.com/tyemirov/gtasks/pkg/taskclass"
)

type registration struct {
	name         string
	dependencies []string
	function     taskclass.TaskFunc
}

type recordingRunner struct {
	registrations []registration
}

func (runner *recordingRunner) Task(name string, dependencies []string, function taskclass.TaskFunc) {
	runner.registrations = append(runner.registrations, registration{name: name, dependencies: dependencies, function: function})
}

func (runner *recordingRunner) names() []string {
	names := make([]string, 0, len(runner.registrations))
	for _, recorded := range runner.registrations {
		names = append(names, recorded.name)
	}
	return names
}

func (runner *recordingRunner) dependencyLists() [][]string {
	lists := make([][]string, 0, len(runner.registrations))
	for _, recorded := range runner.registrations {
		lists = append(lists, recorded.dependencies)
	}
	return lists
}

func (runner *recordingRunner) reset() {
	runner.registrations = nil
}

type notARunner struct{}
