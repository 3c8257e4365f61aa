package taskrunner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tyemirov/gtasks/pkg/taskclass"
)

const (
	taskReplacedMessageConstant   = "task registered again; replacing previous definition"
	taskStartingMessageConstant   = "task starting"
	taskFinishedMessageConstant   = "task finished"
	taskFailedMessageConstant     = "task failed"
	taskSkippedMessageConstant    = "task skipped; dependency failed"
	taskFieldNameConstant         = "task"
	dependenciesFieldNameConstant = "dependencies"
	durationFieldNameConstant     = "duration"
)

// Definition describes a registered task.
type Definition struct {
	Name         string   `yaml:"name"`
	Dependencies []string `yaml:"dependencies,omitempty"`
}

// TaskResult captures the execution of a single task.
type TaskResult struct {
	Name     string
	Duration time.Duration
	Err      error
}

// Outcome summarizes a run.
type Outcome struct {
	Requested []string
	Results   []TaskResult
	Duration  time.Duration
}

// Failed returns the number of failed tasks.
func (outcome Outcome) Failed() int {
	failed := 0
	for _, result := range outcome.Results {
		if result.Err != nil {
			failed++
		}
	}
	return failed
}

type registeredTask struct {
	dependencies []string
	function     taskclass.TaskFunc
}

// Runner registers tasks and runs them with their dependencies.
type Runner struct {
	logger      *zap.Logger
	mutex       sync.Mutex
	order       []string
	definitions map[string]registeredTask
}

// New constructs an empty runner.
func New(dependencies Dependencies) *Runner {
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		logger:      logger,
		definitions: map[string]registeredTask{},
	}
}

// Task registers a task. Registering a name again replaces the previous
// definition and keeps its original position.
func (runner *Runner) Task(name string, dependencies []string, function taskclass.TaskFunc) {
	runner.mutex.Lock()
	defer runner.mutex.Unlock()

	if _, exists := runner.definitions[name]; exists {
		runner.logger.Warn(taskReplacedMessageConstant, zap.String(taskFieldNameConstant, name))
	} else {
		runner.order = append(runner.order, name)
	}
	runner.definitions[name] = registeredTask{
		dependencies: append([]string(nil), dependencies...),
		function:     function,
	}
}

// Definitions lists the registered tasks in registration order.
func (runner *Runner) Definitions() []Definition {
	runner.mutex.Lock()
	defer runner.mutex.Unlock()

	definitions := make([]Definition, 0, len(runner.order))
	for _, name := range runner.order {
		definitions = append(definitions, Definition{
			Name:         name,
			Dependencies: append([]string(nil), runner.definitions[name].dependencies...),
		})
	}
	return definitions
}

// Run executes the requested tasks after their dependencies. Independent
// tasks run concurrently; every task runs at most once per call.
func (runner *Runner) Run(ctx context.Context, names []string) (Outcome, error) {
	outcome := Outcome{Requested: append([]string(nil), names...)}
	if len(names) == 0 {
		return outcome, ErrNoTasksRequested
	}

	tasks := runner.snapshot()
	if planError := validatePlan(tasks, names); planError != nil {
		return outcome, planError
	}

	execution := newExecution(runner.logger, tasks, names)
	startedAt := time.Now()

	group, groupContext := errgroup.WithContext(ctx)
	for _, name := range names {
		taskName := name
		group.Go(func() error {
			return execution.execute(groupContext, taskName)
		})
	}
	runError := group.Wait()

	outcome.Duration = time.Since(startedAt)
	outcome.Results = execution.collectResults()
	return outcome, runError
}

func (runner *Runner) snapshot() map[string]registeredTask {
	runner.mutex.Lock()
	defer runner.mutex.Unlock()

	tasks := make(map[string]registeredTask, len(runner.definitions))
	for name, definition := range runner.definitions {
		tasks[name] = definition
	}
	return tasks
}

func validatePlan(tasks map[string]registeredTask, names []string) error {
	const (
		visiting = iota + 1
		visited
	)
	states := make(map[string]int, len(tasks))
	var path []string

	var visit func(name string) error
	visit = func(name string) error {
		switch states[name] {
		case visited:
			return nil
		case visiting:
			cycleStart := 0
			for index, entry := range path {
				if entry == name {
					cycleStart = index
					break
				}
			}
			cyclePath := append(append([]string{}, path[cycleStart:]...), name)
			return cycleError(cyclePath)
		}

		states[name] = visiting
		path = append(path, name)
		for _, dependency := range tasks[name].dependencies {
			if _, exists := tasks[dependency]; !exists {
				return unknownTaskf("task %q depends on unknown task %q", name, dependency)
			}
			if visitError := visit(dependency); visitError != nil {
				return visitError
			}
		}
		path = path[:len(path)-1]
		states[name] = visited
		return nil
	}

	for _, name := range names {
		if _, exists := tasks[name]; !exists {
			return unknownTaskf("task %q is not registered", name)
		}
		if visitError := visit(name); visitError != nil {
			return visitError
		}
	}
	return nil
}

type taskState struct {
	once sync.Once
	err  error
}

type execution struct {
	logger  *zap.Logger
	tasks   map[string]registeredTask
	states  map[string]*taskState
	mutex   sync.Mutex
	results []TaskResult
}

func newExecution(logger *zap.Logger, tasks map[string]registeredTask, names []string) *execution {
	states := make(map[string]*taskState, len(tasks))
	var collect func(name string)
	collect = func(name string) {
		if _, exists := states[name]; exists {
			return
		}
		states[name] = &taskState{}
		for _, dependency := range tasks[name].dependencies {
			collect(dependency)
		}
	}
	for _, name := range names {
		collect(name)
	}
	return &execution{logger: logger, tasks: tasks, states: states}
}

func (execution *execution) execute(ctx context.Context, name string) error {
	state := execution.states[name]
	state.once.Do(func() {
		definition := execution.tasks[name]
		if len(definition.dependencies) > 0 {
			group, groupContext := errgroup.WithContext(ctx)
			for _, dependency := range definition.dependencies {
				dependencyName := dependency
				group.Go(func() error {
					return execution.execute(groupContext, dependencyName)
				})
			}
			if dependencyError := group.Wait(); dependencyError != nil {
				execution.logger.Warn(taskSkippedMessageConstant, zap.String(taskFieldNameConstant, name), zap.Error(dependencyError))
				state.err = dependencyError
				return
			}
		}
		state.err = execution.invoke(ctx, name, definition)
	})
	return state.err
}

func (execution *execution) invoke(ctx context.Context, name string, definition registeredTask) error {
	if contextError := ctx.Err(); contextError != nil {
		return contextError
	}

	execution.logger.Info(taskStartingMessageConstant,
		zap.String(taskFieldNameConstant, name),
		zap.Strings(dependenciesFieldNameConstant, definition.dependencies),
	)
	startedAt := time.Now()

	taskError := awaitTask(ctx, definition.function)
	duration := time.Since(startedAt)
	if taskError != nil {
		taskError = &TaskError{Task: name, Cause: taskError}
		execution.logger.Error(taskFailedMessageConstant,
			zap.String(taskFieldNameConstant, name),
			zap.Duration(durationFieldNameConstant, duration),
			zap.Error(taskError),
		)
	} else {
		execution.logger.Info(taskFinishedMessageConstant,
			zap.String(taskFieldNameConstant, name),
			zap.Duration(durationFieldNameConstant, duration),
		)
	}

	execution.mutex.Lock()
	execution.results = append(execution.results, TaskResult{Name: name, Duration: duration, Err: taskError})
	execution.mutex.Unlock()
	return taskError
}

// awaitTask invokes the task and waits for its Done signal or returned Handle.
func awaitTask(ctx context.Context, function taskclass.TaskFunc) (taskError error) {
	if function == nil {
		return nil
	}

	signals := make(chan error, 1)
	done := func(err error) {
		select {
		case signals <- err:
		default:
		}
	}

	var handle taskclass.Handle
	panicked := func() (recovered bool) {
		defer func() {
			if recoveredValue := recover(); recoveredValue != nil {
				taskError = fmt.Errorf("%w: %v", ErrTaskPanicked, recoveredValue)
				recovered = true
			}
		}()
		handle = function(done)
		return false
	}()
	if panicked {
		return taskError
	}

	if handle != nil {
		go func() {
			defer func() {
				if recoveredValue := recover(); recoveredValue != nil {
					done(fmt.Errorf("%w: %v", ErrTaskPanicked, recoveredValue))
				}
			}()
			done(handle.Wait())
		}()
	}

	select {
	case signalError := <-signals:
		return signalError
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (execution *execution) collectResults() []TaskResult {
	execution.mutex.Lock()
	defer execution.mutex.Unlock()
	results := append([]TaskResult(nil), execution.results...)
	return results
}
