package taskrunner

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/tyemirov/gtasks/pkg/taskclass"
)

// Dependencies carries the collaborators shared by runners.
type Dependencies struct {
	Logger         *zap.Logger
	Output         io.Writer
	Errors         io.Writer
	DisableSummary bool
}

// Executor registers tasks and runs them.
type Executor interface {
	taskclass.Runner
	Definitions() []Definition
	Run(ctx context.Context, names []string) (Outcome, error)
}

// Factory constructs an Executor given runner dependencies.
type Factory func(Dependencies) Executor

// Resolve returns either the provided factory result or a default runner,
// wrapped so a summary line is printed after multi-task runs.
func Resolve(factory Factory, dependencies Dependencies) Executor {
	var base Executor
	if factory != nil {
		base = factory(dependencies)
	}
	if base == nil {
		base = New(dependencies)
	}
	return summaryExecutor{
		Executor:     base,
		dependencies: dependencies,
	}
}

type summaryExecutor struct {
	Executor
	dependencies Dependencies
}

func (executor summaryExecutor) Run(ctx context.Context, names []string) (Outcome, error) {
	outcome, err := executor.Executor.Run(ctx, names)
	executor.printSummary(outcome)
	return outcome, err
}

func (executor summaryExecutor) printSummary(outcome Outcome) {
	if executor.dependencies.DisableSummary {
		return
	}
	writer := executor.summaryWriter()
	if writer == nil {
		return
	}

	summary := RenderSummaryLine(outcome)
	if len(strings.TrimSpace(summary)) == 0 {
		return
	}
	fmt.Fprintln(writer, summary)
}

func (executor summaryExecutor) summaryWriter() io.Writer {
	if executor.dependencies.Errors != nil {
		return executor.dependencies.Errors
	}
	if executor.dependencies.Output != nil {
		return executor.dependencies.Output
	}
	return nil
}
