package projecttasks

import (
	"fmt"

	"github.com/tyemirov/gtasks/internal/settings"
	"github.com/tyemirov/gtasks/pkg/taskclass"
)

const coverageHTMLOutputConstant = "coverage.html"

func (tasks *Tasks) testingClass() (*taskclass.Class, []declaration) {
	class := taskclass.NewClass(testingClassNameConstant).
		Static(testsTaskNameConstant, taskclass.Signal(tasks.tests)).
		Static(coverageTaskNameConstant, taskclass.Signal(tasks.coverage)).
		Static(buildTestsTaskNameConstant, taskclass.Signal(tasks.buildTests))

	return class, []declaration{
		declare(testsTaskNameConstant, buildTestsTaskNameConstant),
		declare(coverageTaskNameConstant, buildTestsTaskNameConstant),
		declare(buildTestsTaskNameConstant, lintTestsTaskNameConstant, cleanTestsTaskNameConstant),
	}
}

// tests runs the test suite.
func (tasks *Tasks) tests(done taskclass.Done) {
	arguments := append([]string{"test"}, packagePatterns(tasks.settings.TestsPath)...)
	tasks.execute(goCommand(arguments...), done)
}

// coverage runs the test suite with a coverage profile and renders the
// configured report.
func (tasks *Tasks) coverage(done taskclass.Done) {
	go func() {
		profile := tasks.settings.CoverageProfile
		arguments := append([]string{"test", "-coverprofile=" + profile}, packagePatterns(tasks.settings.TestsPath)...)
		if testError := tasks.run(goCommand(arguments...)); testError != nil {
			done(testError)
			return
		}
		done(tasks.run(goCommand(coverageReportArguments(tasks.settings.CoverageReport, profile)...)))
	}()
}

func coverageReportArguments(report settings.CoverageReport, profile string) []string {
	switch report {
	case settings.CoverageReportHTML:
		return []string{"tool", "cover", fmt.Sprintf("-html=%s", profile), "-o", coverageHTMLOutputConstant}
	default:
		return []string{"tool", "cover", fmt.Sprintf("-func=%s", profile)}
	}
}

// buildTests compiles and vets the test packages without running them.
func (tasks *Tasks) buildTests(done taskclass.Done) {
	arguments := append([]string{"vet"}, packagePatterns(tasks.settings.TestsPath)...)
	tasks.execute(goCommand(arguments...), done)
}
