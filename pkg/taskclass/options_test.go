package taskclass_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tyemirov/gtasks/pkg/taskclass"
)

func TestSetOptionsWithoutArgumentsChangesNothing(testInstance *testing.T) {
	registry := taskclass.NewRegistry()
	before := registry.CurrentOptions()

	require.NotPanics(testInstance, func() { registry.SetOptions() })
	require.NotPanics(testInstance, func() { registry.SetOptions(taskclass.Options{}) })

	after := registry.CurrentOptions()
	require.Equal(testInstance, before.AllowSpacesInTaskNames, after.AllowSpacesInTaskNames)
	require.Equal(testInstance, before.OutputSetup, after.OutputSetup)
	require.False(testInstance, after.AllowSpacesInTaskNames)
	require.False(testInstance, after.OutputSetup)
	require.NotNil(testInstance, after.Output)
	require.NotNil(testInstance, after.Logger)
}

func TestSetOptionsMergesPartialValues(testInstance *testing.T) {
	registry := taskclass.NewRegistry()

	registry.SetOptions(taskclass.Options{AllowSpacesInTaskNames: taskclass.Bool(true)})
	registry.SetOptions(taskclass.Options{OutputSetup: taskclass.Bool(true)})

	settings := registry.CurrentOptions()
	require.True(testInstance, settings.AllowSpacesInTaskNames)
	require.True(testInstance, settings.OutputSetup)

	registry.SetOptions(taskclass.Options{AllowSpacesInTaskNames: taskclass.Bool(false)})
	settings = registry.CurrentOptions()
	require.False(testInstance, settings.AllowSpacesInTaskNames)
	require.True(testInstance, settings.OutputSetup)
}

func TestSetOptionsAppliesEveryArgumentInOrder(testInstance *testing.T) {
	registry := taskclass.NewRegistry()
	output := &bytes.Buffer{}
	logger := zap.NewExample()

	registry.SetOptions(
		taskclass.Options{AllowSpacesInTaskNames: taskclass.Bool(true), OutputSetup: taskclass.Bool(true)},
		taskclass.Options{OutputSetup: taskclass.Bool(false), Output: output, Logger: logger},
	)

	settings := registry.CurrentOptions()
	require.True(testInstance, settings.AllowSpacesInTaskNames)
	require.False(testInstance, settings.OutputSetup)
	require.Same(testInstance, output, settings.Output)
	require.Same(testInstance, logger, settings.Logger)
}

func TestPackageLevelSetOptionsRoundTrip(testInstance *testing.T) {
	original := taskclass.CurrentOptions()
	testInstance.Cleanup(func() {
		taskclass.SetOptions(taskclass.Options{
			AllowSpacesInTaskNames: taskclass.Bool(original.AllowSpacesInTaskNames),
			OutputSetup:            taskclass.Bool(original.OutputSetup),
		})
	})

	require.NotPanics(testInstance, func() { taskclass.SetOptions() })
	taskclass.SetOptions(taskclass.Options{AllowSpacesInTaskNames: taskclass.Bool(true), OutputSetup: taskclass.Bool(true)})
	taskclass.SetOptions(taskclass.Options{AllowSpacesInTaskNames: taskclass.Bool(true)})
	taskclass.SetOptions(taskclass.Options{OutputSetup: taskclass.Bool(true)})

	settings := taskclass.CurrentOptions()
	require.True(testInstance, settings.AllowSpacesInTaskNames)
	require.True(testInstance, settings.OutputSetup)
}
