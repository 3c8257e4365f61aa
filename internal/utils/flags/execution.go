// Package flags provides helpers for binding standardized execution flags to Cobra commands.
package flags

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	// AllowSpacesFlagName exposes the flag permitting spaces in task names.
	AllowSpacesFlagName = "allow-spaces"
	// AllowSpacesFlagUsage describes the allow-spaces flag purpose.
	AllowSpacesFlagUsage = "Permit task names containing spaces"
	// PrintSetupFlagName exposes the flag printing declared tasks while they are registered.
	PrintSetupFlagName = "print-setup"
	// PrintSetupFlagUsage describes the print-setup flag purpose.
	PrintSetupFlagUsage = "Print each class's tasks and dependencies as they are registered"
	// ManifestFlagName exposes the flag selecting an HCL task manifest.
	ManifestFlagName = "manifest"
	// ManifestFlagUsage describes the manifest flag purpose.
	ManifestFlagUsage = "Path to an HCL manifest declaring additional tasks"
)

// ExecutionDefaults describes default flag values shared across commands.
type ExecutionDefaults struct {
	AllowSpaces bool
	PrintSetup  bool
	Manifest    string
}

// BindExecutionFlags attaches the task execution flags to the provided command using persistent scope.
func BindExecutionFlags(command *cobra.Command, defaults ExecutionDefaults) {
	if command == nil {
		return
	}

	persistentFlagSet := command.PersistentFlags()
	bindToggleFlag(persistentFlagSet, AllowSpacesFlagName, defaults.AllowSpaces, AllowSpacesFlagUsage)
	bindToggleFlag(persistentFlagSet, PrintSetupFlagName, defaults.PrintSetup, PrintSetupFlagUsage)
	if persistentFlagSet.Lookup(ManifestFlagName) == nil {
		persistentFlagSet.String(ManifestFlagName, defaults.Manifest, ManifestFlagUsage)
	}
}

func bindToggleFlag(flagSet *pflag.FlagSet, name string, defaultValue bool, usage string) {
	if flagSet == nil || len(name) == 0 {
		return
	}
	if flagSet.Lookup(name) != nil {
		return
	}
	flagSet.Bool(name, defaultValue, usage)
}
