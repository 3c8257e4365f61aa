package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/tyemirov/gtasks/internal/execshell"
	"github.com/tyemirov/gtasks/internal/manifest"
	"github.com/tyemirov/gtasks/internal/projecttasks"
	flagutils "github.com/tyemirov/gtasks/internal/utils/flags"
	"github.com/tyemirov/gtasks/pkg/taskclass"
	"github.com/tyemirov/gtasks/pkg/taskrunner"
)

const (
	tasksCommandUseNameConstant            = "tasks"
	tasksCommandAliasConstant              = "ls"
	tasksCommandShortDescriptionConstant   = "List registered tasks and their dependencies"
	tasksCommandLongDescriptionConstant    = "tasks declares every task class, registers it with the runner and prints the resulting tasks in registration order without running them."
	tasksFormatFlagNameConstant            = "format"
	tasksFormatFlagUsageConstant           = "Listing format (text or yaml)."
	tasksFormatTextConstant                = "text"
	tasksFormatYAMLConstant                = "yaml"
	unsupportedTasksFormatTemplateConstant = "unsupported tasks format %q"
	taskListingTemplateConstant            = "%s: run %s first\n"
	taskDescriptionTemplateConstant        = "    %s\n"
	workingDirectoryErrorTemplateConstant  = "unable to determine working directory: %w"
	sessionComposedMessageConstant         = "task classes applied"
	classCountFieldConstant                = "class_count"
	manifestFieldConstant                  = "manifest"
)

// taskListing is one entry of the tasks listing.
type taskListing struct {
	Name         string   `yaml:"name"`
	Dependencies []string `yaml:"dependencies,omitempty"`
	Description  string   `yaml:"description,omitempty"`
}

type taskSession struct {
	taskrunner.Executor
	descriptions map[string]string
}

func (application *Application) newTasksCommand() *cobra.Command {
	var format string
	command := &cobra.Command{
		Use:           tasksCommandUseNameConstant,
		Aliases:       []string{tasksCommandAliasConstant},
		Short:         tasksCommandShortDescriptionConstant,
		Long:          tasksCommandLongDescriptionConstant,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			executionFlags, _ := flagutils.ResolveExecutionFlags(command)
			session, sessionError := application.composeSession(command, application.tasksConfiguration(executionFlags))
			if sessionError != nil {
				return sessionError
			}
			return renderTaskListing(command.OutOrStdout(), session, format)
		},
	}
	command.Flags().StringVar(&format, tasksFormatFlagNameConstant, tasksFormatTextConstant, tasksFormatFlagUsageConstant)
	return command
}

// composeSession declares the project task classes and the optional manifest
// class, then applies each of them to a freshly resolved runner.
func (application *Application) composeSession(command *cobra.Command, tasksConfiguration ApplicationTasksConfiguration) (*taskSession, error) {
	projectSettings, settingsError := application.projectSettings()
	if settingsError != nil {
		return nil, settingsError
	}

	rootDirectory, workingDirectoryError := os.Getwd()
	if workingDirectoryError != nil {
		return nil, fmt.Errorf(workingDirectoryErrorTemplateConstant, workingDirectoryError)
	}

	registry := taskclass.NewRegistry()
	registry.SetOptions(taskclass.Options{
		AllowSpacesInTaskNames: taskclass.Bool(tasksConfiguration.AllowSpacesInTaskNames),
		OutputSetup:            taskclass.Bool(tasksConfiguration.OutputSetup),
		Output:                 command.OutOrStdout(),
		Logger:                 application.logger,
	})

	shellExecutor, executorError := execshell.NewShellExecutor(application.logger, application.commandRunner, application.humanReadableLoggingEnabled())
	if executorError != nil {
		return nil, executorError
	}

	classes, declarationError := projecttasks.Declare(registry, projecttasks.Dependencies{
		Context:       command.Context(),
		Settings:      projectSettings,
		Executor:      shellExecutor,
		RootDirectory: rootDirectory,
		Logger:        application.logger,
		Output:        command.OutOrStdout(),
		Errors:        command.ErrOrStderr(),
	})
	if declarationError != nil {
		return nil, declarationError
	}

	descriptions := map[string]string{}
	if len(tasksConfiguration.Manifest) > 0 {
		manifestPath := tasksConfiguration.Manifest
		if !filepath.IsAbs(manifestPath) {
			manifestPath = filepath.Join(rootDirectory, manifestPath)
		}
		definitions, loadError := manifest.Load(manifestPath, projectSettings)
		if loadError != nil {
			return nil, loadError
		}
		manifestClass, manifestError := manifest.Declare(registry, definitions, shellExecutor, manifest.DeclareOptions{
			Context: command.Context(),
			Logger:  application.logger,
			Output:  command.OutOrStdout(),
			Errors:  command.ErrOrStderr(),
		})
		if manifestError != nil {
			return nil, manifestError
		}
		classes = append(classes, manifestClass)
		descriptions = manifest.Descriptions(definitions)
	}

	dependencies, dependenciesError := taskrunner.BuildDependencies(
		taskrunner.DependenciesConfig{LoggerProvider: func() *zap.Logger { return application.logger }},
		taskrunner.DependenciesOptions{Command: command, DisableSummary: tasksConfiguration.DisableSummary},
	)
	if dependenciesError != nil {
		return nil, dependenciesError
	}
	executor := taskrunner.Resolve(application.runnerFactory, dependencies)

	decorate, decoratorError := registry.Gulp(executor)
	if decoratorError != nil {
		return nil, decoratorError
	}
	for _, class := range classes {
		if applyError := decorate(class); applyError != nil {
			return nil, applyError
		}
	}

	application.logger.Debug(sessionComposedMessageConstant,
		zap.Int(classCountFieldConstant, len(classes)),
		zap.String(manifestFieldConstant, tasksConfiguration.Manifest),
	)
	return &taskSession{Executor: executor, descriptions: descriptions}, nil
}

func (session *taskSession) listings() []taskListing {
	definitions := session.Definitions()
	listings := make([]taskListing, 0, len(definitions))
	for _, definition := range definitions {
		listings = append(listings, taskListing{
			Name:         definition.Name,
			Dependencies: definition.Dependencies,
			Description:  session.descriptions[definition.Name],
		})
	}
	return listings
}

func renderTaskListing(writer io.Writer, session *taskSession, format string) error {
	listings := session.listings()
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", tasksFormatTextConstant:
		for _, listing := range listings {
			if _, writeError := fmt.Fprintf(writer, taskListingTemplateConstant, listing.Name, taskclass.RenderDependencies(listing.Dependencies)); writeError != nil {
				return writeError
			}
			if len(listing.Description) > 0 {
				if _, writeError := fmt.Fprintf(writer, taskDescriptionTemplateConstant, listing.Description); writeError != nil {
					return writeError
				}
			}
		}
		return nil
	case tasksFormatYAMLConstant:
		encoder := yaml.NewEncoder(writer)
		encoder.SetIndent(2)
		if encodeError := encoder.Encode(listings); encodeError != nil {
			return encodeError
		}
		return encoder.Close()
	default:
		return fmt.Errorf(unsupportedTasksFormatTemplateConstant, format)
	}
}
