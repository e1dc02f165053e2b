// Package cli provides the psrun command line interface.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/temirov/psrun/internal/config"
	"github.com/temirov/psrun/internal/launcher"
	"github.com/temirov/psrun/internal/output"
	"github.com/temirov/psrun/internal/privilege"
	"github.com/temirov/psrun/internal/scripts"
	"github.com/temirov/psrun/internal/services/clipboard"
	"github.com/temirov/psrun/internal/utils"
)

const (
	configFlagName       = "config"
	scriptsDirFlagName   = "scripts-dir"
	verboseFlagName      = "verbose"
	versionFlagName      = "version"
	formatFlagName       = "format"
	setFlagName          = "set"
	setFlagShorthand     = "s"
	defaultsFlagName     = "defaults"
	copyFlagName         = "copy"
	paramsFlagName       = "params"
	debounceFlagName     = "debounce"
	globalFlagName       = "global"
	forceFlagName        = "force"
	versionTemplate      = "psrun version: %s\n"
	rootUse              = "psrun"
	rootShortDescription = "run PowerShell scripts with typed parameters"
	rootLongDescription  = `psrun lists the PowerShell scripts in a folder, reads the param block of each
script and launches a script with values supplied for its parameters.
Defaults declared in the script are used for every value that is not set.
Use --scripts-dir to point at another folder and --config to load a specific configuration file.`
	configFlagDescription     = "configuration file to load instead of ./" + utils.ConfigFileName
	scriptsDirFlagDescription = "folder holding the scripts"
	verboseFlagDescription    = "enable debug logging"
	versionFlagDescription    = "display application version"
	formatFlagDescription     = "output format: raw, json, yaml or xml"
	setFlagDescription        = "set a parameter value (repeatable)"

	errorWorkingDirectoryFormat = "unable to determine working directory: %w"
	errorPrepareScriptsFormat   = "prepare scripts directory %s: %w"
)

// runtimeDependencies are the collaborators the commands reach outside the
// process with.
type runtimeDependencies struct {
	logger           *zap.Logger
	level            zap.AtomicLevel
	copier           clipboard.Copier
	starter          launcher.Starter
	administrator    func() bool
	workingDirectory string
	homeDirectory    string
}

// rootOptions holds the persistent flags.
type rootOptions struct {
	configPath       string
	scriptsDirectory string
	verbose          bool
	showVersion      bool
}

// environment is the resolved configuration shared by the subcommands.
type environment struct {
	settings config.Settings
	catalog  scripts.Catalog
	launcher *launcher.Launcher
	logger   *zap.Logger
}

// Execute runs the psrun application.
func Execute(ctx context.Context, logger *zap.Logger, level zap.AtomicLevel) error {
	rootCommand := createRootCommand(runtimeDependencies{
		logger:        logger,
		level:         level,
		copier:        clipboard.NewService(),
		starter:       launcher.ProcessStarter{},
		administrator: privilege.IsAdministrator,
	})
	rootCommand.SetArgs(normalizeToggleArguments(rootCommand, os.Args[1:]))
	return rootCommand.ExecuteContext(ctx)
}

// createRootCommand builds the root Cobra command.
func createRootCommand(dependencies runtimeDependencies) *cobra.Command {
	options := &rootOptions{}
	var resolved *environment

	load := func() (*environment, error) {
		if resolved != nil {
			return resolved, nil
		}
		loaded, err := loadEnvironment(dependencies, *options)
		if err != nil {
			return nil, err
		}
		resolved = loaded
		return resolved, nil
	}

	rootCommand := &cobra.Command{
		Use:           rootUse,
		Short:         rootShortDescription,
		Long:          rootLongDescription,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
		PersistentPreRun: func(command *cobra.Command, arguments []string) {
			if options.showVersion {
				fmt.Fprintf(command.OutOrStdout(), versionTemplate, utils.GetApplicationVersion())
				os.Exit(0)
			}
			if options.verbose {
				dependencies.level.SetLevel(zapcore.DebugLevel)
			}
		},
	}
	persistentFlags := rootCommand.PersistentFlags()
	persistentFlags.StringVar(&options.configPath, configFlagName, "", configFlagDescription)
	persistentFlags.StringVar(&options.scriptsDirectory, scriptsDirFlagName, "", scriptsDirFlagDescription)
	registerToggleFlag(persistentFlags, &options.verbose, verboseFlagName, false, verboseFlagDescription)
	persistentFlags.BoolVar(&options.showVersion, versionFlagName, false, versionFlagDescription)

	rootCommand.AddCommand(
		createListCommand(load, dependencies),
		createParamsCommand(load),
		createCommandCommand(load, dependencies),
		createRunCommand(load, dependencies),
		createWatchCommand(load),
		createInitCommand(dependencies),
	)
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

// loadEnvironment merges configuration files with the persistent flags and
// prepares the catalog and launcher.
func loadEnvironment(dependencies runtimeDependencies, options rootOptions) (*environment, error) {
	workingDirectory := dependencies.workingDirectory
	if workingDirectory == "" {
		current, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf(errorWorkingDirectoryFormat, err)
		}
		workingDirectory = current
	}
	applicationConfiguration, err := config.LoadApplicationConfiguration(config.LoadOptions{
		WorkingDirectory: workingDirectory,
		ExplicitFilePath: options.configPath,
		HomeDirectory:    dependencies.homeDirectory,
	})
	if err != nil {
		return nil, err
	}
	if options.scriptsDirectory != "" {
		applicationConfiguration.Scripts.Directory = options.scriptsDirectory
	}
	settings := applicationConfiguration.Resolve(defaultScriptsDirectory(workingDirectory))
	if !filepath.IsAbs(settings.ScriptsDirectory) {
		settings.ScriptsDirectory = filepath.Join(workingDirectory, settings.ScriptsDirectory)
	}
	settings.Format = strings.ToLower(settings.Format)
	if err := output.ValidateFormat(settings.Format); err != nil {
		return nil, err
	}

	catalog := scripts.Catalog{
		Directory:   settings.ScriptsDirectory,
		Extension:   settings.Extension,
		Concurrency: settings.Concurrency,
	}
	if settings.CreateMissing {
		if err := catalog.EnsureDirectory(); err != nil {
			return nil, fmt.Errorf(errorPrepareScriptsFormat, settings.ScriptsDirectory, err)
		}
	}
	dependencies.logger.Debug("configuration resolved",
		zap.String("scripts", settings.ScriptsDirectory),
		zap.String("extension", settings.Extension),
		zap.String("interpreter", settings.Launcher.Interpreter),
		zap.String("format", settings.Format),
	)
	return &environment{
		settings: settings,
		catalog:  catalog,
		launcher: launcher.New(settings.Launcher, dependencies.starter, dependencies.logger),
		logger:   dependencies.logger,
	}, nil
}

// defaultScriptsDirectory is the Scripts folder next to the executable, or in
// the working directory when the executable cannot be located.
func defaultScriptsDirectory(workingDirectory string) string {
	executablePath, err := os.Executable()
	if err != nil {
		return filepath.Join(workingDirectory, utils.DefaultScriptsDirectoryName)
	}
	return filepath.Join(filepath.Dir(executablePath), utils.DefaultScriptsDirectoryName)
}

// resolveFormat prefers the --format flag over the configured default.
func resolveFormat(flagValue string, env *environment) (string, error) {
	format := env.settings.Format
	if flagValue != "" {
		format = strings.ToLower(strings.TrimSpace(flagValue))
	}
	if err := output.ValidateFormat(format); err != nil {
		return "", err
	}
	return format, nil
}
