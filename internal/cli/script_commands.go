package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/psrun/internal/form"
	"github.com/temirov/psrun/internal/output"
	"github.com/temirov/psrun/internal/params"
	"github.com/temirov/psrun/internal/scripts"
	"github.com/temirov/psrun/internal/types"
)

const (
	listUse                 = "list"
	paramsUse               = "params <script>"
	commandUse              = "command <script>"
	runUse                  = "run <script>"
	listAlias               = "ls"
	paramsAlias             = "p"
	commandAlias            = "cmd"
	runAlias                = "r"
	listShortDescription    = "list available scripts (" + listAlias + ")"
	paramsShortDescription  = "show the parameters of a script (" + paramsAlias + ")"
	commandShortDescription = "print the command line that runs a script (" + commandAlias + ")"
	runShortDescription     = "launch a script in a new terminal (" + runAlias + ")"

	// listLongDescription provides detailed help for the list command.
	listLongDescription = `List the scripts in the scripts folder sorted by name.
Use --params to parse every script and include its parameters.`
	// listUsageExample demonstrates list command usage.
	listUsageExample = `  # List scripts with their parameters as YAML
  psrun list --params --format yaml`

	// paramsLongDescription provides detailed help for the params command.
	paramsLongDescription = `Show the parameters declared in a script's param block together with their
types, defaults, dependencies and whether each one is currently enabled.
Use --set to see how values change which parameters are enabled.`
	// paramsUsageExample demonstrates params command usage.
	paramsUsageExample = `  # Show parameters of deploy.ps1
  psrun params deploy

  # Show parameters after enabling a switch
  psrun params deploy --set Force=true --format json`

	// commandLongDescription provides detailed help for the command command.
	commandLongDescription = `Build the interpreter command line for a script without running it.
Values from --set override the defaults declared in the script. Parameters whose
dependency is off are left out. Use --defaults to pass only declared defaults.`
	// commandUsageExample demonstrates command command usage.
	commandUsageExample = `  # Print and copy the command line
  psrun command deploy --set Target=staging --set Force --copy`

	// runLongDescription provides detailed help for the run command.
	runLongDescription = `Launch a script in a new terminal window with the supplied values.
Values from --set override the defaults declared in the script.`
	// runUsageExample demonstrates run command usage.
	runUsageExample = `  # Run deploy.ps1 against staging
  psrun run deploy --set Target=staging --set When=2024-06-01`

	paramsFlagDescription   = "include the parameters of every script"
	defaultsFlagDescription = "pass only the defaults declared in the script"
	copyFlagDescription     = "copy the command line to the clipboard"

	errorResolveParameterFormat = "%s: %w"
)

// createListCommand returns the list subcommand.
func createListCommand(load func() (*environment, error), dependencies runtimeDependencies) *cobra.Command {
	var includeParameters bool
	var outputFormat string

	listCommand := &cobra.Command{
		Use:     listUse,
		Aliases: []string{listAlias},
		Short:   listShortDescription,
		Long:    listLongDescription,
		Example: listUsageExample,
		Args:    cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			env, err := load()
			if err != nil {
				return err
			}
			format, err := resolveFormat(outputFormat, env)
			if err != nil {
				return err
			}
			if dependencies.administrator() {
				env.logger.Info("running as administrator")
			}
			scriptOutputs, err := describeCatalog(command.Context(), env, includeParameters)
			if err != nil {
				return err
			}
			rendered, err := output.RenderScripts(format, scriptOutputs)
			if err != nil {
				return err
			}
			fmt.Fprint(command.OutOrStdout(), rendered)
			return nil
		},
	}
	registerToggleFlag(listCommand.Flags(), &includeParameters, paramsFlagName, false, paramsFlagDescription)
	listCommand.Flags().StringVar(&outputFormat, formatFlagName, "", formatFlagDescription)
	return listCommand
}

// createParamsCommand returns the params subcommand.
func createParamsCommand(load func() (*environment, error)) *cobra.Command {
	var outputFormat string
	var assignments []assignment

	paramsCommand := &cobra.Command{
		Use:     paramsUse,
		Aliases: []string{paramsAlias},
		Short:   paramsShortDescription,
		Long:    paramsLongDescription,
		Example: paramsUsageExample,
		Args:    cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			env, err := load()
			if err != nil {
				return err
			}
			format, err := resolveFormat(outputFormat, env)
			if err != nil {
				return err
			}
			descriptor, inputForm, err := prepareForm(command.Context(), env, arguments[0], assignments)
			if err != nil {
				return err
			}
			rendered, err := output.RenderScript(format, output.DescribeScript(descriptor, inputForm))
			if err != nil {
				return err
			}
			fmt.Fprint(command.OutOrStdout(), rendered)
			return nil
		},
	}
	paramsCommand.Flags().StringVar(&outputFormat, formatFlagName, "", formatFlagDescription)
	registerAssignmentFlag(paramsCommand.Flags(), &assignments)
	return paramsCommand
}

// createCommandCommand returns the command subcommand.
func createCommandCommand(load func() (*environment, error), dependencies runtimeDependencies) *cobra.Command {
	var outputFormat string
	var assignments []assignment
	var defaultsOnly bool
	var copyToClipboard bool

	commandCommand := &cobra.Command{
		Use:     commandUse,
		Aliases: []string{commandAlias},
		Short:   commandShortDescription,
		Long:    commandLongDescription,
		Example: commandUsageExample,
		Args:    cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			env, err := load()
			if err != nil {
				return err
			}
			format, err := resolveFormat(outputFormat, env)
			if err != nil {
				return err
			}
			commandOutput, _, err := prepareInvocation(command.Context(), env, arguments[0], assignments, defaultsOnly)
			if err != nil {
				return err
			}
			commandOutput.Administrator = dependencies.administrator()
			if copyToClipboard {
				if err := dependencies.copier.Copy(commandOutput.CommandLine); err != nil {
					return err
				}
				env.logger.Info("command line copied to clipboard", zap.String("script", commandOutput.Script))
			}
			rendered, err := output.RenderCommand(format, commandOutput)
			if err != nil {
				return err
			}
			fmt.Fprint(command.OutOrStdout(), rendered)
			return nil
		},
	}
	commandCommand.Flags().StringVar(&outputFormat, formatFlagName, "", formatFlagDescription)
	registerAssignmentFlag(commandCommand.Flags(), &assignments)
	registerToggleFlag(commandCommand.Flags(), &defaultsOnly, defaultsFlagName, false, defaultsFlagDescription)
	registerToggleFlag(commandCommand.Flags(), &copyToClipboard, copyFlagName, false, copyFlagDescription)
	return commandCommand
}

// createRunCommand returns the run subcommand.
func createRunCommand(load func() (*environment, error), dependencies runtimeDependencies) *cobra.Command {
	var outputFormat string
	var assignments []assignment
	var defaultsOnly bool

	runCommand := &cobra.Command{
		Use:     runUse,
		Aliases: []string{runAlias},
		Short:   runShortDescription,
		Long:    runLongDescription,
		Example: runUsageExample,
		Args:    cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			env, err := load()
			if err != nil {
				return err
			}
			format, err := resolveFormat(outputFormat, env)
			if err != nil {
				return err
			}
			commandOutput, invocation, err := prepareInvocation(command.Context(), env, arguments[0], assignments, defaultsOnly)
			if err != nil {
				return err
			}
			commandOutput.Administrator = dependencies.administrator()
			env.logger.Info("launching script",
				zap.String("script", commandOutput.Script),
				zap.Bool("administrator", commandOutput.Administrator),
			)
			if err := env.launcher.Launch(command.Context(), commandOutput.Path, invocation); err != nil {
				return err
			}
			commandOutput.Launched = true
			rendered, err := output.RenderCommand(format, commandOutput)
			if err != nil {
				return err
			}
			fmt.Fprint(command.OutOrStdout(), rendered)
			return nil
		},
	}
	runCommand.Flags().StringVar(&outputFormat, formatFlagName, "", formatFlagDescription)
	registerAssignmentFlag(runCommand.Flags(), &assignments)
	registerToggleFlag(runCommand.Flags(), &defaultsOnly, defaultsFlagName, false, defaultsFlagDescription)
	return runCommand
}

// describeCatalog lists the catalog, parsing every script when
// includeParameters is set. Scripts that fail to parse are reported with
// their error instead of aborting the listing.
func describeCatalog(ctx context.Context, env *environment, includeParameters bool) ([]types.ScriptOutput, error) {
	if !includeParameters {
		descriptors, err := env.catalog.List(ctx)
		if err != nil {
			return nil, err
		}
		scriptOutputs := make([]types.ScriptOutput, 0, len(descriptors))
		for _, descriptor := range descriptors {
			scriptOutputs = append(scriptOutputs, output.DescribeScript(descriptor, nil))
		}
		return scriptOutputs, nil
	}

	results, err := env.catalog.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	scriptOutputs := make([]types.ScriptOutput, 0, len(results))
	for _, result := range results {
		if result.Err != nil {
			env.logger.Warn("skipping script parameters", zap.String("script", result.Script.DisplayName), zap.Error(result.Err))
			scriptOutput := output.DescribeScript(result.Script, nil)
			scriptOutput.Error = result.Err.Error()
			scriptOutputs = append(scriptOutputs, scriptOutput)
			continue
		}
		scriptOutputs = append(scriptOutputs, output.DescribeScript(result.Script, newForm(env, result.Parameters)))
	}
	return scriptOutputs, nil
}

// newForm builds the input form for loaded parameters and reports
// dependencies on undeclared parameters.
func newForm(env *environment, parameters scripts.Parameters) *form.Form {
	inputForm := form.New(parameters.Declarations, parameters.Dependencies)
	for name, dependsOn := range inputForm.Dangling() {
		env.logger.Warn("dependency on undeclared parameter ignored",
			zap.String("script", parameters.Script.DisplayName),
			zap.String("parameter", name),
			zap.String("dependsOn", dependsOn),
		)
	}
	return inputForm
}

// prepareForm loads a script and applies the --set assignments in order.
func prepareForm(ctx context.Context, env *environment, scriptName string, assignments []assignment) (scripts.Descriptor, *form.Form, error) {
	descriptor, err := env.catalog.Resolve(scriptName)
	if err != nil {
		return scripts.Descriptor{}, nil, err
	}
	parameters, err := env.catalog.Load(ctx, descriptor)
	if err != nil {
		return scripts.Descriptor{}, nil, err
	}
	inputForm := newForm(env, parameters)
	for _, entry := range assignments {
		name := canonicalFieldName(inputForm, entry.name)
		if err := inputForm.Set(name, entry.value); err != nil {
			return scripts.Descriptor{}, nil, fmt.Errorf(errorResolveParameterFormat, descriptor.DisplayName, err)
		}
	}
	return descriptor, inputForm, nil
}

// prepareInvocation builds the arguments and command line for a script.
// With defaultsOnly the declared defaults are passed and assignments are
// rejected.
func prepareInvocation(ctx context.Context, env *environment, scriptName string, assignments []assignment, defaultsOnly bool) (types.CommandOutput, params.Arguments, error) {
	if defaultsOnly && len(assignments) > 0 {
		return types.CommandOutput{}, params.Arguments{}, fmt.Errorf("--%s cannot be combined with --%s", defaultsFlagName, setFlagName)
	}
	descriptor, inputForm, err := prepareForm(ctx, env, scriptName, assignments)
	if err != nil {
		return types.CommandOutput{}, params.Arguments{}, err
	}
	invocation := inputForm.Arguments()
	if defaultsOnly {
		declarations := make([]params.Declaration, 0)
		for _, field := range inputForm.Fields() {
			declarations = append(declarations, field.Declaration)
		}
		invocation = params.ArgumentsFromDefaults(declarations)
	}
	env.logger.Debug("arguments prepared", zap.String("script", descriptor.DisplayName), zap.Stringer("arguments", invocation))
	return types.CommandOutput{
		Script:      descriptor.DisplayName,
		Path:        descriptor.Path,
		Arguments:   output.DescribeArguments(invocation),
		CommandLine: env.launcher.CommandLine(descriptor.Path, invocation),
	}, invocation, nil
}

// canonicalFieldName matches name against the declared parameters ignoring
// case. Unknown names are returned unchanged so the form reports them.
func canonicalFieldName(inputForm *form.Form, name string) string {
	if _, found := inputForm.Field(name); found {
		return name
	}
	for _, field := range inputForm.Fields() {
		if strings.EqualFold(field.Declaration.Name, name) {
			return field.Declaration.Name
		}
	}
	return name
}
