package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/psrun/internal/output"
	"github.com/temirov/psrun/internal/scripts"
	"github.com/temirov/psrun/internal/types"
)

const (
	watchUse              = "watch"
	watchShortDescription = "print the script list whenever the scripts folder changes"
	// watchLongDescription provides detailed help for the watch command.
	watchLongDescription = `Watch the scripts folder and print the script list once at start and again
after every burst of changes. Stop with Ctrl+C.`
	// watchUsageExample demonstrates watch command usage.
	watchUsageExample = `  # Follow a scripts folder as JSON with parameters
  psrun watch --scripts-dir ./Scripts --params --format json`

	debounceFlagDescription = "quiet period before the folder is rescanned"
)

// createWatchCommand returns the watch subcommand.
func createWatchCommand(load func() (*environment, error)) *cobra.Command {
	var includeParameters bool
	var outputFormat string
	var debounce time.Duration

	watchCommand := &cobra.Command{
		Use:     watchUse,
		Short:   watchShortDescription,
		Long:    watchLongDescription,
		Example: watchUsageExample,
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
			ctx, stop := signal.NotifyContext(command.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			writer := command.OutOrStdout()
			onChange := func(descriptors []scripts.Descriptor) {
				scriptOutputs := make([]types.ScriptOutput, 0, len(descriptors))
				if includeParameters {
					described, describeErr := describeCatalog(ctx, env, true)
					if describeErr != nil {
						env.logger.Warn("rescan failed", zap.Error(describeErr))
						return
					}
					scriptOutputs = described
				} else {
					for _, descriptor := range descriptors {
						scriptOutputs = append(scriptOutputs, output.DescribeScript(descriptor, nil))
					}
				}
				rendered, renderErr := output.RenderScripts(format, scriptOutputs)
				if renderErr != nil {
					env.logger.Warn("render script list", zap.Error(renderErr))
					return
				}
				fmt.Fprint(writer, rendered)
			}
			return scripts.NewWatcher(env.catalog, env.logger, debounce, onChange).Run(ctx)
		},
	}
	registerToggleFlag(watchCommand.Flags(), &includeParameters, paramsFlagName, false, paramsFlagDescription)
	watchCommand.Flags().StringVar(&outputFormat, formatFlagName, "", formatFlagDescription)
	watchCommand.Flags().DurationVar(&debounce, debounceFlagName, scripts.DefaultDebounce, debounceFlagDescription)
	return watchCommand
}
