package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/temirov/psrun/internal/config"
	"github.com/temirov/psrun/internal/utils"
)

const (
	initUse              = "init"
	initShortDescription = "write a default configuration file"
	// initLongDescription provides detailed help for the init command.
	initLongDescription = `Write a configuration file with every setting and its default value.
The file is created as ./` + utils.ConfigFileName + ` or, with --global, in ~/` + utils.GlobalConfigDirectoryName + `/` + utils.GlobalConfigFileName + `.`

	globalFlagDescription = "write the global configuration instead of the local one"
	forceFlagDescription  = "overwrite an existing configuration file"
	initWrittenFormat     = "Configuration written to %s\n"
)

// createInitCommand returns the init subcommand.
func createInitCommand(dependencies runtimeDependencies) *cobra.Command {
	var global bool
	var force bool

	initCommand := &cobra.Command{
		Use:   initUse,
		Short: initShortDescription,
		Long:  initLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			target := config.InitTargetLocal
			if global {
				target = config.InitTargetGlobal
			}
			path, err := config.InitializeConfiguration(config.InitOptions{
				Target:           target,
				Force:            force,
				WorkingDirectory: dependencies.workingDirectory,
				HomeDirectory:    dependencies.homeDirectory,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(command.OutOrStdout(), initWrittenFormat, path)
			return nil
		},
	}
	registerToggleFlag(initCommand.Flags(), &global, globalFlagName, false, globalFlagDescription)
	registerToggleFlag(initCommand.Flags(), &force, forceFlagName, false, forceFlagDescription)
	return initCommand
}
