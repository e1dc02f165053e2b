// Package config loads psrun configuration from the global and local YAML files.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/temirov/psrun/internal/utils"
)

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
	// HomeDirectory overrides the user's home directory when non-empty.
	HomeDirectory string
}

// ApplicationConfiguration holds the settings read from configuration files.
// Unset pointer fields mean "not configured" so that later sources only
// override what they mention.
type ApplicationConfiguration struct {
	Scripts  ScriptsConfiguration  `mapstructure:"scripts"`
	Launcher LauncherConfiguration `mapstructure:"launcher"`
	Output   OutputConfiguration   `mapstructure:"output"`
}

// ScriptsConfiguration locates the script folder.
type ScriptsConfiguration struct {
	Directory     string `mapstructure:"directory"`
	Extension     string `mapstructure:"extension"`
	CreateMissing *bool  `mapstructure:"create_missing"`
	Concurrency   *int   `mapstructure:"concurrency"`
}

// LauncherConfiguration controls how scripts are started.
type LauncherConfiguration struct {
	Interpreter     string   `mapstructure:"interpreter"`
	Wrapper         []string `mapstructure:"wrapper"`
	DisableWrapper  *bool    `mapstructure:"disable_wrapper"`
	NoExit          *bool    `mapstructure:"no_exit"`
	ExecutionPolicy string   `mapstructure:"execution_policy"`
}

// OutputConfiguration selects the default rendering format.
type OutputConfiguration struct {
	Format string `mapstructure:"format"`
}

// GlobalConfigurationPath returns ~/.psrun/config.yaml for the given home directory.
func GlobalConfigurationPath(homeDirectory string) string {
	return filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.GlobalConfigFileName)
}

// LoadApplicationConfiguration loads the global file, then the local or
// explicit file, each overriding the previous.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, err := os.Getwd()
		if err != nil {
			return ApplicationConfiguration{}, fmt.Errorf("determine working directory: %w", err)
		}
		workingDirectory = currentDirectory
	}

	var merged ApplicationConfiguration

	homeDirectory := options.HomeDirectory
	if homeDirectory == "" {
		if resolved, err := os.UserHomeDir(); err == nil {
			homeDirectory = resolved
		}
	}
	if homeDirectory != "" {
		globalConfig, loadErr := loadConfigurationFromPath(GlobalConfigurationPath(homeDirectory))
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(globalConfig)
	}

	localPath, resolveErr := resolveLocalConfigPath(workingDirectory, options.ExplicitFilePath)
	if resolveErr != nil {
		return ApplicationConfiguration{}, resolveErr
	}
	if options.ExplicitFilePath != "" {
		if _, statErr := os.Stat(localPath); statErr != nil {
			return ApplicationConfiguration{}, fmt.Errorf("configuration file %s: %w", localPath, statErr)
		}
	}
	if localPath != "" {
		localConfig, loadErr := loadConfigurationFromPath(localPath)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(localConfig)
	}

	return merged, nil
}

func resolveLocalConfigPath(workingDirectory, explicitPath string) (string, error) {
	if explicitPath != "" {
		if filepath.IsAbs(explicitPath) {
			return explicitPath, nil
		}
		if workingDirectory == "" {
			absolute, err := filepath.Abs(explicitPath)
			if err != nil {
				return "", fmt.Errorf("resolve configuration path %s: %w", explicitPath, err)
			}
			return absolute, nil
		}
		return filepath.Join(workingDirectory, explicitPath), nil
	}
	if workingDirectory == "" {
		return "", nil
	}
	return filepath.Join(workingDirectory, utils.ConfigFileName), nil
}

func loadConfigurationFromPath(path string) (ApplicationConfiguration, error) {
	if path == "" {
		return ApplicationConfiguration{}, nil
	}
	info, statErr := os.Stat(path)
	if statErr != nil {
		if os.IsNotExist(statErr) {
			return ApplicationConfiguration{}, nil
		}
		return ApplicationConfiguration{}, fmt.Errorf("stat configuration %s: %w", path, statErr)
	}
	if info.IsDir() {
		return ApplicationConfiguration{}, fmt.Errorf("configuration path %s is a directory", path)
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	reader.SetConfigType("yaml")
	if readErr := reader.ReadInConfig(); readErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("read configuration from %s: %w", path, readErr)
	}
	var config ApplicationConfiguration
	if decodeErr := reader.Unmarshal(&config); decodeErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("decode configuration from %s: %w", path, decodeErr)
	}
	return config, nil
}

// Merge overlays override onto the receiver returning the combined configuration.
func (config ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	result := config
	result.Scripts = result.Scripts.merge(override.Scripts)
	result.Launcher = result.Launcher.merge(override.Launcher)
	if override.Output.Format != "" {
		result.Output.Format = override.Output.Format
	}
	return result
}

func (config ScriptsConfiguration) merge(override ScriptsConfiguration) ScriptsConfiguration {
	result := config
	if override.Directory != "" {
		result.Directory = override.Directory
	}
	if override.Extension != "" {
		result.Extension = override.Extension
	}
	if override.CreateMissing != nil {
		result.CreateMissing = cloneBool(override.CreateMissing)
	}
	if override.Concurrency != nil {
		result.Concurrency = cloneInt(override.Concurrency)
	}
	return result
}

func (config LauncherConfiguration) merge(override LauncherConfiguration) LauncherConfiguration {
	result := config
	if override.Interpreter != "" {
		result.Interpreter = override.Interpreter
	}
	if len(override.Wrapper) > 0 {
		result.Wrapper = append([]string{}, override.Wrapper...)
	}
	if override.DisableWrapper != nil {
		result.DisableWrapper = cloneBool(override.DisableWrapper)
	}
	if override.NoExit != nil {
		result.NoExit = cloneBool(override.NoExit)
	}
	if override.ExecutionPolicy != "" {
		result.ExecutionPolicy = override.ExecutionPolicy
	}
	return result
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}

func cloneInt(value *int) *int {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
