package config

import (
	"github.com/temirov/psrun/internal/launcher"
	"github.com/temirov/psrun/internal/scripts"
	"github.com/temirov/psrun/internal/types"
)

// Settings are the effective values after defaults are applied.
type Settings struct {
	ScriptsDirectory string
	Extension        string
	CreateMissing    bool
	Concurrency      int
	Launcher         launcher.Config
	Format           string
}

// Resolve fills every unset value with its default. defaultScriptsDirectory
// is used when no directory is configured.
func (config ApplicationConfiguration) Resolve(defaultScriptsDirectory string) Settings {
	settings := Settings{
		ScriptsDirectory: config.Scripts.Directory,
		Extension:        config.Scripts.Extension,
		CreateMissing:    true,
		Concurrency:      scripts.DefaultConcurrency,
		Launcher:         launcher.DefaultConfig(),
		Format:           config.Output.Format,
	}
	if settings.ScriptsDirectory == "" {
		settings.ScriptsDirectory = defaultScriptsDirectory
	}
	if settings.Extension == "" {
		settings.Extension = scripts.DefaultExtension
	}
	if config.Scripts.CreateMissing != nil {
		settings.CreateMissing = *config.Scripts.CreateMissing
	}
	if config.Scripts.Concurrency != nil && *config.Scripts.Concurrency > 0 {
		settings.Concurrency = *config.Scripts.Concurrency
	}
	if settings.Format == "" {
		settings.Format = types.FormatRaw
	}

	launcherConfig := config.Launcher
	if launcherConfig.Interpreter != "" {
		settings.Launcher.Interpreter = launcherConfig.Interpreter
	}
	if len(launcherConfig.Wrapper) > 0 {
		settings.Launcher.Wrapper = append([]string{}, launcherConfig.Wrapper...)
	}
	if launcherConfig.DisableWrapper != nil && *launcherConfig.DisableWrapper {
		settings.Launcher.Wrapper = nil
	}
	if launcherConfig.NoExit != nil {
		settings.Launcher.NoExit = *launcherConfig.NoExit
	}
	if launcherConfig.ExecutionPolicy != "" {
		settings.Launcher.ExecutionPolicy = launcherConfig.ExecutionPolicy
	}
	return settings
}
