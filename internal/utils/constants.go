package utils

const (
	// ApplicationName is the binary and configuration name.
	ApplicationName = "psrun"
	// ConfigFileName is the local configuration file looked up in the working directory.
	ConfigFileName = ".psrun.yaml"
	// GlobalConfigDirectoryName is the directory under the user's home holding the global configuration.
	GlobalConfigDirectoryName = ".psrun"
	// GlobalConfigFileName is the file name of the global configuration.
	GlobalConfigFileName = "config.yaml"
	// DefaultScriptsDirectoryName is the scripts folder next to the executable.
	DefaultScriptsDirectoryName = "Scripts"
	// StandardErrorSink routes zap output to stderr.
	StandardErrorSink = "stderr"
	// GitDirectoryName is the repository metadata folder used for version discovery.
	GitDirectoryName = ".git"

	// LoggerInitializationFailedMessageFormat reports a logger construction failure.
	LoggerInitializationFailedMessageFormat = "failed to initialize logger: %v\n"
	// ApplicationExecutionFailedMessage is logged when the root command fails.
	ApplicationExecutionFailedMessage = "application execution failed"
)
