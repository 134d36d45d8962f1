package utils

const (
	// ConfigFileName is the name of the ptree configuration file.
	ConfigFileName = ".ptree.yaml"
	// GlobalConfigDirectoryName is the directory under the user's home holding the global configuration.
	GlobalConfigDirectoryName = ".ptree"
	// EnvironmentPrefix prefixes environment variables that override configuration.
	EnvironmentPrefix = "PTREE"
	// EnvironmentFileName is the dotenv file loaded at startup when present.
	EnvironmentFileName = ".env"

	// LoggerInitializationFailedMessageFormat reports a logger construction failure.
	LoggerInitializationFailedMessageFormat = "logger initialization failed: %w"
	// ApplicationExecutionFailedMessage prefixes fatal command errors.
	ApplicationExecutionFailedMessage = "ptree failed"
	// EnvironmentLoadFailedMessage reports an unreadable dotenv file.
	EnvironmentLoadFailedMessage = "environment file not loaded"
)
