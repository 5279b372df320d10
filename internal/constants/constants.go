package constants

// Tool name and related constants
const (
	// ToolName is the name of this tool
	ToolName = "mvnparity"

	// ConfigFileName is the default config file name
	ConfigFileName = "mvnparity.yaml"

	// EnvVarPrefix is the prefix for environment variables
	EnvVarPrefix = "MVNPARITY"

	// ConfigEnvVar points at an explicit configuration file
	ConfigEnvVar = "MVNPARITY_CONFIG"
)

// Output format constants
const (
	OutputFormatText = "text"
	OutputFormatJSON = "json"
	OutputFormatYAML = "yaml"
)

// Parser names
const (
	ParserScanner  = "scanner"
	ParserSnapshot = "snapshot"
)

// Exit codes returned by the CLI
const (
	ExitOK       = 0
	ExitMismatch = 1
	ExitError    = 2
)
