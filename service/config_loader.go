package service

import (
	"github.com/ludo-technologies/mvnparity/domain"
	"github.com/ludo-technologies/mvnparity/internal/config"
)

// ConfigurationLoaderImpl loads the configuration used by a parity run
type ConfigurationLoaderImpl struct{}

// NewConfigurationLoader creates a new configuration loader service
func NewConfigurationLoader() *ConfigurationLoaderImpl {
	return &ConfigurationLoaderImpl{}
}

// LoadConfig loads configuration from the given path, or discovers one
// starting at targetPath when path is empty
func (c *ConfigurationLoaderImpl) LoadConfig(path, targetPath string) (*config.Config, error) {
	cfg, err := config.LoadConfigWithTarget(path, targetPath)
	if err != nil {
		return nil, domain.NewConfigError("failed to load configuration file", err)
	}
	return cfg, nil
}

// LoadDefaultConfig loads a discovered configuration, falling back to the
// defaults embedded in the binary
func (c *ConfigurationLoaderImpl) LoadDefaultConfig(targetPath string) *config.Config {
	cfg, err := config.LoadConfigWithTarget("", targetPath)
	if err == nil {
		return cfg
	}
	if embedded, err := config.LoadDefaultConfig(); err == nil {
		return embedded
	}
	return config.DefaultConfig()
}

// ConfigOverrides carries values set explicitly on the command line.
// Nil and empty values leave the loaded configuration untouched.
type ConfigOverrides struct {
	OutputFormat   string
	URITolerance   string
	ExcludedFields []string
	SettingsFile   string
	SecurityFile   string
	UserHome       string
	Parallel       *bool
	TimeoutSeconds int
	LogLevel       string
}

// MergeConfig applies CLI overrides to a loaded configuration and validates the result
func (c *ConfigurationLoaderImpl) MergeConfig(base *config.Config, override ConfigOverrides) (*config.Config, error) {
	merged := *base
	merged.Parity.ExcludedFields = append([]string(nil), base.Parity.ExcludedFields...)

	if override.OutputFormat != "" {
		merged.Output.Format = override.OutputFormat
	}
	if override.URITolerance != "" {
		merged.Parity.URITolerance = override.URITolerance
	}
	if len(override.ExcludedFields) > 0 {
		merged.Parity.ExcludedFields = append(merged.Parity.ExcludedFields, override.ExcludedFields...)
	}
	if override.SettingsFile != "" {
		merged.Maven.SettingsFile = override.SettingsFile
	}
	if override.SecurityFile != "" {
		merged.Maven.SecurityFile = override.SecurityFile
	}
	if override.UserHome != "" {
		merged.Maven.UserHome = override.UserHome
	}
	if override.Parallel != nil {
		merged.Performance.Parallel = *override.Parallel
	}
	if override.TimeoutSeconds > 0 {
		merged.Performance.TimeoutSeconds = override.TimeoutSeconds
	}
	if override.LogLevel != "" {
		merged.Logging.Level = override.LogLevel
	}

	if err := merged.Validate(); err != nil {
		return nil, domain.NewConfigError("invalid command line options", err)
	}
	return &merged, nil
}
