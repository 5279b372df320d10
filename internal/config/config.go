package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/ludo-technologies/mvnparity/internal/constants"
	"github.com/ludo-technologies/mvnparity/internal/logging"
	"github.com/ludo-technologies/mvnparity/internal/parity"
	"github.com/ludo-technologies/mvnparity/internal/scanner"
)

// Default performance settings
const (
	// DefaultTimeoutSeconds bounds a whole parse run
	DefaultTimeoutSeconds = 300

	// DefaultMaxGoroutines is the parser concurrency when parallel parsing is enabled
	DefaultMaxGoroutines = 2
)

// Config represents the main configuration structure
type Config struct {
	// Parity holds the tolerances of the parity check
	Parity ParityConfig `json:"parity" mapstructure:"parity" yaml:"parity"`

	// Maven locates the user settings files
	Maven MavenConfig `json:"maven" mapstructure:"maven" yaml:"maven"`

	// Scanner configures the native project parser
	Scanner ScannerConfig `json:"scanner" mapstructure:"scanner" yaml:"scanner"`

	// Performance controls how the parsers are run
	Performance PerformanceConfig `json:"performance" mapstructure:"performance" yaml:"performance"`

	// Output holds output formatting configuration
	Output OutputConfig `json:"output" mapstructure:"output" yaml:"output"`

	// Logging holds log level and handler selection
	Logging LoggingConfig `json:"logging" mapstructure:"logging" yaml:"logging"`
}

// ParityConfig holds which differences the checker tolerates
type ParityConfig struct {
	// ExcludedFields are marker field names never compared
	ExcludedFields []string `json:"excluded_fields" mapstructure:"excluded_fields" yaml:"excluded_fields"`

	// OrderInsensitiveFields are list fields compared as multisets
	OrderInsensitiveFields []string `json:"order_insensitive_fields" mapstructure:"order_insensitive_fields" yaml:"order_insensitive_fields"`

	// URITolerance is "normalize" or "strict"
	URITolerance string `json:"uri_tolerance" mapstructure:"uri_tolerance" yaml:"uri_tolerance"`

	// IgnoreIdentifiers skips marker and dependency ids
	IgnoreIdentifiers bool `json:"ignore_identifiers" mapstructure:"ignore_identifiers" yaml:"ignore_identifiers"`

	// IgnoreSettings skips embedded settings snapshots
	IgnoreSettings bool `json:"ignore_settings" mapstructure:"ignore_settings" yaml:"ignore_settings"`
}

// MavenConfig overrides the locations of the Maven user files
type MavenConfig struct {
	// UserHome replaces ${user.home}; empty means the current user's home
	UserHome string `json:"user_home" mapstructure:"user_home" yaml:"user_home"`

	// SettingsFile is an explicit settings.xml; empty means ~/.m2/settings.xml if present
	SettingsFile string `json:"settings_file" mapstructure:"settings_file" yaml:"settings_file"`

	// SecurityFile is an explicit settings-security.xml
	SecurityFile string `json:"security_file" mapstructure:"security_file" yaml:"security_file"`
}

// ScannerConfig configures the native scanner
type ScannerConfig struct {
	// ExcludePatterns are doublestar globs skipped while walking the project
	ExcludePatterns []string `json:"exclude_patterns" mapstructure:"exclude_patterns" yaml:"exclude_patterns"`

	// RespectGitignore skips files ignored by the project's .gitignore
	RespectGitignore bool `json:"respect_gitignore" mapstructure:"respect_gitignore" yaml:"respect_gitignore"`

	// URIStyle is "file:///" or "file:/"
	URIStyle string `json:"uri_style" mapstructure:"uri_style" yaml:"uri_style"`
}

// PerformanceConfig controls parser execution
type PerformanceConfig struct {
	// Parallel runs both parsers concurrently; otherwise tested runs first
	Parallel bool `json:"parallel" mapstructure:"parallel" yaml:"parallel"`

	// MaxGoroutines bounds concurrency when Parallel is set
	MaxGoroutines int `json:"max_goroutines" mapstructure:"max_goroutines" yaml:"max_goroutines"`

	// TimeoutSeconds bounds the whole parse run; 0 falls back to five minutes
	TimeoutSeconds int `json:"timeout_seconds" mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// OutputConfig controls output formatting
type OutputConfig struct {
	// Format is "text", "json" or "yaml"
	Format string `json:"format" mapstructure:"format" yaml:"format"`
}

// LoggingConfig selects the log level and handler
type LoggingConfig struct {
	// Level is debug, info, warn or error
	Level string `json:"level" mapstructure:"level" yaml:"level"`

	// Format is auto, text, json or tint
	Format string `json:"format" mapstructure:"format" yaml:"format"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	opts := parity.DefaultOptions()
	return &Config{
		Parity: ParityConfig{
			ExcludedFields:         opts.ExcludedFields,
			OrderInsensitiveFields: opts.OrderInsensitiveFields,
			URITolerance:           string(opts.URITolerance),
			IgnoreIdentifiers:      opts.IgnoreIdentifiers,
			IgnoreSettings:         opts.IgnoreSettings,
		},
		Scanner: ScannerConfig{
			ExcludePatterns:  append([]string(nil), scanner.DefaultExcludePatterns...),
			RespectGitignore: true,
			URIStyle:         string(scanner.URIStyleTripleSlash),
		},
		Performance: PerformanceConfig{
			Parallel:       true,
			MaxGoroutines:  DefaultMaxGoroutines,
			TimeoutSeconds: DefaultTimeoutSeconds,
		},
		Output: OutputConfig{
			Format: constants.OutputFormatText,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: string(logging.FormatAuto),
		},
	}
}

// ToParityOptions converts the parity section into checker options
func (c *Config) ToParityOptions() parity.Options {
	return parity.Options{
		IgnoreIdentifiers:      c.Parity.IgnoreIdentifiers,
		IgnoreSettings:         c.Parity.IgnoreSettings,
		ExcludedFields:         append([]string(nil), c.Parity.ExcludedFields...),
		OrderInsensitiveFields: append([]string(nil), c.Parity.OrderInsensitiveFields...),
		URITolerance:           parity.URITolerance(c.Parity.URITolerance),
	}
}

// ToScannerOptions converts the scanner section into scanner options
func (c *Config) ToScannerOptions() (scanner.Options, error) {
	style, err := scanner.ParseURIStyle(c.Scanner.URIStyle)
	if err != nil {
		return scanner.Options{}, err
	}
	return scanner.Options{
		ExcludePatterns:  append([]string(nil), c.Scanner.ExcludePatterns...),
		RespectGitignore: c.Scanner.RespectGitignore,
		URIStyle:         style,
	}, nil
}

// LoadConfig loads configuration from file or returns default config
func LoadConfig(configPath string) (*Config, error) {
	return LoadConfigWithTarget(configPath, "")
}

// discoverConfigFile finds the appropriate config file path
func discoverConfigFile(targetPath string) string {
	return findDefaultConfig(targetPath)
}

// loadConfigFromFile reads and parses a configuration file.
// Environment variables prefixed with MVNPARITY_ override file values.
func loadConfigFromFile(configPath string) (*Config, error) {
	// Create a new viper instance to avoid race conditions
	v := viper.New()
	setDefaults(v, DefaultConfig())
	v.SetEnvPrefix(constants.EnvVarPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}
	}

	config := DefaultConfig()
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults registers every key so that AutomaticEnv can see it
func setDefaults(v *viper.Viper, c *Config) {
	v.SetDefault("parity.excluded_fields", c.Parity.ExcludedFields)
	v.SetDefault("parity.order_insensitive_fields", c.Parity.OrderInsensitiveFields)
	v.SetDefault("parity.uri_tolerance", c.Parity.URITolerance)
	v.SetDefault("parity.ignore_identifiers", c.Parity.IgnoreIdentifiers)
	v.SetDefault("parity.ignore_settings", c.Parity.IgnoreSettings)
	v.SetDefault("maven.user_home", c.Maven.UserHome)
	v.SetDefault("maven.settings_file", c.Maven.SettingsFile)
	v.SetDefault("maven.security_file", c.Maven.SecurityFile)
	v.SetDefault("scanner.exclude_patterns", c.Scanner.ExcludePatterns)
	v.SetDefault("scanner.respect_gitignore", c.Scanner.RespectGitignore)
	v.SetDefault("scanner.uri_style", c.Scanner.URIStyle)
	v.SetDefault("performance.parallel", c.Performance.Parallel)
	v.SetDefault("performance.max_goroutines", c.Performance.MaxGoroutines)
	v.SetDefault("performance.timeout_seconds", c.Performance.TimeoutSeconds)
	v.SetDefault("output.format", c.Output.Format)
	v.SetDefault("logging.level", c.Logging.Level)
	v.SetDefault("logging.format", c.Logging.Format)
}

// LoadConfigWithTarget loads configuration with target path context
func LoadConfigWithTarget(configPath string, targetPath string) (*Config, error) {
	// If no config path specified, discover one
	if configPath == "" {
		configPath = discoverConfigFile(targetPath)
	}

	return loadConfigFromFile(configPath)
}

// searchConfigInDirectory searches for configuration files in a specific directory
func searchConfigInDirectory(dir string, candidates []string) string {
	for _, candidate := range candidates {
		path := filepath.Join(dir, candidate)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// configCandidates are the file names looked up in every searched directory
var configCandidates = []string{
	"mvnparity.yaml",
	"mvnparity.yml",
	".mvnparity.yaml",
	".mvnparity.yml",
	"mvnparity.json",
	".mvnparity.toml",
}

// findDefaultConfig looks for default configuration files in common locations.
// targetPath is the project being checked.
func findDefaultConfig(targetPath string) string {
	// If targetPath is provided, search from there upward
	if targetPath != "" {
		absPath, err := filepath.Abs(targetPath)
		if err == nil {
			// If it's a file, start from its directory
			info, err := os.Stat(absPath)
			if err == nil && !info.IsDir() {
				absPath = filepath.Dir(absPath)
			}

			volume := filepath.VolumeName(absPath)
			for dir := absPath; ; dir = filepath.Dir(dir) {
				if config := searchConfigInDirectory(dir, configCandidates); config != "" {
					return config
				}

				parent := filepath.Dir(dir)
				if parent == dir ||
					dir == volume ||
					(volume != "" && dir == volume+string(filepath.Separator)) {
					break
				}
			}
		}
	}

	// Fallback to current directory
	if config := searchConfigInDirectory(".", configCandidates); config != "" {
		return config
	}

	// Check XDG config directory
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		if config := searchConfigInDirectory(filepath.Join(xdgConfig, constants.ToolName), configCandidates); config != "" {
			return config
		}
	}

	// Check ~/.config/mvnparity/
	if home, err := os.UserHomeDir(); err == nil {
		configDir := filepath.Join(home, ".config", constants.ToolName)
		if config := searchConfigInDirectory(configDir, configCandidates); config != "" {
			return config
		}
	}

	// MVNPARITY_CONFIG as last resort
	if envConfig := os.Getenv(constants.ConfigEnvVar); envConfig != "" {
		if _, err := os.Stat(envConfig); err == nil {
			return envConfig
		}
	}

	return ""
}

// Validate validates the configuration values
func (c *Config) Validate() error {
	if err := c.ToParityOptions().Validate(); err != nil {
		return fmt.Errorf("parity: %w", err)
	}

	if _, err := c.ToScannerOptions(); err != nil {
		return fmt.Errorf("scanner: %w", err)
	}

	if c.Performance.MaxGoroutines < 1 {
		return fmt.Errorf("performance.max_goroutines must be >= 1, got %d", c.Performance.MaxGoroutines)
	}
	if c.Performance.TimeoutSeconds < 0 {
		return fmt.Errorf("performance.timeout_seconds must be >= 0, got %d", c.Performance.TimeoutSeconds)
	}

	validFormats := map[string]bool{
		constants.OutputFormatText: true,
		constants.OutputFormatJSON: true,
		constants.OutputFormatYAML: true,
	}
	if !validFormats[c.Output.Format] {
		return fmt.Errorf("invalid output.format '%s', must be one of: text, json, yaml", c.Output.Format)
	}

	if !logging.IsValidLevel(c.Logging.Level) {
		return fmt.Errorf("invalid logging.level '%s', must be one of: debug, info, warn, error", c.Logging.Level)
	}
	switch logging.Format(c.Logging.Format) {
	case logging.FormatAuto, logging.FormatText, logging.FormatJSON, logging.FormatTint:
	default:
		return fmt.Errorf("invalid logging.format '%s', must be one of: auto, text, json, tint", c.Logging.Format)
	}

	return nil
}

// SaveConfig saves configuration to a file; the format follows the extension
func SaveConfig(config *Config, path string) error {
	// Create a new viper instance to avoid race conditions
	v := viper.New()
	v.SetConfigFile(path)

	v.Set("parity", config.Parity)
	v.Set("maven", config.Maven)
	v.Set("scanner", config.Scanner)
	v.Set("performance", config.Performance)
	v.Set("output", config.Output)
	v.Set("logging", config.Logging)

	return v.WriteConfig()
}
