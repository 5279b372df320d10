package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/ludo-technologies/mvnparity/internal/parity"
	"github.com/ludo-technologies/mvnparity/internal/scanner"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Parity.URITolerance != "normalize" {
		t.Errorf("Expected uri tolerance 'normalize', got %q", config.Parity.URITolerance)
	}
	if !config.Parity.IgnoreIdentifiers || !config.Parity.IgnoreSettings {
		t.Error("Expected identifiers and settings to be ignored by default")
	}
	if !reflect.DeepEqual(config.Parity.OrderInsensitiveFields, []string{"modules"}) {
		t.Errorf("Expected modules to be order insensitive, got %v", config.Parity.OrderInsensitiveFields)
	}
	if !config.Performance.Parallel {
		t.Error("Expected parallel parsing by default")
	}
	if config.Output.Format != "text" {
		t.Errorf("Expected output format 'text', got %q", config.Output.Format)
	}

	if err := config.Validate(); err != nil {
		t.Errorf("Default config should be valid: %v", err)
	}
}

func TestLoadDefaultConfig_MatchesDefaultConfig(t *testing.T) {
	embedded, err := LoadDefaultConfig()
	if err != nil {
		t.Fatalf("LoadDefaultConfig failed: %v", err)
	}
	if !reflect.DeepEqual(embedded, DefaultConfig()) {
		t.Errorf("embedded defaults drifted from DefaultConfig:\n%+v\n%+v", embedded, DefaultConfig())
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"uri tolerance", func(c *Config) { c.Parity.URITolerance = "loose" }},
		{"empty uri tolerance", func(c *Config) { c.Parity.URITolerance = "" }},
		{"uri style", func(c *Config) { c.Scanner.URIStyle = "http://" }},
		{"max goroutines", func(c *Config) { c.Performance.MaxGoroutines = 0 }},
		{"timeout", func(c *Config) { c.Performance.TimeoutSeconds = -1 }},
		{"output format", func(c *Config) { c.Output.Format = "html" }},
		{"log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"log format", func(c *Config) { c.Logging.Format = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)
			if err := config.Validate(); err == nil {
				t.Errorf("Expected validation error for invalid %s", tt.name)
			}
		})
	}
}

func TestConfig_ToParityOptions(t *testing.T) {
	config := DefaultConfig()
	config.Parity.URITolerance = "strict"
	config.Parity.ExcludedFields = []string{"packaging"}
	config.Parity.IgnoreSettings = false

	opts := config.ToParityOptions()
	if opts.URITolerance != parity.URIToleranceStrict {
		t.Errorf("Expected strict tolerance, got %q", opts.URITolerance)
	}
	if opts.IgnoreSettings {
		t.Error("Expected settings to be compared")
	}
	if !reflect.DeepEqual(opts.ExcludedFields, []string{"packaging"}) {
		t.Errorf("Unexpected excluded fields %v", opts.ExcludedFields)
	}

	// The options must not alias the config slices
	opts.ExcludedFields[0] = "changed"
	if config.Parity.ExcludedFields[0] != "packaging" {
		t.Error("ToParityOptions must copy excluded fields")
	}
}

func TestConfig_ToScannerOptions(t *testing.T) {
	config := DefaultConfig()
	config.Scanner.URIStyle = "file:/"

	opts, err := config.ToScannerOptions()
	if err != nil {
		t.Fatalf("ToScannerOptions failed: %v", err)
	}
	if opts.URIStyle != scanner.URIStyleSingleSlash {
		t.Errorf("Expected single slash style, got %q", opts.URIStyle)
	}
	if !opts.RespectGitignore {
		t.Error("Expected gitignore to be respected")
	}
}

func TestLoadConfig_NoFile(t *testing.T) {
	config, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if config.Parity.URITolerance == "" {
		t.Error("Expected defaults when no config file is given")
	}
}

func TestLoadConfig_YAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mvnparity.yaml")
	content := `parity:
  uri_tolerance: strict
  excluded_fields: ["parent"]
performance:
  parallel: false
  max_goroutines: 4
output:
  format: json
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if config.Parity.URITolerance != "strict" {
		t.Errorf("Expected strict tolerance, got %q", config.Parity.URITolerance)
	}
	if !reflect.DeepEqual(config.Parity.ExcludedFields, []string{"parent"}) {
		t.Errorf("Unexpected excluded fields %v", config.Parity.ExcludedFields)
	}
	if config.Performance.Parallel || config.Performance.MaxGoroutines != 4 {
		t.Errorf("Unexpected performance section %+v", config.Performance)
	}
	if config.Output.Format != "json" {
		t.Errorf("Expected json output, got %q", config.Output.Format)
	}

	// Unset keys keep their defaults
	if !reflect.DeepEqual(config.Parity.OrderInsensitiveFields, []string{"modules"}) {
		t.Errorf("Expected default order insensitive fields, got %v", config.Parity.OrderInsensitiveFields)
	}
	if config.Scanner.URIStyle != "file:///" {
		t.Errorf("Expected default uri style, got %q", config.Scanner.URIStyle)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mvnparity.yaml")
	if err := os.WriteFile(path, []byte("output:\n  format: html\n"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "invalid configuration") {
		t.Errorf("Expected invalid configuration error, got %v", err)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing config file")
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("MVNPARITY_PARITY_URI_TOLERANCE", "strict")
	t.Setenv("MVNPARITY_PERFORMANCE_PARALLEL", "false")

	config, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if config.Parity.URITolerance != "strict" {
		t.Errorf("Expected env override to strict, got %q", config.Parity.URITolerance)
	}
	if config.Performance.Parallel {
		t.Error("Expected env override to disable parallel parsing")
	}
}

func TestLoadConfigWithTarget_Discovery(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "module", "src")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, ".mvnparity.yml"), []byte("output:\n  format: yaml\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if got := findDefaultConfig(nested); got != filepath.Join(root, ".mvnparity.yml") {
		t.Errorf("Expected discovery from nested dir, got %q", got)
	}

	config, err := LoadConfigWithTarget("", nested)
	if err != nil {
		t.Fatalf("LoadConfigWithTarget failed: %v", err)
	}
	if config.Output.Format != "yaml" {
		t.Errorf("Expected discovered config to apply, got %q", config.Output.Format)
	}
}

func TestSearchConfigInDirectory_Priority(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"mvnparity.json", "mvnparity.yaml"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	if got := searchConfigInDirectory(dir, configCandidates); filepath.Base(got) != "mvnparity.yaml" {
		t.Errorf("Expected mvnparity.yaml to win, got %q", got)
	}
	if got := searchConfigInDirectory(t.TempDir(), configCandidates); got != "" {
		t.Errorf("Expected no config, got %q", got)
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mvnparity.yaml")
	config := DefaultConfig()
	config.Parity.URITolerance = "strict"
	config.Maven.SettingsFile = "/tmp/settings.xml"

	if err := SaveConfig(config, path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if loaded.Parity.URITolerance != "strict" || loaded.Maven.SettingsFile != "/tmp/settings.xml" {
		t.Errorf("Saved values not restored: %+v", loaded)
	}
}

func TestTemplates_AreLoadable(t *testing.T) {
	for projectType := range GetProjectPresets() {
		for strictness := range GetStrictnessPresets() {
			content := GetFullConfigTemplate(projectType, strictness)

			v := viper.New()
			v.SetConfigType("yaml")
			if err := v.ReadConfig(strings.NewReader(content)); err != nil {
				t.Fatalf("%s/%s template is not valid YAML: %v", projectType, strictness, err)
			}
			if got := v.GetString("parity.uri_tolerance"); got != GetStrictnessPresets()[strictness].URITolerance {
				t.Errorf("%s/%s: expected uri tolerance %q, got %q", projectType, strictness,
					GetStrictnessPresets()[strictness].URITolerance, got)
			}
		}
	}

	path := filepath.Join(t.TempDir(), "mvnparity.yaml")
	if err := os.WriteFile(path, []byte(GetFullConfigTemplate(ProjectTypeGenerated, StrictnessStrict)), 0644); err != nil {
		t.Fatal(err)
	}
	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Generated template failed to load: %v", err)
	}
	if config.Parity.IgnoreSettings {
		t.Error("Strict preset should compare settings")
	}
	if len(config.Scanner.ExcludePatterns) != 5 {
		t.Errorf("Expected generated preset exclusions, got %v", config.Scanner.ExcludePatterns)
	}
}

func TestGetMinimalConfigTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mvnparity.yaml")
	if err := os.WriteFile(path, []byte(GetMinimalConfigTemplate()), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err != nil {
		t.Errorf("Minimal template failed to load: %v", err)
	}
}
