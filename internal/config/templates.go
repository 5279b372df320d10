package config

import (
	"fmt"
	"strings"
)

// ProjectType represents the layout of the Maven project being checked
type ProjectType string

const (
	ProjectTypeStandard  ProjectType = "standard"
	ProjectTypeGenerated ProjectType = "generated"
	ProjectTypeMonorepo  ProjectType = "monorepo"
)

// Strictness represents how many differences the parity check tolerates
type Strictness string

const (
	StrictnessRelaxed  Strictness = "relaxed"
	StrictnessStandard Strictness = "standard"
	StrictnessStrict   Strictness = "strict"
)

// ProjectPreset holds scanner presets for different project layouts
type ProjectPreset struct {
	ExcludePatterns []string
}

// StrictnessPreset holds parity tolerances for different strictness levels
type StrictnessPreset struct {
	URITolerance           string
	ExcludedFields         []string
	IgnoreIdentifiers      bool
	IgnoreSettings         bool
	OrderInsensitiveFields []string
}

// GetProjectPresets returns presets for different project layouts
func GetProjectPresets() map[ProjectType]ProjectPreset {
	return map[ProjectType]ProjectPreset{
		ProjectTypeStandard: {
			ExcludePatterns: []string{
				"**/target/**",
				"**/.idea/**",
				"**/*.iml",
			},
		},
		ProjectTypeGenerated: {
			ExcludePatterns: []string{
				"**/target/**",
				"**/.idea/**",
				"**/*.iml",
				"**/generated-sources/**",
				"**/generated-test-sources/**",
			},
		},
		ProjectTypeMonorepo: {
			ExcludePatterns: []string{
				"**/target/**",
				"**/.idea/**",
				"**/*.iml",
				"**/node_modules/**",
				"**/build/**",
				"**/.gradle/**",
			},
		},
	}
}

// GetStrictnessPresets returns presets for different strictness levels
func GetStrictnessPresets() map[Strictness]StrictnessPreset {
	return map[Strictness]StrictnessPreset{
		StrictnessRelaxed: {
			URITolerance:           "normalize",
			ExcludedFields:         []string{"parent", "packaging"},
			IgnoreIdentifiers:      true,
			IgnoreSettings:         true,
			OrderInsensitiveFields: []string{"modules"},
		},
		StrictnessStandard: {
			URITolerance:           "normalize",
			IgnoreIdentifiers:      true,
			IgnoreSettings:         true,
			OrderInsensitiveFields: []string{"modules"},
		},
		StrictnessStrict: {
			URITolerance:           "strict",
			IgnoreIdentifiers:      true,
			IgnoreSettings:         false,
			OrderInsensitiveFields: []string{},
		},
	}
}

// GetFullConfigTemplate returns the documented config template as YAML
func GetFullConfigTemplate(projectType ProjectType, strictness Strictness) string {
	preset, ok := GetProjectPresets()[projectType]
	if !ok {
		preset = GetProjectPresets()[ProjectTypeStandard]
	}
	strict, ok := GetStrictnessPresets()[strictness]
	if !ok {
		strict = GetStrictnessPresets()[StrictnessStandard]
	}

	return `# mvnparity configuration
# Every key can be overridden with an environment variable, for example
# MVNPARITY_PARITY_URI_TOLERANCE=strict

# ============================================================================
# PARITY CHECK
# ============================================================================
parity:
  # Marker field names that are never compared
  excluded_fields: ` + formatYAMLList(strict.ExcludedFields, 4) + `

  # List fields compared without regard to order
  order_insensitive_fields: ` + formatYAMLList(strict.OrderInsensitiveFields, 4) + `

  # "normalize" treats file:/a and file:///a as equal, "strict" compares literally
  uri_tolerance: ` + strict.URITolerance + `

  # Skip generated marker and dependency ids
  ignore_identifiers: ` + fmt.Sprint(strict.IgnoreIdentifiers) + `

  # Skip the Maven settings embedded in resolution markers
  ignore_settings: ` + fmt.Sprint(strict.IgnoreSettings) + `

# ============================================================================
# MAVEN SETTINGS
# ============================================================================
maven:
  # Empty values fall back to ~/.m2/settings.xml and ~/.m2/settings-security.xml
  user_home: ""
  settings_file: ""
  security_file: ""

# ============================================================================
# SCANNER
# ============================================================================
scanner:
  exclude_patterns: ` + formatYAMLList(preset.ExcludePatterns, 4) + `
  respect_gitignore: true

  # Spelling of resolved artifact URIs: "file:///" or "file:/"
  uri_style: "file:///"

# ============================================================================
# PERFORMANCE
# ============================================================================
performance:
  # Run both parsers at once; when false the tested parser runs first
  parallel: true
  max_goroutines: 2
  timeout_seconds: 300

output:
  # "text", "json" or "yaml"
  format: text

logging:
  level: warn
  # "auto", "text", "json" or "tint"
  format: auto
`
}

// GetMinimalConfigTemplate returns a minimal config template
func GetMinimalConfigTemplate() string {
	return `# mvnparity configuration (minimal)
parity:
  uri_tolerance: normalize
  order_insensitive_fields: ["modules"]

scanner:
  exclude_patterns: ["**/target/**"]
`
}

// formatYAMLList formats a string slice as a block sequence indented by indent spaces
func formatYAMLList(items []string, indent int) string {
	if len(items) == 0 {
		return "[]"
	}

	var sb strings.Builder
	pad := strings.Repeat(" ", indent)
	for _, item := range items {
		sb.WriteString("\n" + pad + `- "` + item + `"`)
	}
	return sb.String()
}
