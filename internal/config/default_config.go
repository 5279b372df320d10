package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

// defaultConfigJSON mirrors DefaultConfig and ships inside the binary
//
//go:embed default_config.json
var defaultConfigJSON []byte

// LoadDefaultConfig decodes and validates the embedded defaults
func LoadDefaultConfig() (*Config, error) {
	var cfg Config
	if err := json.Unmarshal(defaultConfigJSON, &cfg); err != nil {
		return nil, fmt.Errorf("embedded defaults: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("embedded defaults: %w", err)
	}
	return &cfg, nil
}
