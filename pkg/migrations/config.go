package migrations

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// LoadConfig reads a YAML file and overlays it on base.
// Keys missing from the file keep their value from base; a tables list replaces base.Tables entirely.
func LoadConfig(path string, base Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := ParseConfig(data, base)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes YAML config data over base. Unknown keys are rejected.
func ParseConfig(data []byte, base Config) (Config, error) {
	cfg := base
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}
