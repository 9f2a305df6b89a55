package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level node configuration document. It holds only the
// protocol section every core component consumes; there are no
// application-level (CLI/RPC/P2P) settings.
type Config struct {
	ProtocolConfiguration ProtocolConfiguration `yaml:"ProtocolConfiguration"`
}

// LoadFile reads, parses and validates a YAML configuration file.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}
	return Load(data)
}

// Load parses and validates YAML configuration data.
func Load(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parsing: %w", err)
	}
	if err := cfg.ProtocolConfiguration.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
