// Package muxconfig is the mux daemon's thin YAML config companion to
// TENEX_MUX_SOCKET and CLI flags (§10.3): default window size, default
// scrollback cap, and an optional socket-path override.
package muxconfig

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds daemon-wide defaults that rarely change between sessions.
type Config struct {
	DefaultRows       int    `yaml:"default_rows"`
	DefaultCols       int    `yaml:"default_cols"`
	DefaultScrollback int    `yaml:"default_scrollback"`
	SocketPath        string `yaml:"socket_path,omitempty"`
}

// Dir returns the mux configuration directory (~/.tenex/).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".tenex")
	}
	return filepath.Join(home, ".tenex")
}

// Load reads the config from ~/.tenex/muxd.yaml. A missing file returns an
// empty Config, not an error.
func Load() (*Config, error) {
	return LoadFrom(filepath.Join(Dir(), "muxd.yaml"))
}

// LoadFrom reads the config from path. A missing file returns an empty
// Config, not an error.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
