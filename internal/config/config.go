// Package config loads node configuration from an optional TOML file,
// layered under domain.DefaultConfig() (§3). Command-line flags are applied
// by the caller (cmd/gossipd) after LoadFile, so flags always win over the
// file and the file always wins over built-in defaults.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/gossipmesh/gossipd/internal/domain"
)

// LoadFile reads the TOML file at path into domain.DefaultConfig(), and
// returns the defaults unchanged if path is empty (no config file given).
// Fields absent from the file keep their default value — toml.Decode only
// overwrites keys it actually finds.
func LoadFile(path string) (domain.Config, error) {
	cfg := domain.DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	if _, err := os.Stat(path); err != nil {
		return cfg, fmt.Errorf("config file %s: %w", path, err)
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("decode config file %s: %w", path, err)
	}
	return cfg, nil
}
