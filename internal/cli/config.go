package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/matzehuels/roomgraph/internal/server"
	"github.com/matzehuels/roomgraph/pkg/roomgraph"
	"github.com/matzehuels/roomgraph/pkg/store"
)

// Environment variables that override the config file.
const (
	envStore    = "ROOMGRAPH_STORE"
	envStoreURL = "ROOMGRAPH_STORE_URL"
	envAddr     = "ROOMGRAPH_ADDR"
)

// Config is the resolved CLI configuration.
//
// Precedence, highest first: command-line flags, environment variables,
// the TOML config file, built-in defaults.
type Config struct {
	Store             string `toml:"store"`
	StoreURL          string `toml:"store_url"`
	Types             string `toml:"types"` // path to a TOML type catalog
	MaxChildCorridors int    `toml:"max_child_corridors"`
	Addr              string `toml:"addr"`
}

func defaultConfig() Config {
	return Config{
		Store:             store.BackendFile,
		MaxChildCorridors: roomgraph.DefaultMaxChildCorridors,
		Addr:              server.DefaultAddr,
	}
}

// defaultConfigPath returns $XDG_CONFIG_HOME/roomgraph/config.toml.
func defaultConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// loadConfigFile merges the TOML file at path into cfg. A missing file is
// an error only when required is set (an explicit --config). Unknown keys
// are rejected so typos do not silently fall back to defaults.
func loadConfigFile(cfg *Config, path string, required bool) error {
	md, err := toml.DecodeFile(path, cfg)
	if errors.Is(err, fs.ErrNotExist) && !required {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// applyEnv overrides cfg with the ROOMGRAPH_* environment variables.
func applyEnv(cfg *Config) {
	if v := os.Getenv(envStore); v != "" {
		cfg.Store = v
	}
	if v := os.Getenv(envStoreURL); v != "" {
		cfg.StoreURL = v
	}
	if v := os.Getenv(envAddr); v != "" {
		cfg.Addr = v
	}
}

// resolveConfig builds the effective configuration for cmd.
func (c *CLI) resolveConfig(cmd *cobra.Command) (Config, error) {
	cfg := defaultConfig()

	path, required := c.configPath, c.configPath != ""
	if !required {
		p, err := defaultConfigPath()
		if err != nil {
			return cfg, err
		}
		path = p
	}
	if err := loadConfigFile(&cfg, path, required); err != nil {
		return cfg, err
	}

	applyEnv(&cfg)

	flags := cmd.Flags()
	if flags.Changed("store") {
		cfg.Store = c.storeKind
	}
	if flags.Changed("store-url") {
		cfg.StoreURL = c.storeURL
	}

	if cfg.MaxChildCorridors <= 0 {
		return cfg, fmt.Errorf("max_child_corridors must be positive, got %d", cfg.MaxChildCorridors)
	}
	c.Logger.Debug("resolved config", "store", cfg.Store, "store_url", cfg.StoreURL, "types", cfg.Types)
	return cfg, nil
}
