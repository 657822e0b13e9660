// Package config loads process configuration for clipdex.
//
// Precedence, lowest to highest: built-in defaults, an optional YAML file
// (clipdex.yaml in the working directory, or the path in CLIPDEX_CONFIG),
// then CLIPDEX_* environment variables. The API token is a secret and is
// env-only, never read from the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
	Auth    AuthConfig    `yaml:"auth"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type StorageConfig struct {
	DataDir string `yaml:"data_dir"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type AuthConfig struct {
	// Owners is the bootstrap allow-list, seeded into the store at startup.
	Owners []int64 `yaml:"owners"`
	// APIToken authenticates transport frontends. Env-only.
	APIToken string `yaml:"-"`
}

func defaults() Config {
	return Config{
		Server:  ServerConfig{Port: 4600},
		Storage: StorageConfig{DataDir: "data"},
		Log:     LogConfig{Level: "info"},
	}
}

// Load reads configuration from file and environment.
func Load() (Config, error) {
	cfg := defaults()

	path := os.Getenv("CLIPDEX_CONFIG")
	if path == "" {
		path = "clipdex.yaml"
	}
	if err := applyFile(&cfg, path); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	if cfg.Auth.APIToken == "" {
		return Config{}, fmt.Errorf("missing required config: API token. Set CLIPDEX_API_TOKEN")
	}
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return Config{}, fmt.Errorf("invalid server port %d", cfg.Server.Port)
	}

	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil // the file is optional
	}
	if err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CLIPDEX_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = p
		}
	}
	if v := os.Getenv("CLIPDEX_DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := os.Getenv("CLIPDEX_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("CLIPDEX_OWNER_IDS"); v != "" {
		cfg.Auth.Owners = ParseOwnerIDs(v)
	}
	if v := os.Getenv("CLIPDEX_API_TOKEN"); v != "" {
		cfg.Auth.APIToken = v
	}
}

// ParseOwnerIDs parses a comma-separated owner id list. Malformed pieces are
// skipped so one typo in the env does not lock every owner out.
func ParseOwnerIDs(raw string) []int64 {
	var ids []int64
	for _, piece := range strings.Split(raw, ",") {
		piece = strings.TrimSpace(piece)
		if piece == "" {
			continue
		}
		id, err := strconv.ParseInt(piece, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
