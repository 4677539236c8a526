package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Database struct {
		Path          string `yaml:"path" toml:"path"`
		BusyTimeoutMS int    `yaml:"busy_timeout_ms" toml:"busy_timeout_ms"`
	} `yaml:"database" toml:"database"`

	Auth struct {
		TokenSecret string `yaml:"token_secret" toml:"token_secret"`
		Issuer      string `yaml:"issuer,omitempty" toml:"issuer,omitempty"`
	} `yaml:"auth" toml:"auth"`

	Routes struct {
		Login string `yaml:"login" toml:"login"`
		Home  string `yaml:"home" toml:"home"`
	} `yaml:"routes" toml:"routes"`

	Log struct {
		Level  string `yaml:"level" toml:"level"`
		Format string `yaml:"format" toml:"format"` // "json" or "console"
	} `yaml:"log" toml:"log"`

	Web struct {
		Addr string `yaml:"addr" toml:"addr"`
	} `yaml:"web" toml:"web"`
}

// Environment variables that override file values.
const (
	EnvDBPath      = "JADWALBOLA_DB_PATH"
	EnvTokenSecret = "JADWALBOLA_TOKEN_SECRET"
	EnvLogLevel    = "JADWALBOLA_LOG_LEVEL"
)

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Database.Path = "./jadwalbola.db"
	cfg.Database.BusyTimeoutMS = 5000
	cfg.Routes.Login = "/auth/login"
	cfg.Routes.Home = "/(tabs)/home"
	cfg.Log.Level = "info"
	cfg.Log.Format = "json"
	cfg.Web.Addr = "127.0.0.1:8787"
	return cfg
}

// LoadConfig reads path (YAML, or TOML for a .toml extension) over the
// defaults. A missing file is not an error. A .env file in the working
// directory and the process environment are applied last.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := decodeConfig(path, data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// .env is optional, but a present one must parse.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	cfg.applyEnv()

	return cfg, nil
}

func decodeConfig(path string, data []byte, cfg *Config) error {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		_, err := toml.Decode(string(data), cfg)
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func (c *Config) applyEnv() {
	if v, ok := os.LookupEnv(EnvDBPath); ok && v != "" {
		c.Database.Path = v
	}
	if v, ok := os.LookupEnv(EnvTokenSecret); ok && v != "" {
		c.Auth.TokenSecret = v
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
}
