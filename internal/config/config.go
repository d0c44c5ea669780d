// Package config loads journal settings from a YAML file and the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/pbaille/journal/internal/classifier"
	"github.com/pbaille/journal/internal/embedding"
	"github.com/pbaille/journal/internal/logging"
)

// EnvPrefix is stripped from environment variables before mapping them to keys.
const EnvPrefix = "JOURNAL_"

// Config holds all journal settings.
type Config struct {
	Database   DatabaseConfig    `koanf:"database"`
	Server     ServerConfig      `koanf:"server"`
	Log        logging.Config    `koanf:"log"`
	Embedding  embedding.Config  `koanf:"embedding"`
	Classifier classifier.Config `koanf:"classifier"`
}

// DatabaseConfig locates the SQLite database.
type DatabaseConfig struct {
	Path string `koanf:"path"`
}

// ServerConfig configures the REST API.
type ServerConfig struct {
	Addr string `koanf:"addr"`
}

// Load reads configuration with precedence env > file > defaults. A missing
// file at path is not an error; an empty path skips the file.
//
// Environment variables map by splitting on the first underscore after the
// prefix:
//
//	JOURNAL_DATABASE_PATH     -> database.path
//	JOURNAL_EMBEDDING_API_KEY -> embedding.api_key
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		content, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("load config file %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func envKey(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	section, field, ok := strings.Cut(lower, "_")
	if !ok {
		return lower
	}
	return section + "." + field
}

// DefaultDBPath is ~/.journal/journal.db, or journal.db when the home
// directory is unknown.
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "journal.db"
	}
	return filepath.Join(home, ".journal", "journal.db")
}

func applyDefaults(cfg *Config) {
	if cfg.Database.Path == "" {
		cfg.Database.Path = DefaultDBPath()
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Embedding.APIKey == "" {
		cfg.Embedding.APIKey = os.Getenv("VOYAGE_API_KEY")
	}
	if cfg.Classifier.APIKey == "" {
		cfg.Classifier.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
}

// Validate checks required fields.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	return c.Log.Validate()
}
