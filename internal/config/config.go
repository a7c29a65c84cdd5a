package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/altin/linesearch/internal/search"
)

var ErrNoSources = errors.New("at least one input source is required")

type Config struct {
	Sources    []string    `yaml:"sources"`
	Prompt     string      `yaml:"prompt"`
	EmptyTerms string      `yaml:"empty_terms"`
	Plain      bool        `yaml:"plain"`
	LogLevel   string      `yaml:"log_level"`
	LogFile    string      `yaml:"log_file"`
	Cache      CacheConfig `yaml:"cache"`
}

type CacheConfig struct {
	Dir    string        `yaml:"dir"`
	SizeMB int           `yaml:"size_mb"`
	TTL    time.Duration `yaml:"ttl"`
}

func Default() Config {
	return Config{
		Prompt:     ">>> ",
		EmptyTerms: string(search.SkipEmpty),
		Cache: CacheConfig{
			Dir:    filepath.Join(os.TempDir(), "linesearch", "logs"),
			SizeMB: 200,
			TTL:    24 * time.Hour,
		},
	}
}

// Load reads a YAML file on top of Default.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if len(c.Sources) == 0 {
		return ErrNoSources
	}
	if _, err := search.ParseEmptyTerms(c.EmptyTerms); err != nil {
		return err
	}
	switch strings.ToLower(c.LogLevel) {
	case "", "none", "off", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	if c.Cache.SizeMB < 0 {
		return fmt.Errorf("cache size must not be negative")
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache ttl must not be negative")
	}
	return nil
}

// EmptyTermsPolicy assumes Validate has passed.
func (c Config) EmptyTermsPolicy() search.EmptyTerms {
	p, _ := search.ParseEmptyTerms(c.EmptyTerms)
	return p
}
