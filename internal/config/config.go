// Package config assembles the application configuration from defaults, an
// optional YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/Dimaray2024/xiaona/internal/imaging"
	"github.com/Dimaray2024/xiaona/internal/llm"
	"github.com/Dimaray2024/xiaona/internal/store"
	"github.com/Dimaray2024/xiaona/internal/tutor"
)

// Config is the whole application configuration.
type Config struct {
	// DBPath is the SQLite file. Empty uses store.DefaultDBPath.
	DBPath string `yaml:"db_path"`

	// Locale orders problem names in the mistake log.
	Locale string `yaml:"locale"`

	LLM     llm.Config    `yaml:"llm"`
	Tutor   tutor.Config  `yaml:"tutor"`
	Images  ImagesConfig  `yaml:"images"`
	Storage StorageConfig `yaml:"storage"`
}

// ImagesConfig controls photo compression.
type ImagesConfig struct {
	MaxDimension int     `yaml:"max_dimension"`
	Quality      float64 `yaml:"quality"`
}

// StorageConfig limits the key-value store.
type StorageConfig struct {
	// QuotaBytes caps the stored values. Zero means unlimited.
	QuotaBytes int64 `yaml:"quota_bytes"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Locale: "zh",
		LLM:    llm.DefaultConfig(),
		Tutor:  tutor.DefaultConfig(),
		Images: ImagesConfig{
			MaxDimension: imaging.DefaultMaxDimension,
			Quality:      imaging.DefaultQuality,
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/xiaona/config.yaml, falling back to
// ~/.config.
func DefaultPath() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "xiaona", "config.yaml"), nil
}

// Load builds the configuration. path names the YAML file; when empty,
// XIAONA_CONFIG and then DefaultPath are tried. A missing file is only an
// error when it was named explicitly.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := true
	if path == "" {
		path = os.Getenv("XIAONA_CONFIG")
	}
	if path == "" {
		explicit = false
		p, err := DefaultPath()
		if err == nil {
			path = p
		}
	}

	if path != "" {
		if err := cfg.readFile(path); err != nil {
			if explicit || !errors.Is(err, fs.ErrNotExist) {
				return Config{}, err
			}
		}
	}

	cfg.applyEnv()
	if !cfg.LLM.HasKey() {
		cfg.LLM.Discover()
	}
	cfg.finish()
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.LLM.ApplyEnv()
	if v := os.Getenv("XIAONA_DB"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("XIAONA_LOCALE"); v != "" {
		c.Locale = v
	}
	if v := os.Getenv("XIAONA_STORAGE_QUOTA"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Storage.QuotaBytes = n
		}
	}
}

// finish fills values that depend on other settings.
func (c *Config) finish() {
	// Practice problems are plain text; the fast model is enough.
	if c.Tutor.PracticeModel == "" && c.LLM.Provider == "gemini" {
		c.Tutor.PracticeModel = "gemini-flash"
	}
	if c.Tutor.MaxTokens <= 0 {
		c.Tutor.MaxTokens = tutor.DefaultConfig().MaxTokens
	}
	c.LLM.Retry.MaxAttempts = max(c.LLM.Retry.MaxAttempts, 1)
}

// ResolveDBPath returns DBPath or the default location, creating its
// directory.
func (c Config) ResolveDBPath() (string, error) {
	if c.DBPath == "" {
		return store.DefaultDBPath()
	}
	return c.DBPath, store.EnsureDir(c.DBPath)
}

// Compressor returns the image compressor for these settings.
func (c Config) Compressor() *imaging.Compressor {
	return imaging.NewCompressor(c.Images.MaxDimension, c.Images.Quality)
}
