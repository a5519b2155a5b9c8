// ABOUTME: Configuration loader for the fuelwise CLI
// ABOUTME: Layers defaults, config.yaml, .env and FUELWISE_ environment variables

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable
const EnvPrefix = "FUELWISE_"

// FileName is the optional YAML file inside the config directory
const FileName = "config.yaml"

// Store backends
const (
	StoreFile  = "file"
	StoreRedis = "redis"
)

// Config holds every setting
type Config struct {
	APIURL      string        `env:"API_URL" yaml:"api_url"`
	Timeout     time.Duration `env:"TIMEOUT" yaml:"timeout"`
	ConfigDir   string        `env:"CONFIG_DIR" yaml:"-"`
	Store       string        `env:"STORE" yaml:"store"`
	RedisURL    string        `env:"REDIS_URL" yaml:"redis_url"`
	RedisPrefix string        `env:"REDIS_PREFIX" yaml:"redis_prefix"`
	LogLevel    string        `env:"LOG_LEVEL" yaml:"log_level"`
	LogFormat   string        `env:"LOG_FORMAT" yaml:"log_format"`
	ExportDir   string        `env:"EXPORT_DIR" yaml:"export_dir"`
}

// Default returns the built-in settings
func Default() Config {
	return Config{
		APIURL:      "http://localhost:3000",
		Timeout:     30 * time.Second,
		ConfigDir:   DefaultConfigDir(),
		Store:       StoreFile,
		RedisURL:    "redis://localhost:6379/0",
		RedisPrefix: "fuelwise:",
		LogLevel:    "info",
		LogFormat:   "text",
		ExportDir:   ".",
	}
}

// DefaultConfigDir returns the default config directory under XDG_CONFIG_HOME
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "fuelwise")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "fuelwise")
}

// Options controls where Load looks
type Options struct {
	// ConfigDir overrides the directory holding config.yaml
	ConfigDir string
	// DotEnv is the .env file to load; empty means ".env" in the working directory
	DotEnv string
	// Environment replaces the process environment when non-nil
	Environment map[string]string
	// APIURL and Store are command-line flag values; non-empty values win
	APIURL string
	Store  string
}

// Load resolves the configuration. Flags beat the environment, which beats
// config.yaml, which beats defaults.
func Load(opts Options) (*Config, error) {
	environ := opts.Environment
	if environ == nil {
		if err := loadDotEnv(opts.DotEnv); err != nil {
			return nil, err
		}
		environ = env.ToMap(os.Environ())
	}

	cfg := Default()
	cfg.ConfigDir = resolveConfigDir(opts.ConfigDir, environ, cfg.ConfigDir)

	if err := cfg.readFile(); err != nil {
		return nil, err
	}

	if err := env.ParseWithOptions(&cfg, env.Options{
		Prefix:      EnvPrefix,
		Environment: environ,
	}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if opts.ConfigDir != "" {
		cfg.ConfigDir = opts.ConfigDir
	}
	if opts.APIURL != "" {
		cfg.APIURL = opts.APIURL
	}
	if opts.Store != "" {
		cfg.Store = opts.Store
	}

	cfg.sanitize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadDotEnv(path string) error {
	var err error
	if path == "" {
		err = godotenv.Load()
	} else {
		err = godotenv.Load(path)
	}
	if err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return fmt.Errorf("load .env file: %w", err)
		}
	}
	return nil
}

func resolveConfigDir(flag string, environ map[string]string, def string) string {
	if flag != "" {
		return flag
	}
	if dir := environ[EnvPrefix+"CONFIG_DIR"]; dir != "" {
		return dir
	}
	return def
}

func (c *Config) readFile() error {
	if c.ConfigDir == "" {
		return nil
	}
	data, err := os.ReadFile(filepath.Join(c.ConfigDir, FileName))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", FileName, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse %s: %w", FileName, err)
	}
	return nil
}

func (c *Config) sanitize() {
	c.APIURL = strings.TrimRight(ensureScheme(strings.TrimSpace(c.APIURL)), "/")
	c.Store = strings.ToLower(strings.TrimSpace(c.Store))
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
}

// Validate rejects settings the CLI cannot run with
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("%sAPI_URL is required", EnvPrefix)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%sTIMEOUT must be positive, got %s", EnvPrefix, c.Timeout)
	}
	switch c.Store {
	case StoreFile, StoreRedis:
	default:
		return fmt.Errorf("%sSTORE must be %q or %q, got %q", EnvPrefix, StoreFile, StoreRedis, c.Store)
	}
	if c.Store == StoreFile && c.ConfigDir == "" {
		return errors.New("cannot determine config directory for the session file")
	}
	return nil
}

// ensureScheme adds http:// when the URL has no scheme
func ensureScheme(url string) string {
	if url == "" {
		return url
	}
	if !strings.Contains(url, "://") {
		return "http://" + url
	}
	return url
}
