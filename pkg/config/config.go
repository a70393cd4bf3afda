// Package config resolves runtime settings for the paramform binaries.
//
// Values are layered: built-in defaults, then an optional YAML file, then
// variables from .env files, then the process environment. Later layers win.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix namespaces every environment override.
const EnvPrefix = "PARAMFORM_"

// Renderer names accepted by Config.Renderer.
const (
	RendererVanilla = "vanilla"
	RendererTUI     = "tui"
)

// Config holds all settings.
type Config struct {
	Backend  BackendConfig `yaml:"backend"`
	Server   ServerConfig  `yaml:"server"`
	Cache    CacheConfig   `yaml:"cache"`
	Renderer string        `yaml:"renderer"`
	Debug    bool          `yaml:"debug"`
}

// BackendConfig locates the dataset API.
type BackendConfig struct {
	BaseURL        string        `yaml:"base_url"`
	CatalogPath    string        `yaml:"catalog_path"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// ServerConfig configures the browser host.
type ServerConfig struct {
	Addr           string        `yaml:"addr"`
	SessionSecret  string        `yaml:"session_secret"`
	SessionName    string        `yaml:"session_name"`
	SessionMaxAge  time.Duration `yaml:"session_max_age"`
	SecureCookies  bool          `yaml:"secure_cookies"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	HandlerTimeout time.Duration `yaml:"handler_timeout"`
	TemplatesDir   string        `yaml:"templates_dir"`
}

// CacheConfig controls response caching of parameter and result requests.
// An empty RedisAddr selects the in-process cache.
type CacheConfig struct {
	Enabled       bool          `yaml:"enabled"`
	TTL           time.Duration `yaml:"ttl"`
	MaxEntries    int           `yaml:"max_entries"`
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Backend: BackendConfig{
			BaseURL:        "http://localhost:8000",
			CatalogPath:    "/squirrels0",
			RequestTimeout: 30 * time.Second,
		},
		Server: ServerConfig{
			Addr:           ":8080",
			SessionName:    "paramform",
			SessionMaxAge:  12 * time.Hour,
			HandlerTimeout: 60 * time.Second,
		},
		Cache: CacheConfig{
			TTL:        5 * time.Minute,
			MaxEntries: 1024,
		},
		Renderer: RendererVanilla,
	}
}

// Option customises Load.
type Option func(*loader)

type loader struct {
	file      string
	envFiles  []string
	lookupEnv func(string) (string, bool)
}

// WithFile reads YAML settings from path. A missing file is an error.
func WithFile(path string) Option {
	return func(l *loader) {
		l.file = strings.TrimSpace(path)
	}
}

// WithEnvFiles replaces the default ".env" with the given dotenv files.
// Missing files are skipped.
func WithEnvFiles(paths ...string) Option {
	return func(l *loader) {
		l.envFiles = paths
	}
}

// WithLookupEnv swaps the process environment, mainly for tests.
func WithLookupEnv(lookup func(string) (string, bool)) Option {
	return func(l *loader) {
		if lookup != nil {
			l.lookupEnv = lookup
		}
	}
}

// Load resolves the configuration.
func Load(options ...Option) (*Config, error) {
	l := loader{
		envFiles:  []string{".env"},
		lookupEnv: os.LookupEnv,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&l)
	}

	cfg := Default()
	if l.file != "" {
		data, err := os.ReadFile(l.file)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", l.file, err)
		}
		if err := Decode(bytes.NewReader(data), &cfg); err != nil {
			return nil, fmt.Errorf("config: %s: %w", l.file, err)
		}
	}

	dotenv, err := readEnvFiles(l.envFiles)
	if err != nil {
		return nil, err
	}
	lookup := func(key string) (string, bool) {
		if value, ok := l.lookupEnv(key); ok {
			return value, true
		}
		value, ok := dotenv[key]
		return value, ok
	}
	if err := applyEnv(&cfg, lookup); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// Decode reads YAML into cfg, rejecting unknown keys.
func Decode(r io.Reader, cfg *Config) error {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode yaml: %w", err)
	}
	return nil
}

// Validate checks the settings that cannot be defaulted.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Backend.BaseURL) == "" {
		return errors.New("backend base url is required")
	}
	if c.Backend.RequestTimeout < 0 {
		return fmt.Errorf("invalid request timeout: %s", c.Backend.RequestTimeout)
	}
	switch c.Renderer {
	case RendererVanilla, RendererTUI:
	default:
		return fmt.Errorf("unknown renderer %q", c.Renderer)
	}
	if c.Cache.Enabled && c.Cache.TTL <= 0 {
		return fmt.Errorf("cache ttl must be positive, got %s", c.Cache.TTL)
	}
	return nil
}

func readEnvFiles(paths []string) (map[string]string, error) {
	out := make(map[string]string)
	for _, path := range paths {
		if strings.TrimSpace(path) == "" {
			continue
		}
		values, err := godotenv.Read(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("config: read env file %s: %w", path, err)
		}
		for key, value := range values {
			if _, seen := out[key]; !seen {
				out[key] = value
			}
		}
	}
	return out, nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	env := envReader{lookup: lookup}

	env.str("BACKEND_URL", &cfg.Backend.BaseURL)
	env.str("CATALOG_PATH", &cfg.Backend.CatalogPath)
	env.duration("REQUEST_TIMEOUT", &cfg.Backend.RequestTimeout)

	env.str("ADDR", &cfg.Server.Addr)
	env.str("SESSION_SECRET", &cfg.Server.SessionSecret)
	env.str("SESSION_NAME", &cfg.Server.SessionName)
	env.duration("SESSION_MAX_AGE", &cfg.Server.SessionMaxAge)
	env.boolean("SECURE_COOKIES", &cfg.Server.SecureCookies)
	env.list("ALLOWED_ORIGINS", &cfg.Server.AllowedOrigins)
	env.duration("HANDLER_TIMEOUT", &cfg.Server.HandlerTimeout)
	env.str("TEMPLATES_DIR", &cfg.Server.TemplatesDir)

	env.boolean("CACHE_ENABLED", &cfg.Cache.Enabled)
	env.duration("CACHE_TTL", &cfg.Cache.TTL)
	env.integer("CACHE_MAX_ENTRIES", &cfg.Cache.MaxEntries)
	env.str("REDIS_ADDR", &cfg.Cache.RedisAddr)
	env.str("REDIS_PASSWORD", &cfg.Cache.RedisPassword)
	env.integer("REDIS_DB", &cfg.Cache.RedisDB)

	env.str("RENDERER", &cfg.Renderer)
	env.boolean("DEBUG", &cfg.Debug)

	return errors.Join(env.errs...)
}

type envReader struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (e *envReader) get(key string) (string, bool) {
	value, ok := e.lookup(EnvPrefix + key)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(value), true
}

func (e *envReader) str(key string, dst *string) {
	if value, ok := e.get(key); ok {
		*dst = value
	}
}

func (e *envReader) list(key string, dst *[]string) {
	value, ok := e.get(key)
	if !ok {
		return
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	*dst = out
}

func (e *envReader) integer(key string, dst *int) {
	value, ok := e.get(key)
	if !ok {
		return
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("config: %s%s: invalid integer %q", EnvPrefix, key, value))
		return
	}
	*dst = parsed
}

func (e *envReader) boolean(key string, dst *bool) {
	value, ok := e.get(key)
	if !ok {
		return
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("config: %s%s: invalid boolean %q", EnvPrefix, key, value))
		return
	}
	*dst = parsed
}

func (e *envReader) duration(key string, dst *time.Duration) {
	value, ok := e.get(key)
	if !ok {
		return
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("config: %s%s: invalid duration %q", EnvPrefix, key, value))
		return
	}
	*dst = parsed
}
