// Package config loads filgoal settings.
//
// Values are layered: embedded defaults, then an optional YAML file, then a
// .env file in the working directory, then FILGOAL_* environment variables.
package config

import (
	"embed"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

const envPrefix = "FILGOAL_"

// Config holds every runtime setting. Durations are kept as strings and
// read through Timeout and ArticleTTL.
type Config struct {
	Port              string   `yaml:"port"`
	BaseURL           string   `yaml:"base_url"`
	DataDir           string   `yaml:"data_dir"`
	RequestTimeout    string   `yaml:"request_timeout"`
	MaxRetries        int      `yaml:"max_retries"`
	RequestsPerSecond float64  `yaml:"requests_per_second"`
	UserAgents        []string `yaml:"user_agents"`
	SnapshotTime      string   `yaml:"snapshot_time"` // HH:MM, local time
	CORSOrigins       string   `yaml:"cors_origins"`
	ArticleCacheTTL   string   `yaml:"article_cache_ttl"`
	LogLevel          string   `yaml:"log_level"`
	Dev               bool     `yaml:"dev"`
}

// Timeout returns the per-request timeout, defaulting to 10s.
func (c *Config) Timeout() time.Duration {
	d, err := time.ParseDuration(c.RequestTimeout)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}

// ArticleTTL returns how long the HTTP service caches articles; 0 disables it.
func (c *Config) ArticleTTL() time.Duration {
	d, err := time.ParseDuration(c.ArticleCacheTTL)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// Addr returns the listen address for the HTTP service.
func (c *Config) Addr() string {
	return ":" + c.Port
}

// SnapshotClock returns the hour and minute of the daily snapshot.
func (c *Config) SnapshotClock() (hour, minute uint, err error) {
	t, err := time.Parse("15:04", c.SnapshotTime)
	if err != nil {
		return 0, 0, fmt.Errorf("snapshot_time %q: use HH:MM", c.SnapshotTime)
	}
	return uint(t.Hour()), uint(t.Minute()), nil
}

// DefaultConfigPath is $XDG_CONFIG_HOME/filgoal/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "filgoal", "config.yaml")
}

// DefaultDataDir is $XDG_DATA_HOME/filgoal.
func DefaultDataDir() string {
	return filepath.Join(xdg.DataHome, "filgoal")
}

func loadDefaults() (*Config, error) {
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return &cfg, nil
}

// Load builds the configuration. An explicit path must exist; with an empty
// path the default location is tried and silently skipped when absent.
func Load(path string) (*Config, error) {
	cfg, err := loadDefaults()
	if err != nil {
		return nil, err
	}

	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// A missing .env is normal outside development.
	_ = godotenv.Load()
	applyEnv(cfg)

	if cfg.DataDir == "" {
		cfg.DataDir = DefaultDataDir()
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.BaseURL = getEnv("BASE_URL", cfg.BaseURL)
	cfg.DataDir = getEnv("DATA_DIR", cfg.DataDir)
	cfg.RequestTimeout = getEnv("REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.MaxRetries = getEnvInt("MAX_RETRIES", cfg.MaxRetries)
	cfg.RequestsPerSecond = getEnvFloat("REQUESTS_PER_SECOND", cfg.RequestsPerSecond)
	cfg.SnapshotTime = getEnv("SNAPSHOT_TIME", cfg.SnapshotTime)
	cfg.CORSOrigins = getEnv("CORS_ORIGINS", cfg.CORSOrigins)
	cfg.ArticleCacheTTL = getEnv("ARTICLE_CACHE_TTL", cfg.ArticleCacheTTL)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.Dev = getEnvBool("DEV", cfg.Dev)

	if v := getEnv("USER_AGENTS", ""); v != "" {
		var agents []string
		for _, ua := range strings.Split(v, "|") {
			if ua = strings.TrimSpace(ua); ua != "" {
				agents = append(agents, ua)
			}
		}
		if len(agents) > 0 {
			cfg.UserAgents = agents
		}
	}
}

func validate(cfg *Config) error {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return fmt.Errorf("base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base_url scheme must be http or https, got %q", u.Scheme)
	}
	if _, err := time.ParseDuration(cfg.RequestTimeout); err != nil {
		return fmt.Errorf("request_timeout %q: %w", cfg.RequestTimeout, err)
	}
	if cfg.ArticleCacheTTL != "" {
		if _, err := time.ParseDuration(cfg.ArticleCacheTTL); err != nil {
			return fmt.Errorf("article_cache_ttl %q: %w", cfg.ArticleCacheTTL, err)
		}
	}
	if cfg.MaxRetries < 0 {
		return fmt.Errorf("max_retries must be >= 0, got %d", cfg.MaxRetries)
	}
	if cfg.RequestsPerSecond < 0 {
		return fmt.Errorf("requests_per_second must be >= 0, got %v", cfg.RequestsPerSecond)
	}
	if _, _, err := cfg.SnapshotClock(); err != nil {
		return err
	}
	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return fmt.Errorf("port %q is not a number", cfg.Port)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(envPrefix + key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvFloat(key string, defaultVal float64) float64 {
	f, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func getEnvBool(key string, defaultVal bool) bool {
	b, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultVal
	}
	return b
}
