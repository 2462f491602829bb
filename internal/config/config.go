package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Env            string        `yaml:"env"`
	LogLevel       string        `yaml:"log_level"`
	DBType         string        `yaml:"storage_backend"`
	DBDSN          string        `yaml:"postgres_dsn"`
	DataDir        string        `yaml:"data_dir"`
	ListenAddr     string        `yaml:"listen_addr"`
	BaseURL        string        `yaml:"base_url"`
	SessionTTL     time.Duration `yaml:"session_ttl"`
	SessionSecure  bool          `yaml:"session_secure"`
	DayStart       string        `yaml:"day_start"`
	Timezone       string        `yaml:"timezone"`
	OIDCDiscovery  string        `yaml:"oidc_discovery_url"`
	OIDCClientID   string        `yaml:"oidc_client_id"`
	OIDCSecret     string        `yaml:"oidc_client_secret"`
	OIDCAuthScope  string        `yaml:"oidc_auth_scope"`
	MigrateOnStart bool          `yaml:"migrate_on_start"`
}

var (
	cfg     *Config
	loadErr error
	once    sync.Once
)

// Load reads the configuration once: defaults, then the YAML file named by
// CONFIG_FILE, then environment variables.
func Load() (*Config, error) {
	once.Do(func() {
		cfg, loadErr = Read(os.Getenv("CONFIG_FILE"), os.LookupEnv)
	})
	return cfg, loadErr
}

func Defaults() *Config {
	return &Config{
		Env:            "development",
		LogLevel:       "info",
		DBType:         "file",
		DataDir:        "data",
		ListenAddr:     ":8080",
		BaseURL:        "http://localhost:8080",
		SessionTTL:     7 * 24 * time.Hour,
		DayStart:       "07:00",
		Timezone:       "Local",
		OIDCAuthScope:  "openid email profile groups",
		MigrateOnStart: true,
	}
}

// Read builds a Config without touching the cached one. An empty path skips
// the YAML file.
func Read(path string, lookup func(string) (string, bool)) (*Config, error) {
	c := Defaults()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, c); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}
	if err := c.applyEnv(lookup); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("APP_ENV", &c.Env)
	str("LOG_LEVEL", &c.LogLevel)
	str("STORAGE_BACKEND", &c.DBType)
	str("POSTGRES_DSN", &c.DBDSN)
	str("DATA_DIR", &c.DataDir)
	str("LISTEN_ADDR", &c.ListenAddr)
	str("BASE_URL", &c.BaseURL)
	str("DAY_START", &c.DayStart)
	str("TIMEZONE", &c.Timezone)
	str("OIDC_DISCOVERY_URL", &c.OIDCDiscovery)
	str("OIDC_CLIENT_ID", &c.OIDCClientID)
	str("OIDC_CLIENT_SECRET", &c.OIDCSecret)
	str("OIDC_AUTH_SCOPE", &c.OIDCAuthScope)

	if v, ok := lookup("SESSION_TTL"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("SESSION_TTL: %w", err)
		}
		c.SessionTTL = d
	}
	for key, dst := range map[string]*bool{
		"SESSION_SECURE":   &c.SessionSecure,
		"MIGRATE_ON_START": &c.MigrateOnStart,
	} {
		if v, ok := lookup(key); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = b
		}
	}
	return nil
}

func (c *Config) Validate() error {
	if c.DBType != "file" && c.DBType != "postgres" {
		return errors.New("STORAGE_BACKEND must be one of: file, postgres")
	}
	if c.DBType == "postgres" && c.DBDSN == "" {
		return errors.New("POSTGRES_DSN is required when STORAGE_BACKEND=postgres")
	}
	if c.DBType == "file" && c.DataDir == "" {
		return errors.New("file storage requires DATA_DIR to be set")
	}
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return errors.New("APP_ENV must be one of: development, staging, production")
	}
	if _, err := c.DayStartOffset(); err != nil {
		return err
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	if c.OIDCEnabled() {
		if c.OIDCClientID == "" || c.OIDCSecret == "" {
			return errors.New("OIDC_CLIENT_ID and OIDC_CLIENT_SECRET are required when OIDC_DISCOVERY_URL is set")
		}
		if c.BaseURL == "" {
			return errors.New("BASE_URL is required for OIDC")
		}
	}
	return nil
}

func (c *Config) OIDCEnabled() bool {
	return c.OIDCDiscovery != ""
}

// DayStartOffset parses DAY_START ("HH:MM") into an offset from midnight.
func (c *Config) DayStartOffset() (time.Duration, error) {
	t, err := time.Parse("15:04", c.DayStart)
	if err != nil {
		return 0, fmt.Errorf("DAY_START must be HH:MM: %w", err)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("TIMEZONE: %w", err)
	}
	return loc, nil
}
