// ABOUTME: Configuration loader for the dragon catalog client
// ABOUTME: Reads an optional .env file, then environment variables with defaults

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"golang.org/x/text/language"
)

// DefaultAPIURL is the hosted dragon collection
const DefaultAPIURL = "http://5c4b2a47aa8ee500142b4887.mockapi.io/api/v1/dragon"

type Config struct {
	// Remote store
	APIURL      string        `env:"DRAGON_API_URL" envDefault:"http://5c4b2a47aa8ee500142b4887.mockapi.io/api/v1/dragon"`
	HTTPTimeout time.Duration `env:"DRAGON_HTTP_TIMEOUT" envDefault:"30s"` // 0 disables the transport timeout
	Locale      string        `env:"DRAGON_LOCALE" envDefault:"en"`        // BCP 47 tag used to order names

	// Session
	ConfigDir   string `env:"DRAGON_CONFIG_DIR"` // default: XDG config dir
	Username    string `env:"DRAGON_USERNAME" envDefault:"admin"`
	Password    string `env:"DRAGON_PASSWORD" envDefault:"admin"`
	TokenSecret string `env:"DRAGON_TOKEN_SECRET"`

	// Mock store server
	MockAddr     string `env:"DRAGON_MOCK_ADDR" envDefault:":3000"`
	MockBasePath string `env:"DRAGON_MOCK_BASE_PATH" envDefault:"/api/v1/dragon"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"warn"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	locale language.Tag
}

// Load reads .env from the working directory (if present) and the environment
func Load() (*Config, error) {
	return LoadFrom(".env")
}

// LoadFrom loads the given env files before parsing the environment.
// Missing files are skipped; variables already set are never overridden.
func LoadFrom(envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.APIURL = ensureScheme(strings.TrimSpace(cfg.APIURL))
	if cfg.ConfigDir == "" {
		cfg.ConfigDir = DefaultConfigDir()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field values and caches the parsed locale
func (c *Config) Validate() error {
	if err := ValidateAPIURL(c.APIURL); err != nil {
		return err
	}
	if c.HTTPTimeout < 0 {
		return fmt.Errorf("DRAGON_HTTP_TIMEOUT must not be negative, got %s", c.HTTPTimeout)
	}
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return fmt.Errorf("DRAGON_LOCALE %q is not a valid language tag: %w", c.Locale, err)
	}
	c.locale = tag
	if c.Username == "" {
		return fmt.Errorf("DRAGON_USERNAME must not be empty")
	}
	if c.ConfigDir == "" {
		return fmt.Errorf("DRAGON_CONFIG_DIR is required when no home directory is available")
	}
	return nil
}

// LocaleTag returns the parsed collation locale
func (c *Config) LocaleTag() language.Tag {
	if c.locale == language.Und {
		if tag, err := language.Parse(c.Locale); err == nil {
			return tag
		}
		return language.English
	}
	return c.locale
}

// ValidateAPIURL requires an http(s) URL with a host
func ValidateAPIURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("DRAGON_API_URL is invalid: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("DRAGON_API_URL must use http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("DRAGON_API_URL must include a host")
	}
	return nil
}

// DefaultConfigDir returns the default config directory following the XDG Base Directory layout
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "dragon-catalog")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "dragon-catalog")
}

// ensureScheme adds https:// prefix if the URL has no scheme
func ensureScheme(url string) string {
	if url == "" {
		return url
	}
	if !strings.Contains(url, "://") {
		return "https://" + url
	}
	return url
}

// EnsureScheme is ensureScheme for flag values
func EnsureScheme(url string) string {
	return ensureScheme(url)
}
