package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/text/language"
)

func clearDragonEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"DRAGON_API_URL", "DRAGON_HTTP_TIMEOUT", "DRAGON_LOCALE", "DRAGON_CONFIG_DIR",
		"DRAGON_USERNAME", "DRAGON_PASSWORD", "DRAGON_TOKEN_SECRET",
		"DRAGON_MOCK_ADDR", "DRAGON_MOCK_BASE_PATH", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearDragonEnv(t)

	cfg, err := LoadFrom()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.APIURL != DefaultAPIURL {
		t.Errorf("Expected default API URL, got %s", cfg.APIURL)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Errorf("Expected default timeout 30s, got %s", cfg.HTTPTimeout)
	}
	if cfg.Username != "admin" || cfg.Password != "admin" {
		t.Errorf("Expected demo credentials, got %s/%s", cfg.Username, cfg.Password)
	}
	if cfg.LocaleTag() != language.English {
		t.Errorf("Expected English locale, got %v", cfg.LocaleTag())
	}
	if filepath.Base(cfg.ConfigDir) != "dragon-catalog" {
		t.Errorf("Expected XDG config dir, got %s", cfg.ConfigDir)
	}
	if cfg.MockBasePath != "/api/v1/dragon" {
		t.Errorf("Expected default mock base path, got %s", cfg.MockBasePath)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	clearDragonEnv(t)
	t.Setenv("DRAGON_API_URL", "store.example.com/dragon")
	t.Setenv("DRAGON_HTTP_TIMEOUT", "5s")
	t.Setenv("DRAGON_LOCALE", "sv")
	t.Setenv("DRAGON_CONFIG_DIR", "/tmp/dragons")

	cfg, err := LoadFrom()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.APIURL != "https://store.example.com/dragon" {
		t.Errorf("Expected https scheme added, got %s", cfg.APIURL)
	}
	if cfg.HTTPTimeout != 5*time.Second {
		t.Errorf("Expected 5s timeout, got %s", cfg.HTTPTimeout)
	}
	if cfg.LocaleTag() != language.Swedish {
		t.Errorf("Expected Swedish locale, got %v", cfg.LocaleTag())
	}
	if cfg.ConfigDir != "/tmp/dragons" {
		t.Errorf("Expected config dir override, got %s", cfg.ConfigDir)
	}
}

func TestLoadConfig_DotEnvFile(t *testing.T) {
	clearDragonEnv(t)
	envFile := filepath.Join(t.TempDir(), ".env")
	os.WriteFile(envFile, []byte("DRAGON_USERNAME=dany\nDRAGON_PASSWORD=dracarys\n"), 0600)
	t.Cleanup(func() {
		os.Unsetenv("DRAGON_USERNAME")
		os.Unsetenv("DRAGON_PASSWORD")
	})

	cfg, err := LoadFrom(envFile)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.Username != "dany" || cfg.Password != "dracarys" {
		t.Errorf("Expected credentials from .env, got %s/%s", cfg.Username, cfg.Password)
	}
}

func TestLoadConfig_MissingDotEnvIsIgnored(t *testing.T) {
	clearDragonEnv(t)

	if _, err := LoadFrom(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("Expected missing .env to be ignored, got %v", err)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad scheme", "DRAGON_API_URL", "ftp://example.com"},
		{"bad timeout", "DRAGON_HTTP_TIMEOUT", "soon"},
		{"negative timeout", "DRAGON_HTTP_TIMEOUT", "-1s"},
		{"bad locale", "DRAGON_LOCALE", "not a locale!"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clearDragonEnv(t)
			t.Setenv(tc.key, tc.value)

			if _, err := LoadFrom(); err == nil {
				t.Errorf("Expected error for %s=%q", tc.key, tc.value)
			}
		})
	}
}

func TestEnsureScheme(t *testing.T) {
	tests := map[string]string{
		"":                       "",
		"example.com":            "https://example.com",
		"http://localhost:3000":  "http://localhost:3000",
		"https://mockapi.io/api": "https://mockapi.io/api",
	}
	for in, want := range tests {
		if got := EnsureScheme(in); got != want {
			t.Errorf("EnsureScheme(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDefaultConfigDir_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got := DefaultConfigDir(); got != "/tmp/xdg/dragon-catalog" {
		t.Errorf("Expected XDG path, got %s", got)
	}
}
