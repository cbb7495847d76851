package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var requiredEnv = []string{
	"YOUTUBE_API_KEY", "YOUTUBE_CHANNEL_ID", "GEMINI_API_KEY", "ADMIN_EMAIL",
	"ADMIN_PASSWORD", "MONGO_URI", "MONGODB_URI", "STORAGE_DRIVER",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range requiredEnv {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestLoadFromYAMLAndEnv(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
youtube:
  api_key: yaml-key
ai:
  gemini_api_key: yaml-gemini
storage:
  driver: file
  data_dir: /tmp/portfolio
instagram:
  timeout: 5s
  main:
    - https://www.instagram.com/p/ABC123/
admin:
  email: admin@example.com
  password: secret
`)
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("GEMINI_API_KEY", "env-gemini")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.YouTube.APIKey != "yaml-key" {
		t.Errorf("YouTube.APIKey = %s, want yaml-key", cfg.YouTube.APIKey)
	}
	if cfg.AI.GeminiAPIKey != "env-gemini" {
		t.Errorf("environment should override yaml, got %s", cfg.AI.GeminiAPIKey)
	}
	if cfg.YouTube.ChannelID != DefaultChannelID {
		t.Errorf("ChannelID = %s, want default %s", cfg.YouTube.ChannelID, DefaultChannelID)
	}
	if cfg.YouTube.MaxResults != 12 {
		t.Errorf("MaxResults = %d, want 12", cfg.YouTube.MaxResults)
	}
	if cfg.Instagram.Timeout != 5*time.Second {
		t.Errorf("Instagram.Timeout = %v, want 5s", cfg.Instagram.Timeout)
	}
	if len(cfg.Instagram.Main) != 1 {
		t.Errorf("Instagram.Main = %v, want one entry", cfg.Instagram.Main)
	}
	if cfg.AI.Model != "gemini-2.5-flash" {
		t.Errorf("AI.Model = %s, want default", cfg.AI.Model)
	}
}

func TestLoadReportsAllMissingKeys(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "storage:\n  driver: mongo\n")
	t.Setenv("CONFIG_FILE", path)

	_, err := Load()
	if err == nil {
		t.Fatal("expected validation error")
	}

	for _, key := range []string{"YOUTUBE_API_KEY", "GEMINI_API_KEY", "ADMIN_EMAIL", "ADMIN_PASSWORD", "MONGO_URI"} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("error %q does not mention %s", err, key)
		}
	}
}

func TestLoadLegacyMongoURI(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "")
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("YOUTUBE_API_KEY", "k")
	t.Setenv("GEMINI_API_KEY", "g")
	t.Setenv("ADMIN_EMAIL", "a@example.com")
	t.Setenv("ADMIN_PASSWORD", "p")
	t.Setenv("MONGODB_URI", "mongodb://legacy:27017")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Storage.MongoURI != "mongodb://legacy:27017" {
		t.Errorf("MongoURI = %s, want legacy fallback", cfg.Storage.MongoURI)
	}
}

func TestLoadTokenFileReplacesAPIKey(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "storage:\n  driver: file\n")
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("YOUTUBE_TOKEN_FILE", filepath.Join(t.TempDir(), "token.json"))
	t.Setenv("GEMINI_API_KEY", "g")
	t.Setenv("ADMIN_EMAIL", "a@example.com")
	t.Setenv("ADMIN_PASSWORD", "p")

	if _, err := Load(); err != nil {
		t.Errorf("Load() error = %v, want token file accepted without API key", err)
	}
}

func TestLoadExplicitMissingFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))

	if _, err := Load(); err == nil {
		t.Error("expected error for explicitly configured missing file")
	}
}

func TestValidateUnknownDriver(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.Storage.Driver = "sqlite"

	err := cfg.validate()
	if err == nil || !strings.Contains(err.Error(), "unknown storage driver") {
		t.Errorf("validate() = %v, want unknown driver error", err)
	}
}

func TestEmailEnabled(t *testing.T) {
	tests := []struct {
		name string
		cfg  EmailConfig
		want bool
	}{
		{"Empty", EmailConfig{}, false},
		{"Server only", EmailConfig{SMTPServer: "smtp.example.com"}, false},
		{"Server and recipient", EmailConfig{SMTPServer: "smtp.example.com", ToEmail: "me@example.com"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.Enabled(); got != tt.want {
				t.Errorf("Enabled() = %v, want %v", got, tt.want)
			}
		})
	}
}
