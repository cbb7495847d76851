package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultChannelID is the creator's YouTube channel. It is the only publisher
// whose uploads are ever stored or served.
const DefaultChannelID = "UCDryEWPwjZFKL3CtAyqsxDA"

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	YouTube   YouTubeConfig   `yaml:"youtube"`
	Instagram InstagramConfig `yaml:"instagram"`
	AI        AIConfig        `yaml:"ai"`
	Storage   StorageConfig   `yaml:"storage"`
	Redis     RedisConfig     `yaml:"redis"`
	Email     EmailConfig     `yaml:"email"`
	Admin     AdminConfig     `yaml:"admin"`
	Schedule  ScheduleConfig  `yaml:"schedule"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type ServerConfig struct {
	Address       string `yaml:"address" env:"ADDRESS"`
	GinMode       string `yaml:"gin_mode" env:"GIN_MODE"`
	SecureCookies bool   `yaml:"secure_cookies" env:"SECURE_COOKIES"`
}

type YouTubeConfig struct {
	APIKey     string `yaml:"api_key" env:"YOUTUBE_API_KEY"`
	ChannelID  string `yaml:"channel_id" env:"YOUTUBE_CHANNEL_ID"`
	MaxResults int64  `yaml:"max_results"`
	// Endpoint overrides the Data API base URL (proxies, tests).
	Endpoint string `yaml:"endpoint"`
	// When TokenFile is set the OAuth token is used instead of the API key.
	TokenFile    string `yaml:"token_file" env:"YOUTUBE_TOKEN_FILE"`
	ClientID     string `yaml:"client_id" env:"GOOGLE_CLIENT_ID"`
	ClientSecret string `yaml:"client_secret" env:"GOOGLE_CLIENT_SECRET"`
}

type InstagramConfig struct {
	OEmbedURL string        `yaml:"oembed_url"`
	UserAgent string        `yaml:"user_agent"`
	Timeout   time.Duration `yaml:"timeout"`
	Main      []string      `yaml:"main"`
	Art       []string      `yaml:"art"`
}

type AIConfig struct {
	GeminiAPIKey string `yaml:"gemini_api_key" env:"GEMINI_API_KEY"`
	Model        string `yaml:"model" env:"GEMINI_MODEL"`
}

type StorageConfig struct {
	Driver   string `yaml:"driver" env:"STORAGE_DRIVER"` // mongo or file
	MongoURI string `yaml:"mongo_uri" env:"MONGO_URI"`
	Database string `yaml:"database" env:"MONGO_DB"`
	DataDir  string `yaml:"data_dir" env:"DATA_DIR"`
}

type RedisConfig struct {
	Addr     string        `yaml:"addr" env:"REDIS_ADDR"`
	Password string        `yaml:"password" env:"REDIS_PASSWORD"`
	TTL      time.Duration `yaml:"ttl"`
}

type EmailConfig struct {
	SMTPServer string `yaml:"smtp_server" env:"SMTP_HOST"`
	SMTPPort   int    `yaml:"smtp_port" env:"SMTP_PORT"`
	Username   string `yaml:"username" env:"SMTP_USER"`
	Password   string `yaml:"password" env:"SMTP_PASS"`
	FromEmail  string `yaml:"from_email" env:"SMTP_FROM"`
	ToEmail    string `yaml:"to_email" env:"CONTACT_EMAIL"`
}

// Enabled reports whether contact notifications can be sent.
func (e EmailConfig) Enabled() bool {
	return e.SMTPServer != "" && e.ToEmail != ""
}

type AdminConfig struct {
	Email      string        `yaml:"email" env:"ADMIN_EMAIL"`
	Password   string        `yaml:"password" env:"ADMIN_PASSWORD"`
	CronSecret string        `yaml:"cron_secret" env:"CRON_SECRET"`
	SessionTTL time.Duration `yaml:"session_ttl"`
}

type ScheduleConfig struct {
	YouTube string `yaml:"youtube"`
	Profile string `yaml:"profile"`
}

type LoggingConfig struct {
	Level      string `yaml:"level" env:"LOG_LEVEL"`
	Format     string `yaml:"format" env:"LOG_FORMAT"` // text or json
	File       string `yaml:"file" env:"LOG_FILE"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	configFile := os.Getenv("CONFIG_FILE")
	explicit := configFile != ""
	if !explicit {
		configFile = "config.yaml"
	}

	var cfg Config
	data, err := os.ReadFile(configFile)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", configFile, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// environment-only deployment
	default:
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if cfg.Storage.MongoURI == "" {
		if legacy := os.Getenv("MONGODB_URI"); legacy != "" {
			fmt.Fprintln(os.Stderr, "WARNING: Using deprecated MONGODB_URI. Please migrate to MONGO_URI.")
			cfg.Storage.MongoURI = legacy
		}
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = ":8080"
	}
	if c.YouTube.ChannelID == "" {
		c.YouTube.ChannelID = DefaultChannelID
	}
	if c.YouTube.MaxResults <= 0 {
		c.YouTube.MaxResults = 12
	}
	if c.Instagram.OEmbedURL == "" {
		c.Instagram.OEmbedURL = "https://api.instagram.com/oembed"
	}
	if c.Instagram.UserAgent == "" {
		c.Instagram.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	}
	if c.Instagram.Timeout <= 0 {
		c.Instagram.Timeout = 10 * time.Second
	}
	if c.AI.Model == "" {
		c.AI.Model = "gemini-2.5-flash"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "mongo"
	}
	if c.Storage.Database == "" {
		c.Storage.Database = "portfolio"
	}
	if c.Storage.DataDir == "" {
		c.Storage.DataDir = "data"
	}
	if c.Redis.TTL <= 0 {
		c.Redis.TTL = 24 * time.Hour
	}
	if c.Email.SMTPPort == 0 {
		c.Email.SMTPPort = 587
	}
	if c.Email.FromEmail == "" {
		c.Email.FromEmail = c.Email.Username
	}
	if c.Admin.SessionTTL <= 0 {
		c.Admin.SessionTTL = 7 * 24 * time.Hour
	}
	if c.Schedule.YouTube == "" {
		c.Schedule.YouTube = "0 0 6 * * *" // Daily at 6 AM
	}
	if c.Schedule.Profile == "" {
		c.Schedule.Profile = "0 0 7 * * 1" // Mondays at 7 AM
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Logging.MaxSizeMB == 0 {
		c.Logging.MaxSizeMB = 10
	}
	if c.Logging.MaxBackups == 0 {
		c.Logging.MaxBackups = 5
	}
}

// validate reports every missing required setting at once.
func (c *Config) validate() error {
	var missing []string

	if c.YouTube.APIKey == "" && c.YouTube.TokenFile == "" {
		missing = append(missing, "YOUTUBE_API_KEY (youtube.api_key) or YOUTUBE_TOKEN_FILE (youtube.token_file)")
	}
	if c.YouTube.ChannelID == "" {
		missing = append(missing, "YOUTUBE_CHANNEL_ID (youtube.channel_id)")
	}
	if c.AI.GeminiAPIKey == "" {
		missing = append(missing, "GEMINI_API_KEY (ai.gemini_api_key)")
	}
	if c.Admin.Email == "" {
		missing = append(missing, "ADMIN_EMAIL (admin.email)")
	}
	if c.Admin.Password == "" {
		missing = append(missing, "ADMIN_PASSWORD (admin.password)")
	}

	switch c.Storage.Driver {
	case "mongo":
		if c.Storage.MongoURI == "" {
			missing = append(missing, "MONGO_URI (storage.mongo_uri)")
		}
	case "file":
	default:
		return fmt.Errorf("unknown storage driver %q (want mongo or file)", c.Storage.Driver)
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}
	return nil
}
