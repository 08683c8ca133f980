package config

import (
	"errors"
	"net/url"
	"time"

	"github.com/dmitrijs2005/studysync/internal/flagx"
)

// Config holds runtime settings for the studysync CLI.
type Config struct {
	APIBaseURL      string
	IdentityBaseURL string
	TokenBaseURL    string
	IdentityAPIKey  string
	RequestTimeout  time.Duration
	PageSize        int

	LocalDBPath   string
	DownloadDir   string
	DeviceKeyPath string

	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Prefix    string

	LogLevel   string
	LogBackend string
	Lang       string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:8000/api/v1/"
	c.IdentityBaseURL = "https://identitytoolkit.googleapis.com/v1"
	c.TokenBaseURL = "https://securetoken.googleapis.com/v1"
	c.RequestTimeout = 15 * time.Second
	c.PageSize = 20
	c.LocalDBPath = "studysync.db"
	c.DownloadDir = "downloads"
	c.DeviceKeyPath = "studysync.key"
	c.S3Region = "us-east-1"
	c.LogLevel = "info"
	c.LogBackend = "slog"
	c.Lang = "tr"
}

// UseS3 reports whether downloaded exams go to an S3 bucket instead of
// DownloadDir.
func (c *Config) UseS3() bool {
	return c.S3Bucket != ""
}

// Validate checks the values the client cannot start without.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("api_base_url must be an absolute URL")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("request_timeout must be positive")
	}
	if c.PageSize <= 0 {
		return errors.New("page_size must be positive")
	}
	if c.LocalDBPath == "" {
		return errors.New("local_db_path is required")
	}
	return nil
}

// LoadConfig constructs a Config from args (without the program name):
// defaults first, then the JSON file if one is given, then flags. Later
// sources take precedence over earlier ones.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJSON(cfg, flagx.ConfigFile(args)); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
