package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/studysync/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer
// fields tell a missing key apart from an explicit zero value.
type JsonConfig struct {
	APIBaseURL      *string         `json:"api_base_url"`
	IdentityBaseURL *string         `json:"identity_base_url"`
	TokenBaseURL    *string         `json:"token_base_url"`
	IdentityAPIKey  *string         `json:"identity_api_key"`
	RequestTimeout  *timex.Duration `json:"request_timeout"`
	PageSize        *int            `json:"page_size"`

	LocalDBPath   *string `json:"local_db_path"`
	DownloadDir   *string `json:"download_dir"`
	DeviceKeyPath *string `json:"device_key_path"`

	S3Bucket    *string `json:"s3_bucket"`
	S3Region    *string `json:"s3_region"`
	S3Endpoint  *string `json:"s3_endpoint"`
	S3AccessKey *string `json:"s3_access_key"`
	S3SecretKey *string `json:"s3_secret_key"`
	S3Prefix    *string `json:"s3_prefix"`

	LogLevel   *string `json:"log_level"`
	LogBackend *string `json:"log_backend"`
	Lang       *string `json:"lang"`
}

// parseJSON overlays cfg with the values present in the JSON file at path.
// An empty path loads nothing.
func parseJSON(cfg *Config, path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&cfg.APIBaseURL, jc.APIBaseURL)
	setString(&cfg.IdentityBaseURL, jc.IdentityBaseURL)
	setString(&cfg.TokenBaseURL, jc.TokenBaseURL)
	setString(&cfg.IdentityAPIKey, jc.IdentityAPIKey)
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.PageSize != nil {
		cfg.PageSize = *jc.PageSize
	}

	setString(&cfg.LocalDBPath, jc.LocalDBPath)
	setString(&cfg.DownloadDir, jc.DownloadDir)
	setString(&cfg.DeviceKeyPath, jc.DeviceKeyPath)

	setString(&cfg.S3Bucket, jc.S3Bucket)
	setString(&cfg.S3Region, jc.S3Region)
	setString(&cfg.S3Endpoint, jc.S3Endpoint)
	setString(&cfg.S3AccessKey, jc.S3AccessKey)
	setString(&cfg.S3SecretKey, jc.S3SecretKey)
	setString(&cfg.S3Prefix, jc.S3Prefix)

	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.LogBackend, jc.LogBackend)
	setString(&cfg.Lang, jc.Lang)
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
