package config

import (
	"encoding/json"
	"os"

	"github.com/korssa/gong34/internal/flagx"
	"github.com/korssa/gong34/internal/timex"
)

// JsonConfig is the on-disk shape of the JSON config file. Intervals use
// timex.Duration so both "3s" and integer nanoseconds are accepted. Fields
// left out of the file keep their earlier value.
type JsonConfig struct {
	ListenAddr         string         `json:"listen_addr"`
	LogLevel           string         `json:"log_level"`
	StorageType        string         `json:"storage_type"`
	LocalEndpoint      string         `json:"local_endpoint"`
	LocalUploadKey     string         `json:"local_upload_key"`
	UploadsDir         string         `json:"uploads_dir"`
	MaxUploadBytes     int64          `json:"max_upload_bytes"`
	CacheDSN           string         `json:"cache_dsn"`
	CatalogBackend     string         `json:"catalog_backend"`
	CatalogObjectKey   string         `json:"catalog_object_key"`
	DatabaseDSN        string         `json:"database_dsn"`
	S3RootUser         string         `json:"s3_root_user"`
	S3RootPassword     string         `json:"s3_root_password"`
	S3Bucket           string         `json:"s3_bucket"`
	S3Region           string         `json:"s3_region"`
	S3BaseEndpoint     string         `json:"s3_base_endpoint"`
	S3PublicBaseURL    string         `json:"s3_public_base_url"`
	SecretKey          string         `json:"secret_key"`
	AdminPasswordHash  string         `json:"admin_password_hash"`
	AdminTokenValidity timex.Duration `json:"admin_token_validity"`
	UnlockTaps         int            `json:"unlock_taps"`
	UnlockWindow       timex.Duration `json:"unlock_window"`
	ImageCheckTimeout  timex.Duration `json:"image_check_timeout"`
	ImageCheckWorkers  int            `json:"image_check_workers"`
	SortLocale         string         `json:"sort_locale"`
}

// parseJson loads the file named by -c / -config into config. Without the
// flag nothing happens. An unreadable or malformed file panics: the server
// must not start on a config the operator did not intend.
func parseJson(config *Config) {
	path := flagx.ConfigFilePath()
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	c.applyTo(config)
}

func (c *JsonConfig) applyTo(config *Config) {
	str := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}

	str(&config.ListenAddr, c.ListenAddr)
	str(&config.LogLevel, c.LogLevel)
	str(&config.StorageType, c.StorageType)
	str(&config.LocalEndpoint, c.LocalEndpoint)
	str(&config.LocalUploadKey, c.LocalUploadKey)
	str(&config.UploadsDir, c.UploadsDir)
	str(&config.CacheDSN, c.CacheDSN)
	str(&config.CatalogBackend, c.CatalogBackend)
	str(&config.CatalogObjectKey, c.CatalogObjectKey)
	str(&config.DatabaseDSN, c.DatabaseDSN)
	str(&config.S3RootUser, c.S3RootUser)
	str(&config.S3RootPassword, c.S3RootPassword)
	str(&config.S3Bucket, c.S3Bucket)
	str(&config.S3Region, c.S3Region)
	str(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	str(&config.S3PublicBaseURL, c.S3PublicBaseURL)
	str(&config.SecretKey, c.SecretKey)
	str(&config.AdminPasswordHash, c.AdminPasswordHash)
	str(&config.SortLocale, c.SortLocale)

	if c.MaxUploadBytes > 0 {
		config.MaxUploadBytes = c.MaxUploadBytes
	}
	if c.AdminTokenValidity.Duration > 0 {
		config.AdminTokenValidity = c.AdminTokenValidity.Duration
	}
	if c.UnlockTaps > 0 {
		config.UnlockTaps = c.UnlockTaps
	}
	if c.UnlockWindow.Duration > 0 {
		config.UnlockWindow = c.UnlockWindow.Duration
	}
	if c.ImageCheckTimeout.Duration > 0 {
		config.ImageCheckTimeout = c.ImageCheckTimeout.Duration
	}
	if c.ImageCheckWorkers > 0 {
		config.ImageCheckWorkers = c.ImageCheckWorkers
	}
}
