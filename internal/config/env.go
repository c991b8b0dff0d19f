package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays values from the process environment. A .env file in the
// working directory is loaded first when present; variables already set in
// the environment win over the file.
//
// Recognised variables:
//
//	STORAGE_TYPE            "vercel-blob" or anything else for local
//	GALLERY_LISTEN_ADDR     bind address
//	GALLERY_SECRET_KEY      HMAC key for admin tokens
//	ADMIN_PASSWORD_HASH     bcrypt hash of the admin password
//	CATALOG_BACKEND         s3 | postgres | none
//	DATABASE_DSN            Postgres DSN for the catalog document
//	CACHE_DSN               SQLite DSN for the local cache
//	S3_ROOT_USER, S3_ROOT_PASSWORD, S3_BUCKET, S3_REGION,
//	S3_BASE_ENDPOINT, S3_PUBLIC_BASE_URL
//	LOCAL_UPLOAD_KEY        shared key for the local upload endpoints
//	ADMIN_UNLOCK_TAPS       integer
//	ADMIN_UNLOCK_WINDOW     Go duration, e.g. "3s"
func parseEnv(config *Config) {
	_ = godotenv.Load()

	setString(&config.StorageType, "STORAGE_TYPE")
	setString(&config.ListenAddr, "GALLERY_LISTEN_ADDR")
	setString(&config.SecretKey, "GALLERY_SECRET_KEY")
	setString(&config.AdminPasswordHash, "ADMIN_PASSWORD_HASH")
	setString(&config.CatalogBackend, "CATALOG_BACKEND")
	setString(&config.DatabaseDSN, "DATABASE_DSN")
	setString(&config.CacheDSN, "CACHE_DSN")
	setString(&config.S3RootUser, "S3_ROOT_USER")
	setString(&config.S3RootPassword, "S3_ROOT_PASSWORD")
	setString(&config.S3Bucket, "S3_BUCKET")
	setString(&config.S3Region, "S3_REGION")
	setString(&config.S3BaseEndpoint, "S3_BASE_ENDPOINT")
	setString(&config.S3PublicBaseURL, "S3_PUBLIC_BASE_URL")
	setString(&config.LocalUploadKey, "LOCAL_UPLOAD_KEY")

	if v, ok := os.LookupEnv("ADMIN_UNLOCK_TAPS"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			config.UnlockTaps = n
		}
	}
	if v, ok := os.LookupEnv("ADMIN_UNLOCK_WINDOW"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			config.UnlockWindow = d
		}
	}
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}
