package config

import (
	"flag"
	"os"
	"time"

	"github.com/korssa/gong34/internal/flagx"
)

var ownFlags = []string{
	"-a", "-l", "-t", "-L", "-U", "-k", "-B", "-d",
	"-u", "-p", "-b", "-g", "-e", "-P", "-s", "-H", "-T", "-n", "-w", "-o",
}

// parseFlags populates Config fields from command-line flags.
//
//	-a string   HTTP bind address (e.g. ":8080")
//	-l string   log level
//	-t string   storage type ("vercel-blob" or "local")
//	-L string   base URL of the local upload endpoints
//	-U string   uploads directory for the local endpoints
//	-k string   SQLite DSN of the local cache
//	-B string   catalog backend (s3, postgres, none)
//	-d string   Postgres DSN
//	-u, -p      S3 root user / password
//	-b, -g      S3 bucket / region
//	-e string   S3 base endpoint
//	-P string   public base URL of the bucket
//	-s string   admin token secret key
//	-H string   bcrypt hash of the admin password
//	-T int      admin token validity, minutes
//	-n int      taps needed to unlock admin mode
//	-w int      unlock window, milliseconds
//	-o string   locale used for name sorting
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], ownFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.ListenAddr, "a", config.ListenAddr, "address and port to run server")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.StorageType, "t", config.StorageType, "storage type")
	fs.StringVar(&config.LocalEndpoint, "L", config.LocalEndpoint, "local upload endpoint base URL")
	fs.StringVar(&config.UploadsDir, "U", config.UploadsDir, "uploads directory")
	fs.StringVar(&config.CacheDSN, "k", config.CacheDSN, "local cache DSN")
	fs.StringVar(&config.CatalogBackend, "B", config.CatalogBackend, "catalog backend")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.S3PublicBaseURL, "P", config.S3PublicBaseURL, "S3 public base URL")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.AdminPasswordHash, "H", config.AdminPasswordHash, "admin password bcrypt hash")

	tokenValidity := fs.Int("T", int(config.AdminTokenValidity.Minutes()), "admin token validity (in minutes)")
	fs.IntVar(&config.UnlockTaps, "n", config.UnlockTaps, "taps needed to unlock admin mode")
	unlockWindow := fs.Int("w", int(config.UnlockWindow.Milliseconds()), "unlock window (in milliseconds)")
	fs.StringVar(&config.SortLocale, "o", config.SortLocale, "sort locale")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AdminTokenValidity = time.Duration(*tokenValidity) * time.Minute
	config.UnlockWindow = time.Duration(*unlockWindow) * time.Millisecond
}
