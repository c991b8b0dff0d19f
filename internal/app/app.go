// Package app wires the gallery server together and runs it until the process
// is told to stop.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/korssa/gong34/internal/admin"
	"github.com/korssa/gong34/internal/cache"
	"github.com/korssa/gong34/internal/catalog"
	"github.com/korssa/gong34/internal/catalogstore"
	"github.com/korssa/gong34/internal/config"
	"github.com/korssa/gong34/internal/filter"
	"github.com/korssa/gong34/internal/httpapi"
	"github.com/korssa/gong34/internal/imagecheck"
	"github.com/korssa/gong34/internal/logging"
	"github.com/korssa/gong34/internal/s3x"
	"github.com/korssa/gong34/internal/storage"
	"github.com/korssa/gong34/internal/translate"
)

const httpClientTimeout = 30 * time.Second

type App struct {
	config *config.Config
	logger logging.Logger

	cacheDB   *sql.DB
	catalogDB *sql.DB

	catalog     *catalog.Synchronizer
	gate        *admin.Gate
	broadcaster *admin.Broadcaster
	unsubscribe func()
	server      *httpapi.Server
}

// NewApp builds every component from c. Nothing is served until Run.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	app := &App{config: c, logger: logger}

	var err error
	app.cacheDB, err = cache.Open(ctx, c.CacheDSN)
	if err != nil {
		return nil, fmt.Errorf("cache init error: %w", err)
	}
	repo := cache.NewSQLiteRepository(app.cacheDB)

	var s3Client *s3.Client
	if c.UsesBlobStorage() || c.CatalogBackend == config.CatalogBackendS3 {
		s3Client, err = s3x.NewClient(ctx, s3x.Options{
			Region:       c.S3Region,
			AccessKey:    c.S3RootUser,
			SecretKey:    c.S3RootPassword,
			BaseEndpoint: c.S3BaseEndpoint,
		})
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("s3 init error: %w", err)
		}
	}

	remote, err := app.catalogStore(ctx, s3Client)
	if err != nil {
		app.Close()
		return nil, err
	}

	httpClient := &http.Client{Timeout: httpClientTimeout}
	var blob storage.Blob
	if s3Client != nil {
		blob = storage.NewBlobBackend(s3Client, c.S3Bucket, c.S3PublicBaseURL, logger.With("module", "blob"))
	}
	local := storage.NewLocalBackend(c.LocalEndpoint, c.LocalUploadKey, httpClient, logger.With("module", "local_files"))
	files := storage.NewRouter(c.StorageType, blob, local, httpClient, logger.With("module", "storage"))

	images := imagecheck.New(files, c.ImageCheckTimeout, c.ImageCheckWorkers, logger.With("module", "imagecheck"))
	app.catalog = catalog.New(repo, remote, files, images, logger.With("module", "catalog"))

	app.broadcaster = admin.NewBroadcaster(logger.With("module", "visibility"))
	suppressor := translate.NewSuppressor(logger.With("module", "translate"))
	app.unsubscribe, err = app.broadcaster.Subscribe(suppressor.OnVisibility)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.gate = admin.NewGate(repo, app.broadcaster, c.UnlockTaps, c.UnlockWindow, logger.With("module", "gate"))

	disk, err := storage.NewDisk(c.UploadsDir)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("uploads dir: %w", err)
	}

	app.server = httpapi.NewServer(c.ListenAddr, httpapi.Deps{
		Catalog:   app.catalog,
		Engine:    filter.New(c.SortLocale),
		Auth:      admin.NewAuthenticator(c.SecretKey, c.AdminPasswordHash, c.AdminTokenValidity),
		Gate:      app.gate,
		Translate: suppressor,
		Disk:      disk,
		UploadKey: c.LocalUploadKey,
		MaxUpload: c.MaxUploadBytes,
	}, logger)

	return app, nil
}

func (app *App) catalogStore(ctx context.Context, client *s3.Client) (catalogstore.Store, error) {
	switch app.config.CatalogBackend {
	case config.CatalogBackendS3:
		return catalogstore.NewS3Store(client, app.config.S3Bucket, app.config.CatalogObjectKey), nil
	case config.CatalogBackendPostgres:
		db, err := catalogstore.OpenPostgres(ctx, app.config.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		app.catalogDB = db
		return catalogstore.NewPostgresStore(db, app.config.CatalogObjectKey), nil
	default:
		app.logger.Warn(ctx, "no remote catalog configured, changes stay local")
		return catalogstore.NopStore{}, nil
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run binds the listener, loads the catalog, seeds the gate and serves until
// a signal arrives or ctx is cancelled. The listener is bound before the
// catalog loads so that image probes against the local file endpoints reach
// this process.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	defer app.Close()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(cancelFunc)

	if err := app.gate.Init(ctx); err != nil {
		app.logger.Warn(ctx, "admin gate init failed, staying locked", "error", err)
	}

	ln, err := net.Listen("tcp", app.config.ListenAddr)
	if err != nil {
		return err
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- app.server.Serve(ctx, ln)
	}()

	// Local image probes go through the listener, so Load runs after it is
	// bound. Admin routes answer 503 until then.
	source := app.catalog.Load(ctx)
	app.logger.Info(ctx, "catalog ready", "source", source)
	app.server.SetReady()

	err = <-serveErr
	app.logger.Info(ctx, "App stopped")
	return err
}

// Close releases everything NewApp acquired. It drains the remote mirror
// before the databases go away. Safe to call more than once.
func (app *App) Close() {
	if app.unsubscribe != nil {
		app.unsubscribe()
		app.unsubscribe = nil
	}
	if app.broadcaster != nil {
		app.broadcaster.Close()
	}
	if app.catalog != nil {
		app.catalog.Close()
		m := app.catalog.Mirror()
		app.logger.Info(context.Background(), "remote mirror stopped", "saves", m.Saves(), "failures", m.Failures())
		app.catalog = nil
	}
	for _, db := range []*sql.DB{app.catalogDB, app.cacheDB} {
		if db != nil {
			if err := db.Close(); err != nil {
				app.logger.Warn(context.Background(), "db close failed", "error", err)
			}
		}
	}
	app.catalogDB, app.cacheDB = nil, nil
}
