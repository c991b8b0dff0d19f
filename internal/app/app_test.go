package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/korssa/gong34/internal/admin"
	"github.com/korssa/gong34/internal/common"
	"github.com/korssa/gong34/internal/config"
	"github.com/korssa/gong34/internal/logging"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	c := &config.Config{}
	c.LoadDefaults()
	c.ListenAddr = "127.0.0.1:0"
	c.CacheDSN = ":memory:"
	c.UploadsDir = t.TempDir()
	return c
}

func TestNewApp_RejectsInvalidConfig(t *testing.T) {
	c := testConfig(t)
	c.CatalogBackend = "floppy"

	_, err := NewApp(context.Background(), c, logging.Nop())
	assert.ErrorIs(t, err, common.ErrConfig)
}

func TestNewApp_PostgresUnreachable(t *testing.T) {
	c := testConfig(t)
	c.CatalogBackend = config.CatalogBackendPostgres
	c.DatabaseDSN = "postgres://u:p@127.0.0.1:1/gallery?sslmode=disable&connect_timeout=1"

	_, err := NewApp(context.Background(), c, logging.Nop())
	assert.Error(t, err)
}

func TestRun_LoadsAndStopsOnCancel(t *testing.T) {
	a, err := NewApp(context.Background(), testConfig(t), logging.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	require.Eventually(t, func() bool {
		return a.server.Ready()
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, admin.Locked, a.gate.State())
	assert.NotNil(t, a.catalog.Entries())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}

	a.Close()
}
