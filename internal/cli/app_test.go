package cli

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/korssa/gong34/internal/admin"
	"github.com/korssa/gong34/internal/cache"
	"github.com/korssa/gong34/internal/common"
	"github.com/korssa/gong34/internal/config"
	"github.com/korssa/gong34/internal/cryptox"
)

// stubPasswords feeds answers to successive password prompts.
func stubPasswords(t *testing.T, answers ...string) {
	t.Helper()
	orig := readPassword
	t.Cleanup(func() { readPassword = orig })
	readPassword = func(int) ([]byte, error) {
		if len(answers) == 0 {
			return nil, errors.New("no more input")
		}
		a := answers[0]
		answers = answers[1:]
		return []byte(a), nil
	}
}

func newTestApp() (*App, *bytes.Buffer) {
	c := &config.Config{}
	c.LoadDefaults()
	var out bytes.Buffer
	return NewApp(c, &out), &out
}

func TestHashPassword(t *testing.T) {
	stubPasswords(t, "hunter2", "hunter2")
	a, out := newTestApp()

	require.NoError(t, a.Run(context.Background(), []string{"hash-password"}))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	hash := lines[len(lines)-1]
	assert.NoError(t, cryptox.CheckPassword(hash, []byte("hunter2")))
}

func TestHashPassword_Mismatch(t *testing.T) {
	stubPasswords(t, "one", "two")
	a, _ := newTestApp()

	err := a.Run(context.Background(), []string{"hash-password"})
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestHashPassword_Empty(t *testing.T) {
	stubPasswords(t, "")
	a, _ := newTestApp()

	err := a.Run(context.Background(), []string{"hash-password"})
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestCheckPassword(t *testing.T) {
	hash, err := cryptox.HashPassword([]byte("right"))
	require.NoError(t, err)

	stubPasswords(t, "right", "wrong")
	a, out := newTestApp()
	a.config.AdminPasswordHash = hash

	require.NoError(t, a.Run(context.Background(), []string{"check-password"}))
	assert.Contains(t, out.String(), "password OK")

	err = a.Run(context.Background(), []string{"check-password"})
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestIssueToken(t *testing.T) {
	a, out := newTestApp()

	require.NoError(t, a.Run(context.Background(), []string{"issue-token"}))

	token := strings.SplitN(out.String(), "\n", 2)[0]
	id, err := admin.NewAuthenticator(a.config.SecretKey, "", time.Hour).Verify(token)
	require.NoError(t, err)
	assert.Equal(t, admin.Subject, id.Subject)
}

func TestRun_UsageAndUnknown(t *testing.T) {
	a, out := newTestApp()

	require.NoError(t, a.Run(context.Background(), nil))
	assert.Contains(t, out.String(), "hash-password")

	err := a.Run(context.Background(), []string{"format-disk"})
	assert.ErrorIs(t, err, ErrUnknownCommand)
}

func TestCacheCommands(t *testing.T) {
	a, out := newTestApp()
	a.config.CacheDSN = "file:" + filepath.Join(t.TempDir(), "cache.db")

	ctx := context.Background()
	db, err := cache.Open(ctx, a.config.CacheDSN)
	require.NoError(t, err)
	repo := cache.NewSQLiteRepository(db)
	require.NoError(t, repo.Set(ctx, common.CacheKeyFeatured, []byte(`["a"]`)))
	require.NoError(t, repo.Set(ctx, common.CacheKeyCatalog, []byte(`[]`)))
	require.NoError(t, db.Close())

	require.NoError(t, a.Run(ctx, []string{"cache-keys"}))
	assert.Contains(t, out.String(), common.CacheKeyFeatured)
	assert.Contains(t, out.String(), common.CacheKeyCatalog)

	require.NoError(t, a.Run(ctx, []string{"cache-clear"}))
	out.Reset()
	require.NoError(t, a.Run(ctx, []string{"cache-keys"}))
	assert.Empty(t, out.String())
}
