// Package cli implements the gallery admin command line: password hashing
// for the server configuration and offline token issuing.
package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/korssa/gong34/internal/admin"
	"github.com/korssa/gong34/internal/cache"
	"github.com/korssa/gong34/internal/common"
	"github.com/korssa/gong34/internal/config"
	"github.com/korssa/gong34/internal/cryptox"
)

var ErrUnknownCommand = errors.New("unknown command")

const usage = `Usage: gallery-cli <command> [flags]

Commands:
  hash-password    read the admin password and print its bcrypt hash (ADMIN_PASSWORD_HASH)
  check-password   verify a password against the configured hash
  issue-token      print an admin token signed with the configured secret key
  cache-keys       list the keys held in the local cache
  cache-clear      remove everything from the local cache
  help             show this message
`

type App struct {
	config *config.Config
	out    io.Writer
}

func NewApp(c *config.Config, out io.Writer) *App {
	return &App{config: c, out: out}
}

// Run executes the command named by args[0].
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(a.out, usage)
		return nil
	}

	switch args[0] {
	case "hash-password":
		return a.hashPassword()
	case "check-password":
		return a.checkPassword()
	case "issue-token":
		return a.issueToken()
	case "cache-keys":
		return a.withCache(ctx, a.cacheKeys)
	case "cache-clear":
		return a.withCache(ctx, a.cacheClear)
	case "help", "-h", "--help":
		fmt.Fprint(a.out, usage)
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownCommand, args[0])
	}
}

func (a *App) hashPassword() error {
	pw, err := GetPassword(a.out, "Enter password: ")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)
	if len(pw) == 0 {
		return fmt.Errorf("%w: empty password", common.ErrValidation)
	}

	confirm, err := GetPassword(a.out, "Repeat password: ")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)
	if !bytes.Equal(pw, confirm) {
		return fmt.Errorf("%w: passwords do not match", common.ErrValidation)
	}

	hash, err := cryptox.HashPassword(pw)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.out, hash)
	return err
}

func (a *App) checkPassword() error {
	pw, err := GetPassword(a.out, "Enter password: ")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)

	if err := cryptox.CheckPassword(a.config.AdminPasswordHash, pw); err != nil {
		return common.ErrUnauthorized
	}
	_, err = fmt.Fprintln(a.out, "password OK")
	return err
}

func (a *App) issueToken() error {
	auth := admin.NewAuthenticator(a.config.SecretKey, a.config.AdminPasswordHash, a.config.AdminTokenValidity)
	token, id, err := auth.IssueToken(admin.Subject)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(a.out, "%s\nexpires: %s\n", token, id.ExpiresAt.UTC().Format(time.RFC3339))
	return err
}

func (a *App) withCache(ctx context.Context, fn func(context.Context, cache.Repository) error) error {
	db, err := cache.Open(ctx, a.config.CacheDSN)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer db.Close()
	return fn(ctx, cache.NewSQLiteRepository(db))
}

func (a *App) cacheKeys(ctx context.Context, repo cache.Repository) error {
	items, err := repo.List(ctx)
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(items))
	for k := range items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(a.out, "%-24s %d bytes\n", k, len(items[k]))
	}
	return nil
}

func (a *App) cacheClear(ctx context.Context, repo cache.Repository) error {
	if err := repo.Clear(ctx); err != nil {
		return err
	}
	_, err := fmt.Fprintln(a.out, "cache cleared")
	return err
}
