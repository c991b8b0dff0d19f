package catalogstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/korssa/gong34/internal/catalogstore/migrations"
	"github.com/korssa/gong34/internal/common"
	"github.com/korssa/gong34/internal/dbx"
	"github.com/korssa/gong34/internal/models"
)

type postgresDB interface {
	dbx.DBTX
	dbx.Beginner
}

// PostgresStore keeps the catalog as a named JSONB document. Each save bumps
// the document revision.
type PostgresStore struct {
	db   postgresDB
	name string
}

func NewPostgresStore(db postgresDB, name string) *PostgresStore {
	return &PostgresStore{db: db, name: name}
}

func (s *PostgresStore) Load(ctx context.Context) ([]models.CatalogEntry, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx, `SELECT body FROM catalog_documents WHERE name = $1`, s.name).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return []models.CatalogEntry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: select catalog document %q: %v", common.ErrSync, s.name, err)
	}
	return decodeCatalog(raw)
}

func (s *PostgresStore) Save(ctx context.Context, entries []models.CatalogEntry) error {
	raw, err := encodeCatalog(entries)
	if err != nil {
		return err
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var revision int64
		err := tx.QueryRowContext(ctx,
			`SELECT revision FROM catalog_documents WHERE name = $1 FOR UPDATE`, s.name).Scan(&revision)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			_, err = tx.ExecContext(ctx,
				`INSERT INTO catalog_documents (name, body, revision, updated_at) VALUES ($1, $2, 1, now())`,
				s.name, raw)
		case err == nil:
			_, err = tx.ExecContext(ctx,
				`UPDATE catalog_documents SET body = $2, revision = $3, updated_at = now() WHERE name = $1`,
				s.name, raw, revision+1)
		}
		if err != nil {
			return fmt.Errorf("%w: save catalog document %q: %v", common.ErrSync, s.name, err)
		}
		return nil
	})
}

// OpenPostgres opens dsn with the pgx driver and applies the catalog schema.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.Migrations)
	if err != nil {
		return fmt.Errorf("catalog migrations: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("catalog migrations: %w", err)
	}
	return nil
}
