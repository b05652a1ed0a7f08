package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var embedded embed.FS

// MigrationsFS returns the embedded goose migrations rooted at their directory.
func MigrationsFS() (fs.FS, error) {
	return fs.Sub(embedded, "migrations")
}

// NewMigrator builds a goose provider over the embedded migrations.
func NewMigrator(db *sqlx.DB) (*goose.Provider, error) {
	fsys, err := MigrationsFS()
	if err != nil {
		return nil, fmt.Errorf("open migrations: %w", err)
	}
	p, err := goose.NewProvider(goose.DialectPostgres, db.DB, fsys)
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return p, nil
}

// Migrate applies every pending migration and reports how many ran.
func Migrate(ctx context.Context, db *sqlx.DB, log *zap.SugaredLogger) (int, error) {
	p, err := NewMigrator(db)
	if err != nil {
		return 0, err
	}
	results, err := p.Up(ctx)
	if err != nil {
		return len(results), fmt.Errorf("apply migrations: %w", err)
	}
	for _, r := range results {
		log.Infow("applied migration", "version", r.Source.Version, "file", r.Source.Path, "took", r.Duration)
	}
	return len(results), nil
}
