// Package migrations embeds the schema and applies it with goose.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed *.sql
var files embed.FS

// FS returns the embedded migration files.
func FS() fs.FS {
	return files
}

func NewProvider(db *sql.DB) (*goose.Provider, error) {
	return goose.NewProvider(goose.DialectPostgres, db, files)
}

func withProvider(pool *pgxpool.Pool, fn func(p *goose.Provider) error) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()
	p, err := NewProvider(db)
	if err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	return fn(p)
}

// Up applies every pending migration and returns the applied results.
func Up(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := UpResults(ctx, pool)
	return err
}

func UpResults(ctx context.Context, pool *pgxpool.Pool) ([]*goose.MigrationResult, error) {
	var out []*goose.MigrationResult
	err := withProvider(pool, func(p *goose.Provider) error {
		var err error
		out, err = p.Up(ctx)
		return err
	})
	return out, err
}

// Down rolls back the most recent migration.
func Down(ctx context.Context, pool *pgxpool.Pool) (*goose.MigrationResult, error) {
	var out *goose.MigrationResult
	err := withProvider(pool, func(p *goose.Provider) error {
		var err error
		out, err = p.Down(ctx)
		return err
	})
	return out, err
}

func Status(ctx context.Context, pool *pgxpool.Pool) ([]*goose.MigrationStatus, error) {
	var out []*goose.MigrationStatus
	err := withProvider(pool, func(p *goose.Provider) error {
		var err error
		out, err = p.Status(ctx)
		return err
	})
	return out, err
}
