package postgres

import (
	"context"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate ejecuta un comando de goose (up, down, status, version, ...) con las migraciones embebidas.
func Migrate(ctx context.Context, pool *pgxpool.Pool, command string, args ...string) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := goose.RunContext(ctx, command, db, "migrations", args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

// MigrateUp aplica todas las migraciones pendientes.
func MigrateUp(ctx context.Context, pool *pgxpool.Pool) error {
	return Migrate(ctx, pool, "up")
}
