package postgres

import (
	"context"
	"fmt"
	"time"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/inventory-ledger/pkg/config"
)

const defaultMaxConns = 25

// PoolConfig arma la configuración del pool sin conectar.
// DATABASE_URL tiene prioridad sobre DB_HOST, DB_PORT, etc. appName se reporta como
// application_name (visible en pg_stat_activity y pg_locks).
func PoolConfig(cfg config.DBConfig, appName string) (*pgxpool.Config, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parse DSN: %w", err)
	}
	if appName != "" {
		poolConfig.ConnConfig.RuntimeParams["application_name"] = appName
	}

	maxConns := cfg.MaxConns
	if maxConns < 1 {
		maxConns = defaultMaxConns
	}
	poolConfig.MaxConns = int32(maxConns)
	poolConfig.MinConns = min(2, poolConfig.MaxConns)
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	// NUMERIC -> shopspring/decimal en todas las conexiones del pool.
	poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}
	return poolConfig, nil
}

// NewPool crea el pool y verifica la conexión.
func NewPool(ctx context.Context, cfg config.DBConfig, appName string) (*pgxpool.Pool, error) {
	poolConfig, err := PoolConfig(cfg, appName)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("crear pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping DB: %w", err)
	}
	return pool, nil
}
