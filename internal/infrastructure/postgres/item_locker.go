package postgres

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/inventory-ledger/internal/application/inventory"
	"github.com/jhoicas/inventory-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/inventory-ledger/pkg/logger"
)

var _ inventory.ItemLocker = (*AdvisoryItemLocker)(nil)

// AdvisoryItemLocker candado por ítem con pg_advisory_lock de sesión.
// Serializa también entre réplicas de la API que comparten la base de datos.
//
// lockPool debe ser un pool exclusivo: la sesión que tiene el candado queda retenida
// hasta liberarlo, mientras el registro del movimiento toma conexiones del pool de datos.
// Si compartieran pool, N esperas del candado podrían agotarlo y dejar al dueño sin conexión.
// Dentro del proceso un candado local hace que cada ítem ocupe a lo sumo una sesión.
type AdvisoryItemLocker struct {
	lockPool *pgxpool.Pool
	local    *memory.KeyedLocker
	log      *logger.Logger
}

// NewAdvisoryItemLocker construye el locker sobre un pool dedicado a candados.
func NewAdvisoryItemLocker(lockPool *pgxpool.Pool, log *logger.Logger) *AdvisoryItemLocker {
	if log == nil {
		log = logger.Nop()
	}
	return &AdvisoryItemLocker{
		lockPool: lockPool,
		local:    memory.NewKeyedLocker(),
		log:      log.Component("item_locker"),
	}
}

// Lock espera el candado del ítem. Si ctx se cancela mientras espera, pgx cancela la consulta.
func (l *AdvisoryItemLocker) Lock(ctx context.Context, itemID string) (func(), error) {
	unlockLocal, err := l.local.Lock(ctx, itemID)
	if err != nil {
		return nil, err
	}
	conn, err := l.lockPool.Acquire(ctx)
	if err != nil {
		unlockLocal()
		return nil, fmt.Errorf("acquire conn: %w", err)
	}
	if _, err := conn.Exec(ctx, `SELECT pg_advisory_lock(hashtextextended($1, 0))`, itemID); err != nil {
		// La sesión puede quedar en estado dudoso tras una cancelación: no devolverla al pool.
		_ = conn.Conn().Close(context.Background())
		conn.Release()
		unlockLocal()
		return nil, fmt.Errorf("advisory lock %s: %w", itemID, err)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if _, err := conn.Exec(ctx, `SELECT pg_advisory_unlock(hashtextextended($1, 0))`, itemID); err != nil {
				l.log.Error().Err(err).Str("item_id", itemID).Msg("no se pudo liberar el candado; se cierra la sesión")
				_ = conn.Conn().Close(context.Background())
			}
			conn.Release()
			unlockLocal()
		})
	}, nil
}
