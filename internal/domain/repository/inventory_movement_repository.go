package repository

import (
	"context"

	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
)

// MovementLedger define el puerto de persistencia del ledger de movimientos (solo inserción).
type MovementLedger interface {
	// Append asigna ID y RecordedAt si faltan y guarda el registro. Nunca sobrescribe:
	// repetir Append con el mismo ID no duplica ni modifica el registro existente.
	Append(ctx context.Context, movement *entity.Movement) error
	// GetByID devuelve el movimiento o (nil, nil) si no existe.
	GetByID(ctx context.Context, id string) (*entity.Movement, error)
	// QueryByItem movimientos de un ítem por fecha ascendente (empates por orden de inserción).
	QueryByItem(ctx context.Context, itemID string, dateRange entity.DateRange) ([]entity.Movement, error)
	// QueryAll igual orden que QueryByItem, para reportes.
	QueryAll(ctx context.Context, filter entity.MovementFilter) ([]entity.Movement, error)
}
