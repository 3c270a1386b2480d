package inventory

import (
	"context"

	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ItemLocker serializa las operaciones sobre un mismo ítem.
// Lock bloquea hasta obtener el candado del ítem o hasta que ctx se cancele;
// la función devuelta lo libera y es segura de llamar una sola vez.
// Ítems distintos no comparten candado.
type ItemLocker interface {
	Lock(ctx context.Context, itemID string) (func(), error)
}

// Escalator notifica un movimiento que modificó el stock pero no quedó en el ledger,
// para conciliación posterior.
type Escalator interface {
	Escalate(ctx context.Context, mov entity.Movement, cause error) error
}

// KardexLine fila de la tarjeta kardex: movimiento y saldo acumulado tras aplicarlo.
type KardexLine struct {
	Movement entity.Movement
	Balance  decimal.Decimal
}

// Kardex tarjeta de movimientos de un ítem.
type Kardex struct {
	Item  entity.StockedItem
	Range entity.DateRange
	Lines []KardexLine
}

// KardexRenderer genera el documento (PDF) de la tarjeta kardex.
type KardexRenderer interface {
	Render(k Kardex) ([]byte, error)
}
