package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/inventory-ledger/internal/domain"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/jhoicas/inventory-ledger/internal/domain/repository"
)

// QueryUseCase lado de lectura del ledger para reportes e interfaz.
type QueryUseCase struct {
	ledger repository.MovementLedger
}

// NewQueryUseCase construye el caso de uso.
func NewQueryUseCase(ledger repository.MovementLedger) *QueryUseCase {
	return &QueryUseCase{ledger: ledger}
}

// QueryMovements movimientos que cumplen el filtro, por fecha ascendente y orden de inserción.
// El resultado es una copia: puede recorrerse cuantas veces se quiera.
func (uc *QueryUseCase) QueryMovements(ctx context.Context, filter entity.MovementFilter) ([]entity.Movement, error) {
	filter.ItemID = strings.TrimSpace(filter.ItemID)
	filter.ResponsibleParty = strings.TrimSpace(filter.ResponsibleParty)
	if err := checkFilter(filter); err != nil {
		return nil, err
	}
	if filter.ItemID != "" && filter.Type == "" && filter.ResponsibleParty == "" {
		return uc.QueryItemHistory(ctx, filter.ItemID, filter.Range)
	}
	movs, err := uc.ledger.QueryAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("consultar movimientos: %w", err)
	}
	return movs, nil
}

// QueryItemHistory historial completo de un ítem, opcionalmente acotado por fechas.
func (uc *QueryUseCase) QueryItemHistory(ctx context.Context, itemID string, r entity.DateRange) ([]entity.Movement, error) {
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return nil, fmt.Errorf("%w: item_id es obligatorio", domain.ErrInvalidInput)
	}
	if err := checkRange(r); err != nil {
		return nil, err
	}
	movs, err := uc.ledger.QueryByItem(ctx, itemID, r)
	if err != nil {
		return nil, fmt.Errorf("consultar historial del ítem %s: %w", itemID, err)
	}
	return movs, nil
}

func checkFilter(f entity.MovementFilter) error {
	if f.Type != "" && !f.Type.Valid() {
		return fmt.Errorf("%w: tipo de movimiento %q", domain.ErrInvalidMovementType, string(f.Type))
	}
	return checkRange(f.Range)
}

func checkRange(r entity.DateRange) error {
	if r.From != nil && r.To != nil && r.From.After(*r.To) {
		return fmt.Errorf("%w: el rango de fechas inicia después de terminar", domain.ErrInvalidInput)
	}
	return nil
}
