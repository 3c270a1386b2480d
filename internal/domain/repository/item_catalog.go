package repository

import (
	"context"

	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ItemCatalog puerto hacia el catálogo externo de ítems. Es el único acceso de escritura
// que el ledger necesita sobre el catálogo.
type ItemCatalog interface {
	// GetItem devuelve el ítem o (nil, nil) si no existe.
	GetItem(ctx context.Context, itemID string) (*entity.StockedItem, error)
	// UpdateQuantityAndLocation fija la cantidad y, si newLocation no es nil, la ubicación.
	UpdateQuantityAndLocation(ctx context.Context, itemID string, newQuantity decimal.Decimal, newLocation *string) error
}
