package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventory-ledger/internal/domain"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/jhoicas/inventory-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventory-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// KardexUseCase genera la tarjeta kardex (historial con saldo) de un ítem.
type KardexUseCase struct {
	catalog  repository.ItemCatalog
	ledger   repository.MovementLedger
	renderer KardexRenderer
}

// NewKardexUseCase construye el caso de uso.
func NewKardexUseCase(catalog repository.ItemCatalog, ledger repository.MovementLedger, renderer KardexRenderer) *KardexUseCase {
	return &KardexUseCase{catalog: catalog, ledger: ledger, renderer: renderer}
}

// Build arma la tarjeta. Las líneas siguen el orden de registro, así el saldo de cada una
// es el stock que quedó al registrarla aunque la fecha declarada sea anterior.
// El saldo se acumula desde cero con todo el historial y luego se recorta al rango pedido.
func (uc *KardexUseCase) Build(ctx context.Context, itemID string, r entity.DateRange) (*Kardex, error) {
	if err := checkRange(r); err != nil {
		return nil, err
	}
	item, err := uc.catalog.GetItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("consultar ítem %s: %w", itemID, err)
	}
	if item == nil {
		return nil, domain.ErrItemNotFound
	}
	movs, err := uc.ledger.QueryByItem(ctx, itemID, entity.DateRange{})
	if err != nil {
		return nil, fmt.Errorf("consultar historial del ítem %s: %w", itemID, err)
	}
	k := &Kardex{Item: *item, Range: r}
	balance := decimal.Zero
	for _, m := range inventory.RecordOrder(movs) {
		balance = inventory.ApplyDelta(balance, m)
		if r.Contains(m.Date) {
			k.Lines = append(k.Lines, KardexLine{Movement: m, Balance: balance})
		}
	}
	return k, nil
}

// GeneratePDF arma la tarjeta y la renderiza.
func (uc *KardexUseCase) GeneratePDF(ctx context.Context, itemID string, r entity.DateRange) ([]byte, error) {
	k, err := uc.Build(ctx, itemID, r)
	if err != nil {
		return nil, err
	}
	pdf, err := uc.renderer.Render(*k)
	if err != nil {
		return nil, fmt.Errorf("generar kardex del ítem %s: %w", itemID, err)
	}
	return pdf, nil
}
