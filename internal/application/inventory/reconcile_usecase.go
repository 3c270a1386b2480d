package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventory-ledger/internal/domain"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/jhoicas/inventory-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventory-ledger/internal/domain/repository"
	"github.com/jhoicas/inventory-ledger/pkg/logger"
	"github.com/shopspring/decimal"
)

// ReconciliationReport comparación entre el stock guardado en el catálogo
// y el reconstruido desde el historial del ledger.
type ReconciliationReport struct {
	ItemID           string
	StoredQuantity   decimal.Decimal
	ReplayedQuantity decimal.Decimal
	Difference       decimal.Decimal // stored - replayed
	StoredLocation   string
	ReplayedLocation string // vacío si el historial no tiene traslados
	Movements        int
	WentNegative     bool
}

// Consistent indica si cantidad (y ubicación, cuando el historial la determina) coinciden.
func (r ReconciliationReport) Consistent() bool {
	if !r.Difference.IsZero() || r.WentNegative {
		return false
	}
	return r.ReplayedLocation == "" || r.ReplayedLocation == r.StoredLocation
}

// ReconcileUseCase conciliación del catálogo contra el ledger y re-registro de movimientos escalados.
type ReconcileUseCase struct {
	catalog repository.ItemCatalog
	ledger  repository.MovementLedger
	log     *logger.Logger
}

// NewReconcileUseCase construye el caso de uso.
func NewReconcileUseCase(catalog repository.ItemCatalog, ledger repository.MovementLedger, log *logger.Logger) *ReconcileUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &ReconcileUseCase{catalog: catalog, ledger: ledger, log: log.Component("reconcile")}
}

// Reconcile reconstruye el ítem desde cero con su historial y lo compara con el catálogo.
func (uc *ReconcileUseCase) Reconcile(ctx context.Context, itemID string) (*ReconciliationReport, error) {
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
	res := inventory.Replay(movs)
	rep := &ReconciliationReport{
		ItemID:           item.ID,
		StoredQuantity:   item.CurrentQuantity,
		ReplayedQuantity: res.Quantity,
		Difference:       item.CurrentQuantity.Sub(res.Quantity),
		StoredLocation:   item.Location,
		ReplayedLocation: res.Location,
		Movements:        res.Movements,
		WentNegative:     res.WentNegative,
	}
	if !rep.Consistent() {
		uc.log.Warn().
			Str("item_id", item.ID).
			Str("stored", rep.StoredQuantity.String()).
			Str("replayed", rep.ReplayedQuantity.String()).
			Msg("el catálogo no coincide con el historial")
	}
	return rep, nil
}

// ReappendMovement vuelve a registrar un movimiento escalado con su mismo ID.
// El ledger ignora IDs ya registrados, así que reintentar es seguro.
func (uc *ReconcileUseCase) ReappendMovement(ctx context.Context, mov entity.Movement) error {
	if mov.ID == "" || mov.ItemID == "" {
		return fmt.Errorf("%w: movimiento sin id o ítem", domain.ErrInvalidInput)
	}
	if err := uc.ledger.Append(ctx, &mov); err != nil {
		return fmt.Errorf("re-registrar movimiento %s: %w", mov.ID, err)
	}
	uc.log.Info().Str("movement_id", mov.ID).Str("item_id", mov.ItemID).Msg("movimiento conciliado en el ledger")
	return nil
}
