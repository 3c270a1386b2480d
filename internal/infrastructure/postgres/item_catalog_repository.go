package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/inventory-ledger/internal/domain"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/jhoicas/inventory-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.ItemCatalog = (*ItemCatalogRepo)(nil)

// ItemCatalogRepo catálogo de ítems sobre la tabla stocked_items (usable con pool o tx).
type ItemCatalogRepo struct {
	q Querier
}

// NewItemCatalogRepository construye el adaptador. Pasar pool o tx (Querier).
func NewItemCatalogRepository(q Querier) *ItemCatalogRepo {
	return &ItemCatalogRepo{q: q}
}

// GetItem obtiene un ítem por ID; (nil, nil) si no existe.
func (r *ItemCatalogRepo) GetItem(ctx context.Context, itemID string) (*entity.StockedItem, error) {
	query := `
		SELECT id, unit_of_measure, current_quantity, location, updated_at
		FROM stocked_items WHERE id = $1`
	var it entity.StockedItem
	err := r.q.QueryRow(ctx, query, itemID).Scan(&it.ID, &it.UnitOfMeasure, &it.CurrentQuantity, &it.Location, &it.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stocked item: %w", err)
	}
	return &it, nil
}

// UpdateQuantityAndLocation fija la cantidad y, si newLocation no es nil, la ubicación.
func (r *ItemCatalogRepo) UpdateQuantityAndLocation(ctx context.Context, itemID string, newQuantity decimal.Decimal, newLocation *string) error {
	query := `
		UPDATE stocked_items
		SET current_quantity = $2, location = COALESCE($3, location), updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, itemID, newQuantity, newLocation)
	if err != nil {
		if isCheckViolation(err) {
			return fmt.Errorf("%w: cantidad negativa %s para el ítem %s", domain.ErrInvalidQuantity, newQuantity.String(), itemID)
		}
		return fmt.Errorf("update stocked item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

// Register da de alta un ítem con stock cero. Si el ID ya existe no lo toca y devuelve false.
func (r *ItemCatalogRepo) Register(ctx context.Context, it entity.StockedItem) (bool, error) {
	query := `
		INSERT INTO stocked_items (id, unit_of_measure, current_quantity, location, updated_at)
		VALUES ($1, $2, 0, $3, now())
		ON CONFLICT (id) DO NOTHING`
	tag, err := r.q.Exec(ctx, query, it.ID, it.UnitOfMeasure, it.Location)
	if err != nil {
		return false, fmt.Errorf("registrar ítem %s: %w", it.ID, err)
	}
	return tag.RowsAffected() == 1, nil
}

// Upsert crea o reemplaza un ítem (alta desde el catálogo externo).
func (r *ItemCatalogRepo) Upsert(ctx context.Context, it entity.StockedItem) error {
	query := `
		INSERT INTO stocked_items (id, unit_of_measure, current_quantity, location, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (id) DO UPDATE SET
			unit_of_measure = EXCLUDED.unit_of_measure,
			current_quantity = EXCLUDED.current_quantity,
			location = EXCLUDED.location,
			updated_at = now()`
	if _, err := r.q.Exec(ctx, query, it.ID, it.UnitOfMeasure, it.CurrentQuantity, it.Location); err != nil {
		return fmt.Errorf("upsert stocked item: %w", err)
	}
	return nil
}
