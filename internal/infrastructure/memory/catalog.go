package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jhoicas/inventory-ledger/internal/domain"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Catalog catálogo de ítems en memoria. Cada instancia es dueña de su propio mapa.
type Catalog struct {
	mu    sync.RWMutex
	items map[string]entity.StockedItem
}

// NewCatalog crea el catálogo con los ítems iniciales.
func NewCatalog(items ...entity.StockedItem) *Catalog {
	c := &Catalog{items: make(map[string]entity.StockedItem, len(items))}
	for _, it := range items {
		c.items[it.ID] = it
	}
	return c
}

// Put crea o reemplaza un ítem (alta desde el catálogo externo).
func (c *Catalog) Put(item entity.StockedItem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[item.ID] = item
}

// GetItem devuelve una copia del ítem o (nil, nil) si no existe.
func (c *Catalog) GetItem(_ context.Context, itemID string) (*entity.StockedItem, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	it, ok := c.items[itemID]
	if !ok {
		return nil, nil
	}
	return &it, nil
}

// UpdateQuantityAndLocation fija la cantidad y opcionalmente la ubicación.
func (c *Catalog) UpdateQuantityAndLocation(_ context.Context, itemID string, newQuantity decimal.Decimal, newLocation *string) error {
	if newQuantity.IsNegative() {
		return fmt.Errorf("%w: cantidad negativa %s para el ítem %s", domain.ErrInvalidQuantity, newQuantity.String(), itemID)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	it, ok := c.items[itemID]
	if !ok {
		return domain.ErrItemNotFound
	}
	it.CurrentQuantity = newQuantity
	if newLocation != nil {
		it.Location = *newLocation
	}
	it.UpdatedAt = time.Now()
	c.items[itemID] = it
	return nil
}
