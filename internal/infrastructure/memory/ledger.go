package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
)

// Ledger registro de movimientos en memoria, solo de inserción.
type Ledger struct {
	mu   sync.RWMutex
	movs []entity.Movement
	byID map[string]int
	seq  int64
}

// NewLedger crea un ledger vacío.
func NewLedger() *Ledger {
	return &Ledger{byID: make(map[string]int)}
}

// Append asigna ID, RecordedAt y Sequence si faltan y guarda una copia.
// Un ID ya registrado no se sobrescribe: la llamada es un no-op.
func (l *Ledger) Append(_ context.Context, mov *entity.Movement) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if mov.ID == "" {
		mov.ID = uuid.New().String()
	}
	if i, ok := l.byID[mov.ID]; ok {
		mov.Sequence = l.movs[i].Sequence
		return nil
	}
	if mov.RecordedAt.IsZero() {
		mov.RecordedAt = time.Now()
	}
	l.seq++
	mov.Sequence = l.seq
	l.byID[mov.ID] = len(l.movs)
	l.movs = append(l.movs, *mov)
	return nil
}

// GetByID devuelve el movimiento o (nil, nil) si no existe.
func (l *Ledger) GetByID(_ context.Context, id string) (*entity.Movement, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	i, ok := l.byID[id]
	if !ok {
		return nil, nil
	}
	m := l.movs[i]
	return &m, nil
}

// QueryByItem historial del ítem dentro del rango.
func (l *Ledger) QueryByItem(_ context.Context, itemID string, r entity.DateRange) ([]entity.Movement, error) {
	return l.query(entity.MovementFilter{ItemID: itemID, Range: r}), nil
}

// QueryAll movimientos que cumplen el filtro.
func (l *Ledger) QueryAll(_ context.Context, f entity.MovementFilter) ([]entity.Movement, error) {
	return l.query(f), nil
}

func (l *Ledger) query(f entity.MovementFilter) []entity.Movement {
	l.mu.RLock()
	out := make([]entity.Movement, 0)
	for _, m := range l.movs {
		if f.Matches(m) {
			out = append(out, m)
		}
	}
	l.mu.RUnlock()
	// movs ya está en orden de inserción; el sort estable conserva ese desempate.
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// Len cantidad de movimientos registrados.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.movs)
}
