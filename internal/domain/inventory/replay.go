package inventory

import (
	"sort"

	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ReplayResult estado de un ítem reconstruido a partir de su historial.
type ReplayResult struct {
	Quantity     decimal.Decimal
	Location     string
	Movements    int
	WentNegative bool // algún paso intermedio quedó bajo cero (ledger inconsistente)
}

// Replay reconstruye cantidad y ubicación partiendo de cero en orden de registro.
// El stock se validó en ese orden, no por fecha declarada: una salida con fecha
// anterior a la entrada que la cubre es válida.
func Replay(movements []entity.Movement) ReplayResult {
	res := ReplayResult{Quantity: decimal.Zero}
	for _, m := range RecordOrder(movements) {
		res.Quantity = ApplyDelta(res.Quantity, m)
		if m.Type == entity.MovementTypeTransfer {
			res.Location = m.DestinationLocation
		}
		if res.Quantity.IsNegative() {
			res.WentNegative = true
		}
		res.Movements++
	}
	return res
}

// RecordOrder copia ordenada por Sequence. Los movimientos sin secuencia conservan su posición relativa.
func RecordOrder(movements []entity.Movement) []entity.Movement {
	out := make([]entity.Movement, len(movements))
	copy(out, movements)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out
}

// ApplyDelta suma o resta la cantidad del movimiento según su sentido.
func ApplyDelta(q decimal.Decimal, m entity.Movement) decimal.Decimal {
	switch {
	case m.IsIncrease():
		return q.Add(m.Quantity)
	case m.IsDecrease():
		return q.Sub(m.Quantity)
	}
	return q
}
