package inventory

import (
	"github.com/jhoicas/inventory-ledger/internal/domain"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Effect efecto firmado de un movimiento validado sobre el ítem.
type Effect struct {
	Delta       decimal.Decimal
	NewLocation string // solo si el movimiento cambia la ubicación (traslado)
}

// EffectOf calcula el efecto según la tabla de tipos:
// entrada +q, salida -q, traslado 0 (cambia ubicación), ajuste ±q según dirección.
func EffectOf(req entity.MovementRequest) Effect {
	switch d := req.Details.(type) {
	case entity.InboundDetails:
		return Effect{Delta: req.Quantity}
	case entity.OutboundDetails:
		return Effect{Delta: req.Quantity.Neg()}
	case entity.TransferDetails:
		return Effect{Delta: decimal.Zero, NewLocation: d.DestinationLocation}
	case entity.AdjustmentDetails:
		if d.Direction == entity.AdjustmentDecrease {
			return Effect{Delta: req.Quantity.Neg()}
		}
		return Effect{Delta: req.Quantity}
	}
	return Effect{Delta: decimal.Zero}
}

// Outcome estado del ítem después de aplicar el movimiento.
type Outcome struct {
	Quantity decimal.Decimal
	Location string
}

// Apply verifica el stock disponible y calcula el nuevo estado sin modificar item.
// Para efectos negativos exige CurrentQuantity >= Quantity; dejar el stock exactamente en cero es válido.
func Apply(item entity.StockedItem, req entity.MovementRequest) (Outcome, error) {
	eff := EffectOf(req)
	if eff.Delta.IsNegative() && item.CurrentQuantity.LessThan(req.Quantity) {
		return Outcome{}, &domain.InsufficientStockError{
			ItemID:    item.ID,
			Type:      req.Type(),
			Available: item.CurrentQuantity,
			Requested: req.Quantity,
		}
	}
	out := Outcome{
		Quantity: item.CurrentQuantity.Add(eff.Delta),
		Location: item.Location,
	}
	if eff.NewLocation != "" {
		out.Location = eff.NewLocation
	}
	return out, nil
}
