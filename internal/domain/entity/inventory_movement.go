package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementType tipo de movimiento de inventario (conjunto cerrado).
type MovementType string

// Tipos de movimiento de inventario.
const (
	MovementTypeInbound    MovementType = "INBOUND"    // entrada
	MovementTypeOutbound   MovementType = "OUTBOUND"   // salida
	MovementTypeTransfer   MovementType = "TRANSFER"   // traslado de ubicación
	MovementTypeAdjustment MovementType = "ADJUSTMENT" // ajuste
)

// Valid indica si el tipo pertenece al conjunto cerrado.
func (t MovementType) Valid() bool {
	switch t {
	case MovementTypeInbound, MovementTypeOutbound, MovementTypeTransfer, MovementTypeAdjustment:
		return true
	}
	return false
}

// Label nombre legible del tipo, usado en mensajes de error para el operador.
func (t MovementType) Label() string {
	switch t {
	case MovementTypeInbound:
		return "entrada"
	case MovementTypeOutbound:
		return "salida"
	case MovementTypeTransfer:
		return "traslado"
	case MovementTypeAdjustment:
		return "ajuste"
	}
	return string(t)
}

// AdjustmentDirection sentido de un ajuste.
type AdjustmentDirection string

const (
	AdjustmentIncrease AdjustmentDirection = "INCREASE"
	AdjustmentDecrease AdjustmentDirection = "DECREASE"
)

// Valid indica si la dirección es INCREASE o DECREASE.
func (d AdjustmentDirection) Valid() bool {
	return d == AdjustmentIncrease || d == AdjustmentDecrease
}

// Movement registro inmutable de un cambio de cantidad o de ubicación.
// Quantity siempre es positiva; el sentido lo da Type (y AdjustmentDirection).
// Solo los campos del tipo correspondiente vienen diligenciados.
type Movement struct {
	ID                  string
	ItemID              string
	Type                MovementType
	Quantity            decimal.Decimal
	UnitOfMeasure       string          // copiada del ítem al momento del movimiento
	ResultingQuantity   decimal.Decimal // stock del ítem después de aplicar el movimiento
	Date                time.Time       // fecha del hecho (declarada por el operador)
	RecordedAt          time.Time       // marca del servidor al registrar
	ResponsibleParty    string
	Notes               string
	RecordedBy          string // usuario autenticado que envió el movimiento
	Sequence            int64  // orden de inserción en el ledger
	SourceDocument      string
	DestinationDocument string
	DepartmentOrProject string
	SourceLocation      string
	DestinationLocation string
	AdjustmentDirection AdjustmentDirection
	AdjustmentReason    string
	CorrectsMovementID  string
}

// IsDecrease indica si el movimiento resta stock.
func (m Movement) IsDecrease() bool {
	return m.Type == MovementTypeOutbound ||
		(m.Type == MovementTypeAdjustment && m.AdjustmentDirection == AdjustmentDecrease)
}

// IsIncrease indica si el movimiento suma stock.
func (m Movement) IsIncrease() bool {
	return m.Type == MovementTypeInbound ||
		(m.Type == MovementTypeAdjustment && m.AdjustmentDirection == AdjustmentIncrease)
}
