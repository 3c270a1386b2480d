package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementRequest solicitud de movimiento: encabezado común más el detalle propio del tipo.
// Details es una unión cerrada; cada variante solo lleva sus propios campos.
type MovementRequest struct {
	ItemID           string
	Quantity         decimal.Decimal
	Date             time.Time
	ResponsibleParty string
	Notes            string
	RecordedBy       string
	Details          MovementDetails
}

// Type devuelve el tipo de la variante, o "" si no hay detalle.
func (r MovementRequest) Type() MovementType {
	if r.Details == nil {
		return ""
	}
	return r.Details.MovementType()
}

// MovementDetails detalle específico por tipo. Implementado solo por las variantes de este paquete.
type MovementDetails interface {
	MovementType() MovementType
	isMovementDetails()
}

// InboundDetails campos de una entrada.
type InboundDetails struct {
	SourceDocument      string
	DestinationLocation string
}

// OutboundDetails campos de una salida.
type OutboundDetails struct {
	DestinationDocument string
	DepartmentOrProject string
	SourceLocation      string
}

// TransferDetails campos de un traslado.
type TransferDetails struct {
	SourceLocation      string
	DestinationLocation string
}

// AdjustmentDetails campos de un ajuste. CorrectsMovementID es opcional y referencia
// el movimiento que este ajuste corrige.
type AdjustmentDetails struct {
	Direction          AdjustmentDirection
	Reason             string
	CorrectsMovementID string
}

func (InboundDetails) MovementType() MovementType    { return MovementTypeInbound }
func (OutboundDetails) MovementType() MovementType   { return MovementTypeOutbound }
func (TransferDetails) MovementType() MovementType   { return MovementTypeTransfer }
func (AdjustmentDetails) MovementType() MovementType { return MovementTypeAdjustment }

func (InboundDetails) isMovementDetails()    {}
func (OutboundDetails) isMovementDetails()   {}
func (TransferDetails) isMovementDetails()   {}
func (AdjustmentDetails) isMovementDetails() {}
