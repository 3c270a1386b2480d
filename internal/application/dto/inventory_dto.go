package dto

import (
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/inventory-ledger/internal/application/inventory"
	"github.com/jhoicas/inventory-ledger/internal/domain"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// SubmitMovementRequest body para POST /api/inventory/movements.
// Es plano para todos los tipos; ToDomain conserva solo los campos del tipo indicado.
type SubmitMovementRequest struct {
	ItemID           string          `json:"item_id"`
	Type             string          `json:"type"` // INBOUND | OUTBOUND | TRANSFER | ADJUSTMENT
	Quantity         decimal.Decimal `json:"quantity"`
	Date             string          `json:"date"` // RFC3339 o YYYY-MM-DD
	ResponsibleParty string          `json:"responsible_party"`
	Notes            string          `json:"notes,omitempty"`

	SourceDocument      string `json:"source_document,omitempty"`
	DestinationDocument string `json:"destination_document,omitempty"`
	DepartmentOrProject string `json:"department_or_project,omitempty"`
	SourceLocation      string `json:"source_location,omitempty"`
	DestinationLocation string `json:"destination_location,omitempty"`
	AdjustmentDirection string `json:"adjustment_direction,omitempty"`
	AdjustmentReason    string `json:"adjustment_reason,omitempty"`
	CorrectsMovementID  string `json:"corrects_movement_id,omitempty"`
}

// ToDomain construye la variante del tipo indicado y descarta los demás campos.
// Un tipo desconocido deja Details en nil (el validador lo reporta).
// Solo falla si la fecha no tiene un formato reconocible.
func (r SubmitMovementRequest) ToDomain(recordedBy string) (entity.MovementRequest, error) {
	req := entity.MovementRequest{
		ItemID:           r.ItemID,
		Quantity:         r.Quantity,
		ResponsibleParty: r.ResponsibleParty,
		Notes:            r.Notes,
		RecordedBy:       recordedBy,
	}
	if strings.TrimSpace(r.Date) != "" {
		d, err := ParseDate(r.Date, false)
		if err != nil {
			return entity.MovementRequest{}, &domain.ValidationError{Issues: []domain.ValidationIssue{{
				Code: domain.IssueInvalidDate, Field: "date", Message: err.Error(),
			}}}
		}
		req.Date = d
	}

	switch entity.MovementType(strings.ToUpper(strings.TrimSpace(r.Type))) {
	case entity.MovementTypeInbound:
		req.Details = entity.InboundDetails{SourceDocument: r.SourceDocument, DestinationLocation: r.DestinationLocation}
	case entity.MovementTypeOutbound:
		req.Details = entity.OutboundDetails{
			DestinationDocument: r.DestinationDocument,
			DepartmentOrProject: r.DepartmentOrProject,
			SourceLocation:      r.SourceLocation,
		}
	case entity.MovementTypeTransfer:
		req.Details = entity.TransferDetails{SourceLocation: r.SourceLocation, DestinationLocation: r.DestinationLocation}
	case entity.MovementTypeAdjustment:
		req.Details = entity.AdjustmentDetails{
			Direction:          entity.AdjustmentDirection(strings.ToUpper(strings.TrimSpace(r.AdjustmentDirection))),
			Reason:             r.AdjustmentReason,
			CorrectsMovementID: r.CorrectsMovementID,
		}
	}
	return req, nil
}

// ParseDate acepta RFC3339 o YYYY-MM-DD (UTC). Con endOfDay, una fecha sin hora
// se toma como el último instante del día (límite superior inclusivo de un rango).
func ParseDate(s string, endOfDay bool) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("fecha %q inválida (RFC3339 o YYYY-MM-DD)", s)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

// MovementResponse movimiento registrado. Los campos de otros tipos se omiten.
type MovementResponse struct {
	ID                  string          `json:"id"`
	ItemID              string          `json:"item_id"`
	Type                string          `json:"type"`
	Quantity            decimal.Decimal `json:"quantity"`
	UnitOfMeasure       string          `json:"unit_of_measure"`
	ResultingQuantity   decimal.Decimal `json:"resulting_quantity"`
	Date                time.Time       `json:"date"`
	RecordedAt          time.Time       `json:"recorded_at"`
	ResponsibleParty    string          `json:"responsible_party"`
	Notes               string          `json:"notes,omitempty"`
	RecordedBy          string          `json:"recorded_by,omitempty"`
	SourceDocument      string          `json:"source_document,omitempty"`
	DestinationDocument string          `json:"destination_document,omitempty"`
	DepartmentOrProject string          `json:"department_or_project,omitempty"`
	SourceLocation      string          `json:"source_location,omitempty"`
	DestinationLocation string          `json:"destination_location,omitempty"`
	AdjustmentDirection string          `json:"adjustment_direction,omitempty"`
	AdjustmentReason    string          `json:"adjustment_reason,omitempty"`
	CorrectsMovementID  string          `json:"corrects_movement_id,omitempty"`
}

// FromMovement convierte la entidad en respuesta.
func FromMovement(m entity.Movement) MovementResponse {
	return MovementResponse{
		ID:                  m.ID,
		ItemID:              m.ItemID,
		Type:                string(m.Type),
		Quantity:            m.Quantity,
		UnitOfMeasure:       m.UnitOfMeasure,
		ResultingQuantity:   m.ResultingQuantity,
		Date:                m.Date,
		RecordedAt:          m.RecordedAt,
		ResponsibleParty:    m.ResponsibleParty,
		Notes:               m.Notes,
		RecordedBy:          m.RecordedBy,
		SourceDocument:      m.SourceDocument,
		DestinationDocument: m.DestinationDocument,
		DepartmentOrProject: m.DepartmentOrProject,
		SourceLocation:      m.SourceLocation,
		DestinationLocation: m.DestinationLocation,
		AdjustmentDirection: string(m.AdjustmentDirection),
		AdjustmentReason:    m.AdjustmentReason,
		CorrectsMovementID:  m.CorrectsMovementID,
	}
}

// MovementListResponse listado de movimientos (orden por fecha ascendente).
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Total int                `json:"total"`
}

// FromMovements convierte un listado.
func FromMovements(movs []entity.Movement) MovementListResponse {
	out := MovementListResponse{Items: make([]MovementResponse, 0, len(movs)), Total: len(movs)}
	for _, m := range movs {
		out.Items = append(out.Items, FromMovement(m))
	}
	return out
}

// ReconciliationResponse resultado de comparar el catálogo con el historial.
type ReconciliationResponse struct {
	ItemID           string          `json:"item_id"`
	StoredQuantity   decimal.Decimal `json:"stored_quantity"`
	ReplayedQuantity decimal.Decimal `json:"replayed_quantity"`
	Difference       decimal.Decimal `json:"difference"`
	StoredLocation   string          `json:"stored_location"`
	ReplayedLocation string          `json:"replayed_location,omitempty"`
	Movements        int             `json:"movements"`
	WentNegative     bool            `json:"went_negative"`
	Consistent       bool            `json:"consistent"`
}

// FromReconciliation convierte el reporte.
func FromReconciliation(r inventory.ReconciliationReport) ReconciliationResponse {
	return ReconciliationResponse{
		ItemID:           r.ItemID,
		StoredQuantity:   r.StoredQuantity,
		ReplayedQuantity: r.ReplayedQuantity,
		Difference:       r.Difference,
		StoredLocation:   r.StoredLocation,
		ReplayedLocation: r.ReplayedLocation,
		Movements:        r.Movements,
		WentNegative:     r.WentNegative,
		Consistent:       r.Consistent(),
	}
}
