package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Tipos de tarea.
const (
	TypeLedgerAppendReconcile = "ledger:append_reconcile"
)

// QueueReconcile cola de las tareas de conciliación.
const QueueReconcile = "reconcile"

// AppendReconcilePayload movimiento que modificó el stock sin quedar en el ledger.
type AppendReconcilePayload struct {
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
	Cause               string          `json:"cause,omitempty"`
}

// PayloadFromMovement arma el payload.
func PayloadFromMovement(m entity.Movement, cause error) AppendReconcilePayload {
	p := AppendReconcilePayload{
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
	if cause != nil {
		p.Cause = cause.Error()
	}
	return p
}

// Movement reconstruye el registro original (mismo ID y marca de registro).
func (p AppendReconcilePayload) Movement() entity.Movement {
	return entity.Movement{
		ID:                  p.ID,
		ItemID:              p.ItemID,
		Type:                entity.MovementType(p.Type),
		Quantity:            p.Quantity,
		UnitOfMeasure:       p.UnitOfMeasure,
		ResultingQuantity:   p.ResultingQuantity,
		Date:                p.Date,
		RecordedAt:          p.RecordedAt,
		ResponsibleParty:    p.ResponsibleParty,
		Notes:               p.Notes,
		RecordedBy:          p.RecordedBy,
		SourceDocument:      p.SourceDocument,
		DestinationDocument: p.DestinationDocument,
		DepartmentOrProject: p.DepartmentOrProject,
		SourceLocation:      p.SourceLocation,
		DestinationLocation: p.DestinationLocation,
		AdjustmentDirection: entity.AdjustmentDirection(p.AdjustmentDirection),
		AdjustmentReason:    p.AdjustmentReason,
		CorrectsMovementID:  p.CorrectsMovementID,
	}
}

// NewAppendReconcileTask crea la tarea de conciliación del movimiento.
func NewAppendReconcileTask(m entity.Movement, cause error) (*asynq.Task, error) {
	b, err := json.Marshal(PayloadFromMovement(m, cause))
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return asynq.NewTask(TypeLedgerAppendReconcile, b), nil
}
