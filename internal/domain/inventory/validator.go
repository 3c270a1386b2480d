package inventory

import (
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/inventory-ledger/internal/domain"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// QuantityScale y MaxQuantity acotan las cantidades a lo que cabe en NUMERIC(18,4).
const QuantityScale = 4

var MaxQuantity = decimal.New(1, 18-QuantityScale)

// ValidationContext estado leído antes de validar.
// Item es nil si el ítem no existe; CorrectedMovement es nil si no aplica o no se encontró.
type ValidationContext struct {
	Item              *entity.StockedItem
	CorrectedMovement *entity.Movement
	Now               time.Time
}

// Validate aplica las reglas universales y las del tipo, y devuelve la solicitud normalizada
// (textos recortados). Si algo falla devuelve *domain.ValidationError con todas las reglas incumplidas.
func Validate(req entity.MovementRequest, vc ValidationContext) (entity.MovementRequest, error) {
	out := req
	out.ItemID = strings.TrimSpace(req.ItemID)
	out.ResponsibleParty = strings.TrimSpace(req.ResponsibleParty)
	out.Notes = strings.TrimSpace(req.Notes)

	var issues []domain.ValidationIssue
	add := func(code domain.IssueCode, field, msg string) {
		issues = append(issues, domain.ValidationIssue{Code: code, Field: field, Message: msg})
	}
	missing := func(field string) {
		add(domain.IssueMissingField, field, fmt.Sprintf("el campo %s es obligatorio", field))
	}

	// Reglas universales
	if out.ItemID == "" {
		add(domain.IssueItemNotFound, "item_id", "item_id es obligatorio")
	} else if vc.Item == nil {
		add(domain.IssueItemNotFound, "item_id", fmt.Sprintf("el ítem %s no existe", out.ItemID))
	}
	switch q := out.Quantity; {
	case !q.GreaterThan(decimal.Zero):
		add(domain.IssueInvalidQuantity, "quantity",
			fmt.Sprintf("la cantidad debe ser mayor que cero (recibido %s)", q.String()))
	case !q.Equal(q.Truncate(QuantityScale)):
		add(domain.IssueInvalidQuantity, "quantity",
			fmt.Sprintf("la cantidad admite hasta %d decimales (recibido %s)", QuantityScale, q.String()))
	case q.GreaterThanOrEqual(MaxQuantity):
		add(domain.IssueInvalidQuantity, "quantity",
			fmt.Sprintf("la cantidad debe ser menor que %s (recibido %s)", MaxQuantity.String(), q.String()))
	}
	if out.Date.IsZero() {
		missing("date")
	} else if out.Date.After(vc.Now) {
		add(domain.IssueInvalidDate, "date",
			fmt.Sprintf("la fecha %s es posterior al momento del registro", out.Date.Format(time.RFC3339)))
	}
	if out.ResponsibleParty == "" {
		add(domain.IssueMissingResponsibleParty, "responsible_party", "el responsable es obligatorio")
	}

	// Reglas por tipo: solo se conservan los campos de la variante
	switch d := req.Details.(type) {
	case entity.InboundDetails:
		d.SourceDocument = strings.TrimSpace(d.SourceDocument)
		d.DestinationLocation = strings.TrimSpace(d.DestinationLocation)
		if d.SourceDocument == "" {
			missing("source_document")
		}
		if d.DestinationLocation == "" {
			missing("destination_location")
		}
		out.Details = d
	case entity.OutboundDetails:
		d.DestinationDocument = strings.TrimSpace(d.DestinationDocument)
		d.DepartmentOrProject = strings.TrimSpace(d.DepartmentOrProject)
		d.SourceLocation = strings.TrimSpace(d.SourceLocation)
		if d.DestinationDocument == "" {
			missing("destination_document")
		}
		if d.DepartmentOrProject == "" {
			missing("department_or_project")
		}
		if d.SourceLocation == "" {
			missing("source_location")
		}
		out.Details = d
	case entity.TransferDetails:
		d.SourceLocation = strings.TrimSpace(d.SourceLocation)
		d.DestinationLocation = strings.TrimSpace(d.DestinationLocation)
		if d.SourceLocation == "" {
			missing("source_location")
		}
		if d.DestinationLocation == "" {
			missing("destination_location")
		}
		if d.SourceLocation != "" && strings.EqualFold(d.SourceLocation, d.DestinationLocation) {
			add(domain.IssueSameLocationTransfer, "destination_location",
				fmt.Sprintf("el traslado tiene el mismo origen y destino (%s)", d.SourceLocation))
		}
		out.Details = d
	case entity.AdjustmentDetails:
		d.Reason = strings.TrimSpace(d.Reason)
		d.CorrectsMovementID = strings.TrimSpace(d.CorrectsMovementID)
		switch {
		case d.Direction == "":
			missing("adjustment_direction")
		case !d.Direction.Valid():
			add(domain.IssueInvalidAdjustmentDirection, "adjustment_direction",
				fmt.Sprintf("dirección de ajuste %q inválida (INCREASE o DECREASE)", string(d.Direction)))
		}
		if d.Reason == "" {
			missing("adjustment_reason")
		}
		if d.CorrectsMovementID != "" {
			cm := vc.CorrectedMovement
			if cm == nil || cm.ID != d.CorrectsMovementID || cm.ItemID != out.ItemID {
				add(domain.IssueCorrectedMovementNotFound, "corrects_movement_id",
					fmt.Sprintf("el movimiento %s no existe para el ítem %s", d.CorrectsMovementID, out.ItemID))
			}
		}
		out.Details = d
	default:
		add(domain.IssueInvalidMovementType, "type", "tipo de movimiento inválido (INBOUND, OUTBOUND, TRANSFER o ADJUSTMENT)")
	}

	if len(issues) > 0 {
		return entity.MovementRequest{}, &domain.ValidationError{Issues: issues}
	}
	return out, nil
}
