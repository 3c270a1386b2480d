package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrInvalidInput               = errors.New("entrada inválida")
	ErrItemNotFound               = errors.New("ítem no encontrado")
	ErrInvalidQuantity            = errors.New("la cantidad debe ser mayor que cero")
	ErrInvalidDate                = errors.New("la fecha no puede ser posterior al momento del registro")
	ErrMissingResponsibleParty    = errors.New("el responsable es obligatorio")
	ErrMissingField               = errors.New("campo obligatorio ausente")
	ErrSameLocationTransfer       = errors.New("la ubicación de origen y destino del traslado es la misma")
	ErrInvalidMovementType        = errors.New("tipo de movimiento inválido")
	ErrInvalidAdjustmentDirection = errors.New("dirección de ajuste inválida")
	ErrCorrectedMovementNotFound  = errors.New("el movimiento corregido no existe para este ítem")
	ErrInsufficientStock          = errors.New("stock insuficiente")
	ErrPersistence                = errors.New("stock modificado sin registro en el ledger")
)

// IssueCode código estable de una regla de validación incumplida.
type IssueCode string

const (
	IssueItemNotFound               IssueCode = "ITEM_NOT_FOUND"
	IssueInvalidQuantity            IssueCode = "INVALID_QUANTITY"
	IssueInvalidDate                IssueCode = "INVALID_DATE"
	IssueMissingResponsibleParty    IssueCode = "MISSING_RESPONSIBLE_PARTY"
	IssueMissingField               IssueCode = "MISSING_FIELD"
	IssueSameLocationTransfer       IssueCode = "SAME_LOCATION_TRANSFER"
	IssueInvalidMovementType        IssueCode = "INVALID_MOVEMENT_TYPE"
	IssueInvalidAdjustmentDirection IssueCode = "INVALID_ADJUSTMENT_DIRECTION"
	IssueCorrectedMovementNotFound  IssueCode = "CORRECTED_MOVEMENT_NOT_FOUND"
)

var issueSentinels = map[IssueCode]error{
	IssueItemNotFound:               ErrItemNotFound,
	IssueInvalidQuantity:            ErrInvalidQuantity,
	IssueInvalidDate:                ErrInvalidDate,
	IssueMissingResponsibleParty:    ErrMissingResponsibleParty,
	IssueMissingField:               ErrMissingField,
	IssueSameLocationTransfer:       ErrSameLocationTransfer,
	IssueInvalidMovementType:        ErrInvalidMovementType,
	IssueInvalidAdjustmentDirection: ErrInvalidAdjustmentDirection,
	IssueCorrectedMovementNotFound:  ErrCorrectedMovementNotFound,
}

// ValidationIssue una regla incumplida. Field solo aplica a MISSING_FIELD y reglas de un campo.
type ValidationIssue struct {
	Code    IssueCode
	Field   string
	Message string
}

// ValidationError agrupa todas las reglas incumplidas de una solicitud, no solo la primera.
type ValidationError struct {
	Issues []ValidationIssue
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Issues))
	for _, is := range e.Issues {
		msgs = append(msgs, is.Message)
	}
	return "validación: " + strings.Join(msgs, "; ")
}

// Is permite errors.Is(err, ErrInvalidInput) y errors.Is(err, <centinela de cualquier issue>).
func (e *ValidationError) Is(target error) bool {
	if target == ErrInvalidInput {
		return true
	}
	for _, is := range e.Issues {
		if issueSentinels[is.Code] == target {
			return true
		}
	}
	return false
}

// Has indica si la validación incluye el código dado.
func (e *ValidationError) Has(code IssueCode) bool {
	for _, is := range e.Issues {
		if is.Code == code {
			return true
		}
	}
	return false
}

// OnlyItemNotFound indica si el único problema es que el ítem no existe.
func (e *ValidationError) OnlyItemNotFound() bool {
	return len(e.Issues) == 1 && e.Issues[0].Code == IssueItemNotFound
}

// InsufficientStockError salida o ajuste negativo mayor que el stock disponible.
type InsufficientStockError struct {
	ItemID    string
	Type      entity.MovementType
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	label := e.Type.Label()
	if label != "" {
		label = strings.ToUpper(label[:1]) + label[1:]
	}
	return fmt.Sprintf("%s de %s excede el stock disponible de %s", label, e.Requested.String(), e.Available.String())
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// PersistenceError el stock del ítem ya cambió pero el registro del movimiento no quedó en el ledger.
// No es libre de efectos: el llamador no debe interpretarlo como "no pasó nada".
type PersistenceError struct {
	Movement  entity.Movement
	Attempts  int
	Escalated bool
	Err       error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("el stock del ítem %s cambió a %s pero el movimiento %s no se registró tras %d intentos: %v",
		e.Movement.ItemID, e.Movement.ResultingQuantity.String(), e.Movement.ID, e.Attempts, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }
