package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/inventory-ledger/internal/domain"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/jhoicas/inventory-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventory-ledger/internal/domain/repository"
	"github.com/jhoicas/inventory-ledger/pkg/logger"
)

// RetryPolicy reintentos del registro en el ledger después de modificar el stock.
type RetryPolicy struct {
	Attempts int           // total de intentos, mínimo 1
	Backoff  time.Duration // espera lineal: Backoff * intento
}

// DefaultRetryPolicy 3 intentos con 50ms de espera base.
var DefaultRetryPolicy = RetryPolicy{Attempts: 3, Backoff: 50 * time.Millisecond}

// MovementService único punto de entrada para registrar movimientos.
// Compone validación, mutación del stock y registro en el ledger como una operación
// serializada por ítem (ItemLocker); ítems distintos avanzan en paralelo.
type MovementService struct {
	catalog   repository.ItemCatalog
	ledger    repository.MovementLedger
	locker    ItemLocker
	escalator Escalator
	retry     RetryPolicy
	lockWait  time.Duration
	log       *logger.Logger
	now       func() time.Time
}

// Option configura el servicio.
type Option func(*MovementService)

// WithClock reemplaza el reloj (fecha de registro y validación de fechas futuras).
func WithClock(now func() time.Time) Option {
	return func(s *MovementService) { s.now = now }
}

// WithRetryPolicy reemplaza la política de reintentos del ledger.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(s *MovementService) {
		if p.Attempts < 1 {
			p.Attempts = 1
		}
		s.retry = p
	}
}

// WithLockTimeout acota la espera del candado del ítem. 0 espera sin límite (o hasta que ctx se cancele).
func WithLockTimeout(d time.Duration) Option {
	return func(s *MovementService) { s.lockWait = d }
}

// NewMovementService construye el servicio. escalator puede ser nil: el fallo se registra solo en el log.
func NewMovementService(
	catalog repository.ItemCatalog,
	ledger repository.MovementLedger,
	locker ItemLocker,
	escalator Escalator,
	log *logger.Logger,
	opts ...Option,
) *MovementService {
	if log == nil {
		log = logger.Nop()
	}
	s := &MovementService{
		catalog:   catalog,
		ledger:    ledger,
		locker:    locker,
		escalator: escalator,
		retry:     DefaultRetryPolicy,
		log:       log.Component("movement_service"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SubmitMovement valida, aplica el efecto sobre el ítem y registra el movimiento.
//
// Errores:
//   - *domain.ValidationError: la solicitud incumple una o más reglas; nada cambió.
//   - *domain.InsufficientStockError: el stock no alcanza; nada cambió.
//   - *domain.PersistenceError: el stock SÍ cambió pero el registro no quedó en el ledger
//     tras los reintentos; el movimiento se escaló para conciliación.
//   - otros: fallos de infraestructura antes de modificar el stock; nada cambió.
func (s *MovementService) SubmitMovement(ctx context.Context, req entity.MovementRequest) (*entity.Movement, error) {
	itemID := strings.TrimSpace(req.ItemID)
	if itemID == "" {
		// Sin ítem no hay nada que bloquear; el validador reporta todas las reglas.
		_, err := inventory.Validate(req, inventory.ValidationContext{Now: s.now()})
		s.logRejected(req, err)
		return nil, err
	}

	unlock, err := s.lock(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("bloqueo del ítem %s: %w", itemID, err)
	}
	defer unlock()

	// Validating
	item, err := s.catalog.GetItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("consultar ítem %s: %w", itemID, err)
	}
	vc := inventory.ValidationContext{Item: item, Now: s.now()}
	if adj, ok := req.Details.(entity.AdjustmentDetails); ok {
		if id := strings.TrimSpace(adj.CorrectsMovementID); id != "" {
			vc.CorrectedMovement, err = s.ledger.GetByID(ctx, id)
			if err != nil {
				return nil, fmt.Errorf("consultar movimiento corregido %s: %w", id, err)
			}
		}
	}
	valid, err := inventory.Validate(req, vc)
	if err != nil {
		s.logRejected(req, err)
		return nil, err
	}

	// Mutating
	outcome, err := inventory.Apply(*item, valid)
	if err != nil {
		s.logRejected(valid, err)
		return nil, err
	}
	// Antes de confirmar la mutación la cancelación no deja rastro.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var newLocation *string
	if outcome.Location != item.Location {
		newLocation = &outcome.Location
	}
	// Desde aquí la cancelación del llamador no aplica: una actualización cortada a medias
	// podría confirmarse en la base de datos y reportarse como cancelada.
	commitCtx := context.WithoutCancel(ctx)
	if err := s.catalog.UpdateQuantityAndLocation(commitCtx, item.ID, outcome.Quantity, newLocation); err != nil {
		return nil, fmt.Errorf("actualizar stock del ítem %s: %w", item.ID, err)
	}

	// Appending
	mov := buildMovement(valid, *item, outcome, s.now())
	attempts, err := s.appendWithRetry(commitCtx, &mov)
	if err != nil {
		return nil, s.escalate(commitCtx, mov, attempts, err)
	}

	s.log.Info().
		Str("movement_id", mov.ID).
		Str("item_id", mov.ItemID).
		Str("type", string(mov.Type)).
		Str("quantity", mov.Quantity.String()).
		Str("resulting_quantity", mov.ResultingQuantity.String()).
		Msg("movimiento registrado")
	return &mov, nil
}

// lock aplica lockWait solo a la espera del candado; el resto del registro usa ctx tal cual.
func (s *MovementService) lock(ctx context.Context, itemID string) (func(), error) {
	if s.lockWait <= 0 {
		return s.locker.Lock(ctx, itemID)
	}
	lockCtx, cancel := context.WithTimeout(ctx, s.lockWait)
	defer cancel()
	return s.locker.Lock(lockCtx, itemID)
}

func (s *MovementService) appendWithRetry(ctx context.Context, mov *entity.Movement) (int, error) {
	var err error
	for attempt := 1; attempt <= s.retry.Attempts; attempt++ {
		if err = s.ledger.Append(ctx, mov); err == nil {
			return attempt, nil
		}
		s.log.Warn().Err(err).
			Str("movement_id", mov.ID).
			Int("attempt", attempt).
			Msg("fallo al registrar movimiento en el ledger")
		if attempt < s.retry.Attempts && s.retry.Backoff > 0 {
			time.Sleep(s.retry.Backoff * time.Duration(attempt))
		}
	}
	return s.retry.Attempts, err
}

func (s *MovementService) escalate(ctx context.Context, mov entity.Movement, attempts int, cause error) error {
	perr := &domain.PersistenceError{Movement: mov, Attempts: attempts, Err: cause}
	if s.escalator != nil {
		if err := s.escalator.Escalate(ctx, mov, cause); err != nil {
			s.log.Error().Err(err).Str("movement_id", mov.ID).Msg("no se pudo escalar el movimiento para conciliación")
		} else {
			perr.Escalated = true
		}
	}
	s.log.Error().Err(cause).
		Str("movement_id", mov.ID).
		Str("item_id", mov.ItemID).
		Str("type", string(mov.Type)).
		Str("quantity", mov.Quantity.String()).
		Str("resulting_quantity", mov.ResultingQuantity.String()).
		Int("attempts", attempts).
		Bool("escalated", perr.Escalated).
		Msg("stock modificado sin registro en el ledger: requiere conciliación")
	return perr
}

func (s *MovementService) logRejected(req entity.MovementRequest, err error) {
	var ve *domain.ValidationError
	ev := s.log.Debug().Str("item_id", req.ItemID).Str("type", string(req.Type()))
	if errors.As(err, &ve) {
		codes := make([]string, 0, len(ve.Issues))
		for _, is := range ve.Issues {
			codes = append(codes, string(is.Code))
		}
		ev = ev.Strs("issues", codes)
	}
	ev.Err(err).Msg("movimiento rechazado")
}

// buildMovement arma el registro inmutable a partir de la solicitud ya validada.
func buildMovement(req entity.MovementRequest, item entity.StockedItem, out inventory.Outcome, now time.Time) entity.Movement {
	mov := entity.Movement{
		ID:                uuid.New().String(),
		ItemID:            item.ID,
		Type:              req.Type(),
		Quantity:          req.Quantity,
		UnitOfMeasure:     item.UnitOfMeasure,
		ResultingQuantity: out.Quantity,
		Date:              req.Date,
		RecordedAt:        now,
		ResponsibleParty:  req.ResponsibleParty,
		Notes:             req.Notes,
		RecordedBy:        req.RecordedBy,
	}
	switch d := req.Details.(type) {
	case entity.InboundDetails:
		mov.SourceDocument = d.SourceDocument
		mov.DestinationLocation = d.DestinationLocation
	case entity.OutboundDetails:
		mov.DestinationDocument = d.DestinationDocument
		mov.DepartmentOrProject = d.DepartmentOrProject
		mov.SourceLocation = d.SourceLocation
	case entity.TransferDetails:
		mov.SourceLocation = d.SourceLocation
		mov.DestinationLocation = d.DestinationLocation
	case entity.AdjustmentDetails:
		mov.AdjustmentDirection = d.Direction
		mov.AdjustmentReason = d.Reason
		mov.CorrectsMovementID = d.CorrectsMovementID
	}
	return mov
}
