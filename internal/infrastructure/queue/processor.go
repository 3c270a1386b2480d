package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/jhoicas/inventory-ledger/pkg/logger"
)

// Reappender re-registra un movimiento con su mismo ID.
type Reappender interface {
	ReappendMovement(ctx context.Context, mov entity.Movement) error
}

// ReconcileProcessor procesa las tareas ledger:append_reconcile.
type ReconcileProcessor struct {
	uc  Reappender
	log *logger.Logger
}

// NewReconcileProcessor construye el processor.
func NewReconcileProcessor(uc Reappender, log *logger.Logger) *ReconcileProcessor {
	if log == nil {
		log = logger.Nop()
	}
	return &ReconcileProcessor{uc: uc, log: log.Component("reconcile_processor")}
}

// ProcessAppendReconcile re-registra el movimiento. Un payload ilegible no se reintenta.
func (p *ReconcileProcessor) ProcessAppendReconcile(ctx context.Context, t *asynq.Task) error {
	var payload AppendReconcilePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("payload inválido: %v: %w", err, asynq.SkipRetry)
	}
	if payload.ID == "" || payload.ItemID == "" {
		return fmt.Errorf("payload sin id o ítem: %w", asynq.SkipRetry)
	}
	p.log.Info().Str("movement_id", payload.ID).Str("item_id", payload.ItemID).Str("cause", payload.Cause).Msg("conciliando movimiento")
	return p.uc.ReappendMovement(ctx, payload.Movement())
}

// Register registra los handlers en el mux del worker.
func (p *ReconcileProcessor) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeLedgerAppendReconcile, p.ProcessAppendReconcile)
}
