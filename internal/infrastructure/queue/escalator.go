package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jhoicas/inventory-ledger/internal/application/inventory"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/jhoicas/inventory-ledger/pkg/logger"
)

var _ inventory.Escalator = (*AsynqEscalator)(nil)

// Enqueuer lo que el escalador usa de *asynq.Client.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// AsynqEscalator encola los movimientos sin registro para que el worker los concilie.
type AsynqEscalator struct {
	client Enqueuer
	log    *logger.Logger
}

// NewAsynqEscalator construye el escalador.
func NewAsynqEscalator(client Enqueuer, log *logger.Logger) *AsynqEscalator {
	if log == nil {
		log = logger.Nop()
	}
	return &AsynqEscalator{client: client, log: log.Component("escalator")}
}

// Escalate encola la tarea con el ID del movimiento como TaskID: escalar dos veces el mismo
// movimiento no duplica la tarea. Las tareas agotadas quedan archivadas para revisión manual.
func (e *AsynqEscalator) Escalate(ctx context.Context, mov entity.Movement, cause error) error {
	task, err := NewAppendReconcileTask(mov, cause)
	if err != nil {
		return err
	}
	info, err := e.client.EnqueueContext(ctx, task,
		asynq.Queue(QueueReconcile),
		asynq.TaskID(mov.ID),
		asynq.MaxRetry(20),
		asynq.Retention(7*24*time.Hour),
	)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			return nil
		}
		return fmt.Errorf("encolar conciliación de %s: %w", mov.ID, err)
	}
	e.log.Warn().Str("movement_id", mov.ID).Str("task_id", info.ID).Str("queue", info.Queue).Msg("movimiento escalado para conciliación")
	return nil
}
