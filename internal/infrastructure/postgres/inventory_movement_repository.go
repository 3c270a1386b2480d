package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/jhoicas/inventory-ledger/internal/domain/repository"
)

var _ repository.MovementLedger = (*MovementLedgerRepo)(nil)

const movementColumns = `seq, id, item_id, type, quantity, unit_of_measure, resulting_quantity, date, recorded_at,
	responsible_party, notes, recorded_by, source_document, destination_document, department_or_project,
	source_location, destination_location, adjustment_direction, adjustment_reason, corrects_movement_id`

// MovementLedgerRepo ledger de movimientos sobre inventory_movements (solo inserción).
type MovementLedgerRepo struct {
	q Querier
}

// NewMovementLedgerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementLedgerRepository(q Querier) *MovementLedgerRepo {
	return &MovementLedgerRepo{q: q}
}

// Append inserta el movimiento. Un ID ya registrado no se sobrescribe (ON CONFLICT DO NOTHING)
// y se devuelve la secuencia del registro existente.
func (r *MovementLedgerRepo) Append(ctx context.Context, m *entity.Movement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.RecordedAt.IsZero() {
		m.RecordedAt = time.Now()
	}
	query := `
		INSERT INTO inventory_movements (id, item_id, type, quantity, unit_of_measure, resulting_quantity, date, recorded_at,
			responsible_party, notes, recorded_by, source_document, destination_document, department_or_project,
			source_location, destination_location, adjustment_direction, adjustment_reason, corrects_movement_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		ON CONFLICT (id) DO NOTHING
		RETURNING seq`
	err := r.q.QueryRow(ctx, query,
		m.ID, m.ItemID, string(m.Type), m.Quantity, m.UnitOfMeasure, m.ResultingQuantity, m.Date, m.RecordedAt,
		m.ResponsibleParty, m.Notes, m.RecordedBy, m.SourceDocument, m.DestinationDocument, m.DepartmentOrProject,
		m.SourceLocation, m.DestinationLocation, string(m.AdjustmentDirection), m.AdjustmentReason, m.CorrectsMovementID,
	).Scan(&m.Sequence)
	if errors.Is(err, pgx.ErrNoRows) {
		// Ya existía: re-registro idempotente.
		err = r.q.QueryRow(ctx, `SELECT seq FROM inventory_movements WHERE id = $1`, m.ID).Scan(&m.Sequence)
	}
	if err != nil {
		return fmt.Errorf("append inventory movement: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID; (nil, nil) si no existe.
func (r *MovementLedgerRepo) GetByID(ctx context.Context, id string) (*entity.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM inventory_movements WHERE id = $1`
	m, err := scanMovement(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return &m, nil
}

// QueryByItem historial del ítem por fecha ascendente y orden de inserción.
func (r *MovementLedgerRepo) QueryByItem(ctx context.Context, itemID string, dr entity.DateRange) ([]entity.Movement, error) {
	return r.QueryAll(ctx, entity.MovementFilter{ItemID: itemID, Range: dr})
}

// QueryAll movimientos que cumplen el filtro, por fecha ascendente y orden de inserción.
func (r *MovementLedgerRepo) QueryAll(ctx context.Context, f entity.MovementFilter) ([]entity.Movement, error) {
	qb := squirrel.Select(movementColumns).
		From("inventory_movements").
		OrderBy("date ASC", "seq ASC").
		PlaceholderFormat(squirrel.Dollar)
	if f.ItemID != "" {
		qb = qb.Where(squirrel.Eq{"item_id": f.ItemID})
	}
	if f.Type != "" {
		qb = qb.Where(squirrel.Eq{"type": string(f.Type)})
	}
	if f.ResponsibleParty != "" {
		qb = qb.Where(squirrel.Eq{"responsible_party": f.ResponsibleParty})
	}
	if f.Range.From != nil {
		qb = qb.Where(squirrel.GtOrEq{"date": *f.Range.From})
	}
	if f.Range.To != nil {
		qb = qb.Where(squirrel.LtOrEq{"date": *f.Range.To})
	}
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build movements query: %w", err)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query movements: %w", err)
	}
	defer rows.Close()
	list := make([]entity.Movement, 0)
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func scanMovement(row pgx.Row) (entity.Movement, error) {
	var m entity.Movement
	var typ, dir string
	err := row.Scan(
		&m.Sequence, &m.ID, &m.ItemID, &typ, &m.Quantity, &m.UnitOfMeasure, &m.ResultingQuantity, &m.Date, &m.RecordedAt,
		&m.ResponsibleParty, &m.Notes, &m.RecordedBy, &m.SourceDocument, &m.DestinationDocument, &m.DepartmentOrProject,
		&m.SourceLocation, &m.DestinationLocation, &dir, &m.AdjustmentReason, &m.CorrectsMovementID,
	)
	m.Type = entity.MovementType(typ)
	m.AdjustmentDirection = entity.AdjustmentDirection(dir)
	return m, err
}
