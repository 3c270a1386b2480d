package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/jhoicas/inventory-ledger/internal/domain/repository"
	"github.com/jhoicas/inventory-ledger/pkg/logger"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

var _ repository.MovementLedger = (*CachedLedger)(nil)

// CachedLedger decorador de MovementLedger que guarda en Redis el historial completo de cada ítem.
// Cada Append incrementa la versión del ítem; el historial se guarda bajo la versión leída antes
// de consultarlo, así una lectura concurrente nunca publica un historial viejo como vigente.
// Si Redis falla se consulta directamente el ledger.
type CachedLedger struct {
	next repository.MovementLedger
	rdb  redis.UniversalClient
	ttl  time.Duration
	log  *logger.Logger
}

// NewCachedLedger construye el decorador.
func NewCachedLedger(next repository.MovementLedger, rdb redis.UniversalClient, ttl time.Duration, log *logger.Logger) *CachedLedger {
	if log == nil {
		log = logger.Nop()
	}
	return &CachedLedger{next: next, rdb: rdb, ttl: ttl, log: log.Component("ledger_cache")}
}

func versionKey(itemID string) string { return "ledger:item:" + itemID + ":ver" }

func historyKey(itemID string, ver int64) string {
	return fmt.Sprintf("ledger:item:%s:hist:%d", itemID, ver)
}

// Append delega y luego invalida el historial del ítem.
func (c *CachedLedger) Append(ctx context.Context, m *entity.Movement) error {
	if err := c.next.Append(ctx, m); err != nil {
		return err
	}
	if err := c.rdb.Incr(ctx, versionKey(m.ItemID)).Err(); err != nil {
		// Sin versión nueva el historial cacheado podría quedar viejo hasta el TTL.
		c.log.Warn().Err(err).Str("item_id", m.ItemID).Msg("no se pudo invalidar el historial en cache")
		_ = c.rdb.Del(ctx, versionKey(m.ItemID)).Err()
	}
	return nil
}

// GetByID delega.
func (c *CachedLedger) GetByID(ctx context.Context, id string) (*entity.Movement, error) {
	return c.next.GetByID(ctx, id)
}

// QueryAll delega: los reportes cruzan ítems y no se cachean.
func (c *CachedLedger) QueryAll(ctx context.Context, f entity.MovementFilter) ([]entity.Movement, error) {
	return c.next.QueryAll(ctx, f)
}

// QueryByItem sirve el historial desde Redis si existe y aplica el rango en memoria.
func (c *CachedLedger) QueryByItem(ctx context.Context, itemID string, r entity.DateRange) ([]entity.Movement, error) {
	ver, err := c.rdb.Get(ctx, versionKey(itemID)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		c.log.Warn().Err(err).Str("item_id", itemID).Msg("cache no disponible")
		return c.next.QueryByItem(ctx, itemID, r)
	}
	key := historyKey(itemID, ver)

	if raw, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		var cached []cachedMovement
		if err := json.Unmarshal(raw, &cached); err == nil {
			return filterRange(fromCached(cached), r), nil
		}
		c.log.Warn().Str("key", key).Msg("historial en cache ilegible")
	} else if !errors.Is(err, redis.Nil) {
		c.log.Warn().Err(err).Str("item_id", itemID).Msg("cache no disponible")
		return c.next.QueryByItem(ctx, itemID, r)
	}

	all, err := c.next.QueryByItem(ctx, itemID, entity.DateRange{})
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(toCached(all)); err == nil {
		if err := c.rdb.Set(ctx, key, b, c.ttl).Err(); err != nil {
			c.log.Warn().Err(err).Str("key", key).Msg("no se pudo guardar el historial en cache")
		}
	}
	return filterRange(all, r), nil
}

func filterRange(movs []entity.Movement, r entity.DateRange) []entity.Movement {
	if r.From == nil && r.To == nil {
		return movs
	}
	out := make([]entity.Movement, 0, len(movs))
	for _, m := range movs {
		if r.Contains(m.Date) {
			out = append(out, m)
		}
	}
	return out
}

type cachedMovement struct {
	Seq  int64           `json:"seq"`
	ID   string          `json:"id"`
	Item string          `json:"item"`
	Type string          `json:"type"`
	Qty  decimal.Decimal `json:"qty"`
	UoM  string          `json:"uom,omitempty"`
	Res  decimal.Decimal `json:"res"`
	Date time.Time       `json:"date"`
	At   time.Time       `json:"at"`
	Resp string          `json:"resp"`
	Note string          `json:"note,omitempty"`
	By   string          `json:"by,omitempty"`
	SrcD string          `json:"src_doc,omitempty"`
	DstD string          `json:"dst_doc,omitempty"`
	Dept string          `json:"dept,omitempty"`
	SrcL string          `json:"src_loc,omitempty"`
	DstL string          `json:"dst_loc,omitempty"`
	Dir  string          `json:"dir,omitempty"`
	Why  string          `json:"reason,omitempty"`
	Corr string          `json:"corrects,omitempty"`
}

func toCached(movs []entity.Movement) []cachedMovement {
	out := make([]cachedMovement, 0, len(movs))
	for _, m := range movs {
		out = append(out, cachedMovement{
			Seq: m.Sequence, ID: m.ID, Item: m.ItemID, Type: string(m.Type), Qty: m.Quantity, UoM: m.UnitOfMeasure,
			Res: m.ResultingQuantity, Date: m.Date, At: m.RecordedAt, Resp: m.ResponsibleParty, Note: m.Notes,
			By: m.RecordedBy, SrcD: m.SourceDocument, DstD: m.DestinationDocument, Dept: m.DepartmentOrProject,
			SrcL: m.SourceLocation, DstL: m.DestinationLocation, Dir: string(m.AdjustmentDirection),
			Why: m.AdjustmentReason, Corr: m.CorrectsMovementID,
		})
	}
	return out
}

func fromCached(cs []cachedMovement) []entity.Movement {
	out := make([]entity.Movement, 0, len(cs))
	for _, c := range cs {
		out = append(out, entity.Movement{
			Sequence: c.Seq, ID: c.ID, ItemID: c.Item, Type: entity.MovementType(c.Type), Quantity: c.Qty,
			UnitOfMeasure: c.UoM, ResultingQuantity: c.Res, Date: c.Date, RecordedAt: c.At, ResponsibleParty: c.Resp,
			Notes: c.Note, RecordedBy: c.By, SourceDocument: c.SrcD, DestinationDocument: c.DstD,
			DepartmentOrProject: c.Dept, SourceLocation: c.SrcL, DestinationLocation: c.DstL,
			AdjustmentDirection: entity.AdjustmentDirection(c.Dir), AdjustmentReason: c.Why, CorrectsMovementID: c.Corr,
		})
	}
	return out
}
