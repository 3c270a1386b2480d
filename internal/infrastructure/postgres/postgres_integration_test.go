//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appinventory "github.com/jhoicas/inventory-ledger/internal/application/inventory"
	"github.com/jhoicas/inventory-ledger/internal/domain"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/jhoicas/inventory-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/inventory-ledger/pkg/config"
	"github.com/jhoicas/inventory-ledger/pkg/logger"
)

// startPostgres levanta PostgreSQL en Docker, aplica migraciones y devuelve su configuración.
func startPostgres(t *testing.T) config.DBConfig {
	t.Helper()

	dpool, err := dockertest.NewPool("")
	require.NoError(t, err, "no se pudo conectar con Docker")

	resource, err := dpool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=test",
			"POSTGRES_PASSWORD=test",
			"POSTGRES_DB=ledger_test",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err, "no se pudo iniciar PostgreSQL")
	t.Cleanup(func() {
		if err := dpool.Purge(resource); err != nil {
			t.Logf("no se pudo eliminar el contenedor: %s", err)
		}
	})

	port, err := strconv.Atoi(resource.GetPort("5432/tcp"))
	require.NoError(t, err)
	cfg := config.DBConfig{Host: "localhost", Port: port, User: "test", Password: "test", DBName: "ledger_test", SSLMode: "disable"}

	var pool *pgxpool.Pool
	dpool.MaxWait = 90 * time.Second
	err = dpool.Retry(func() error {
		var err error
		pool, err = postgres.NewPool(context.Background(), cfg, "ledger-test-migrate")
		return err
	})
	require.NoError(t, err, "PostgreSQL no respondió")
	defer pool.Close()

	require.NoError(t, postgres.MigrateUp(context.Background(), pool))
	return cfg
}

// openPool abre un pool de maxConns conexiones (0 usa el valor por defecto).
func openPool(t *testing.T, cfg config.DBConfig, maxConns int, appName string) *pgxpool.Pool {
	t.Helper()
	cfg.MaxConns = maxConns
	pool, err := postgres.NewPool(context.Background(), cfg, appName)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func setupPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	return openPool(t, startPostgres(t), 0, "ledger-test")
}

func TestPostgres_FlujoCompleto(t *testing.T) {
	cfg := startPostgres(t)
	pool := openPool(t, cfg, 0, "ledger-test")
	ctx := context.Background()

	catalog := postgres.NewItemCatalogRepository(pool)
	ledger := postgres.NewMovementLedgerRepository(pool)
	locker := postgres.NewAdvisoryItemLocker(openPool(t, cfg, 2, "ledger-test-locks"), logger.Nop())
	svc := appinventory.NewMovementService(catalog, ledger, locker, nil, logger.Nop())

	require.NoError(t, catalog.Upsert(ctx, entity.StockedItem{ID: "RM100", UnitOfMeasure: "kg", CurrentQuantity: decimal.Zero, Location: "A"}))

	date := time.Now().Add(-time.Hour).UTC().Truncate(time.Microsecond)
	in := entity.MovementRequest{
		ItemID: "RM100", Quantity: decimal.NewFromInt(100), Date: date, ResponsibleParty: "Recepción",
		Details: entity.InboundDetails{SourceDocument: "OC-1", DestinationLocation: "A"},
	}
	mov, err := svc.SubmitMovement(ctx, in)
	require.NoError(t, err)
	assert.Positive(t, mov.Sequence)

	// Append idempotente por ID
	dup := *mov
	require.NoError(t, ledger.Append(ctx, &dup))
	assert.Equal(t, mov.Sequence, dup.Sequence)

	got, err := ledger.GetByID(ctx, mov.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, entity.MovementTypeInbound, got.Type)
	assert.True(t, got.ResultingQuantity.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, "OC-1", got.SourceDocument)

	// Dos salidas concurrentes de 60: solo una pasa
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.SubmitMovement(ctx, entity.MovementRequest{
				ItemID: "RM100", Quantity: decimal.NewFromInt(60), Date: date, ResponsibleParty: "Planta",
				Details: entity.OutboundDetails{DestinationDocument: "REQ", DepartmentOrProject: "P1", SourceLocation: "A"},
			})
		}(i)
	}
	wg.Wait()
	failed := 0
	for _, err := range errs {
		if err != nil {
			assert.True(t, errors.Is(err, domain.ErrInsufficientStock), "error inesperado: %v", err)
			failed++
		}
	}
	assert.Equal(t, 1, failed)

	it, err := catalog.GetItem(ctx, "RM100")
	require.NoError(t, err)
	assert.True(t, it.CurrentQuantity.Equal(decimal.NewFromInt(40)), "cantidad %s", it.CurrentQuantity)

	movs, err := ledger.QueryAll(ctx, entity.MovementFilter{ItemID: "RM100", Type: entity.MovementTypeOutbound})
	require.NoError(t, err)
	assert.Len(t, movs, 1)

	rec, err := appinventory.NewReconcileUseCase(catalog, ledger, logger.Nop()).Reconcile(ctx, "RM100")
	require.NoError(t, err)
	assert.True(t, rec.Consistent())
}

func TestPostgres_LedgerEsSoloDeInsercion(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()
	ledger := postgres.NewMovementLedgerRepository(pool)

	m := &entity.Movement{
		ItemID: "X", Type: entity.MovementTypeInbound, Quantity: decimal.NewFromInt(1),
		ResultingQuantity: decimal.NewFromInt(1), Date: time.Now().Add(-time.Minute), ResponsibleParty: "R",
	}
	require.NoError(t, ledger.Append(ctx, m))

	_, err := pool.Exec(ctx, `UPDATE inventory_movements SET notes = 'x' WHERE id = $1`, m.ID)
	assert.Error(t, err, "los movimientos no se editan")
	_, err = pool.Exec(ctx, `DELETE FROM inventory_movements WHERE id = $1`, m.ID)
	assert.Error(t, err, "los movimientos no se borran")
}

func TestPostgres_CatalogoRechazaCantidadNegativa(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()
	catalog := postgres.NewItemCatalogRepository(pool)
	require.NoError(t, catalog.Upsert(ctx, entity.StockedItem{ID: "N1", CurrentQuantity: decimal.NewFromInt(1)}))

	err := catalog.UpdateQuantityAndLocation(ctx, "N1", decimal.NewFromInt(-1), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	assert.ErrorIs(t, catalog.UpdateQuantityAndLocation(ctx, "NOPE", decimal.NewFromInt(1), nil), domain.ErrItemNotFound)
}

func TestPostgres_FiltrosDeConsulta(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()
	ledger := postgres.NewMovementLedgerRepository(pool)

	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	for i, rp := range []string{"Ana", "Luis", "Ana"} {
		m := &entity.Movement{
			ID: "m" + strconv.Itoa(i), ItemID: "F1", Type: entity.MovementTypeInbound, Quantity: decimal.NewFromInt(1),
			ResultingQuantity: decimal.NewFromInt(int64(i + 1)), Date: base.AddDate(0, 0, 2-i), ResponsibleParty: rp,
		}
		require.NoError(t, ledger.Append(ctx, m))
	}

	movs, err := ledger.QueryAll(ctx, entity.MovementFilter{ResponsibleParty: "Ana"})
	require.NoError(t, err)
	require.Len(t, movs, 2)
	assert.Equal(t, "m2", movs[0].ID, "orden por fecha ascendente")

	from := base.AddDate(0, 0, 1)
	movs, err = ledger.QueryByItem(ctx, "F1", entity.DateRange{From: &from})
	require.NoError(t, err)
	assert.Len(t, movs, 2)
}

func TestPostgres_RegisterNoPisaStockExistente(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()
	catalog := postgres.NewItemCatalogRepository(pool)

	created, err := catalog.Register(ctx, entity.StockedItem{ID: "S1", UnitOfMeasure: "und", Location: "A"})
	require.NoError(t, err)
	assert.True(t, created)
	require.NoError(t, catalog.UpdateQuantityAndLocation(ctx, "S1", decimal.NewFromInt(9), nil))

	created, err = catalog.Register(ctx, entity.StockedItem{ID: "S1", UnitOfMeasure: "kg", Location: "B"})
	require.NoError(t, err)
	assert.False(t, created)

	it, err := catalog.GetItem(ctx, "S1")
	require.NoError(t, err)
	assert.True(t, it.CurrentQuantity.Equal(decimal.NewFromInt(9)))
	assert.Equal(t, "A", it.Location)
}

// ──────────────────────────────────────────────────────────────────────────────
// Concurrencia con pools pequeños
// ──────────────────────────────────────────────────────────────────────────────

func submitOutbound(ctx context.Context, svc *appinventory.MovementService, itemID string, qty int64, date time.Time) error {
	_, err := svc.SubmitMovement(ctx, entity.MovementRequest{
		ItemID: itemID, Quantity: decimal.NewFromInt(qty), Date: date, ResponsibleParty: "Planta",
		Details: entity.OutboundDetails{DestinationDocument: "REQ", DepartmentOrProject: "P1", SourceLocation: "A"},
	})
	return err
}

func TestPostgres_MasSolicitudesQueConexiones(t *testing.T) {
	cfg := startPostgres(t)
	dataPool := openPool(t, cfg, 4, "ledger-test")
	lockPool := openPool(t, cfg, 2, "ledger-test-locks")

	catalog := postgres.NewItemCatalogRepository(dataPool)
	ledger := postgres.NewMovementLedgerRepository(dataPool)
	svc := appinventory.NewMovementService(catalog, ledger, postgres.NewAdvisoryItemLocker(lockPool, logger.Nop()), nil, logger.Nop())

	// Un bloqueo se manifiesta como DeadlineExceeded en lugar de colgar la prueba.
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	date := time.Now().Add(-time.Hour).UTC().Truncate(time.Microsecond)
	stock := map[string]int64{"C1": 50, "C2": 10, "C3": 10, "C4": 10}
	for id, qty := range stock {
		_, err := catalog.Register(ctx, entity.StockedItem{ID: id, UnitOfMeasure: "und", Location: "A"})
		require.NoError(t, err)
		_, err = svc.SubmitMovement(ctx, entity.MovementRequest{
			ItemID: id, Quantity: decimal.NewFromInt(qty), Date: date, ResponsibleParty: "Recepción",
			Details: entity.InboundDetails{SourceDocument: "OC-" + id, DestinationLocation: "A"},
		})
		require.NoError(t, err)
	}

	// C1: 40 salidas de 2 sobre 50 unidades. C2..C4: 8 salidas de 1 sobre 10.
	type job struct {
		item string
		qty  int64
	}
	var jobs []job
	for i := 0; i < 40; i++ {
		jobs = append(jobs, job{"C1", 2})
	}
	for _, id := range []string{"C2", "C3", "C4"} {
		for i := 0; i < 8; i++ {
			jobs = append(jobs, job{id, 1})
		}
	}

	var (
		wg           sync.WaitGroup
		mu           sync.Mutex
		unexpected   []error
		insufficient int
	)
	ok := map[string]int{}
	for _, j := range jobs {
		wg.Add(1)
		go func(j job) {
			defer wg.Done()
			err := submitOutbound(ctx, svc, j.item, j.qty, date)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok[j.item]++
			case errors.Is(err, domain.ErrInsufficientStock):
				insufficient++
			default:
				unexpected = append(unexpected, err)
			}
		}(j)
	}
	wg.Wait()

	require.Empty(t, unexpected)
	assert.Equal(t, 25, ok["C1"])
	assert.Equal(t, 15, insufficient)
	for _, id := range []string{"C2", "C3", "C4"} {
		assert.Equal(t, 8, ok[id], id)
	}

	want := map[string]int64{"C1": 0, "C2": 2, "C3": 2, "C4": 2}
	reconcile := appinventory.NewReconcileUseCase(catalog, ledger, logger.Nop())
	for id, qty := range want {
		it, err := catalog.GetItem(ctx, id)
		require.NoError(t, err)
		assert.True(t, it.CurrentQuantity.Equal(decimal.NewFromInt(qty)), "%s: cantidad %s", id, it.CurrentQuantity)

		rec, err := reconcile.Reconcile(ctx, id)
		require.NoError(t, err)
		assert.True(t, rec.Consistent(), id)
		assert.False(t, rec.WentNegative, id)
	}
}

func TestPostgres_SalidaConFechaAnteriorEsConsistente(t *testing.T) {
	cfg := startPostgres(t)
	pool := openPool(t, cfg, 0, "ledger-test")
	ctx := context.Background()

	catalog := postgres.NewItemCatalogRepository(pool)
	ledger := postgres.NewMovementLedgerRepository(pool)
	svc := appinventory.NewMovementService(catalog, ledger,
		postgres.NewAdvisoryItemLocker(openPool(t, cfg, 1, "ledger-test-locks"), logger.Nop()), nil, logger.Nop())

	_, err := catalog.Register(ctx, entity.StockedItem{ID: "B1", UnitOfMeasure: "kg", Location: "A"})
	require.NoError(t, err)

	now := time.Now().UTC().Truncate(time.Microsecond)
	_, err = svc.SubmitMovement(ctx, entity.MovementRequest{
		ItemID: "B1", Quantity: decimal.NewFromInt(100), Date: now.Add(-time.Hour), ResponsibleParty: "Recepción",
		Details: entity.InboundDetails{SourceDocument: "OC-9", DestinationLocation: "A"},
	})
	require.NoError(t, err)
	require.NoError(t, submitOutbound(ctx, svc, "B1", 60, now.Add(-48*time.Hour)))

	movs, err := ledger.QueryByItem(ctx, "B1", entity.DateRange{})
	require.NoError(t, err)
	require.Len(t, movs, 2)
	assert.Equal(t, entity.MovementTypeOutbound, movs[0].Type, "el historial se lista por fecha declarada")

	rec, err := appinventory.NewReconcileUseCase(catalog, ledger, logger.Nop()).Reconcile(ctx, "B1")
	require.NoError(t, err)
	assert.True(t, rec.Consistent())
	assert.False(t, rec.WentNegative)
	assert.True(t, rec.ReplayedQuantity.Equal(decimal.NewFromInt(40)), "replay %s", rec.ReplayedQuantity)
}
