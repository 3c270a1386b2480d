package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/hibiken/asynq"
	"github.com/jhoicas/inventory-ledger/internal/application/inventory"
	"github.com/jhoicas/inventory-ledger/internal/domain/repository"
	"github.com/jhoicas/inventory-ledger/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/inventory-ledger/internal/infrastructure/pdf"
	"github.com/jhoicas/inventory-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/inventory-ledger/internal/infrastructure/queue"
	"github.com/jhoicas/inventory-ledger/internal/infrastructure/rediscache"
	httpRouter "github.com/jhoicas/inventory-ledger/internal/interfaces/http"
	"github.com/jhoicas/inventory-ledger/pkg/config"
	"github.com/jhoicas/inventory-ledger/pkg/logger"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: "api",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.App.Storage).
		Msg("iniciando aplicación")

	ctx := context.Background()

	var (
		catalog repository.ItemCatalog
		ledger  repository.MovementLedger
		locker  inventory.ItemLocker
	)
	switch cfg.App.Storage {
	case config.StorageMemory:
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		catalog = memory.NewCatalog()
		ledger = memory.NewLedger()
		locker = memory.NewKeyedLocker()
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB, cfg.App.Name)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if err := postgres.MigrateUp(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		// Los candados de ítem retienen su sesión: pool aparte para no competir con los datos.
		lockDB := cfg.DB
		lockDB.MaxConns = cfg.Ledger.LockConns
		lockPool, err := postgres.NewPool(ctx, lockDB, cfg.App.Name+"-locks")
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL (candados)")
		}
		defer lockPool.Close()
		catalog = postgres.NewItemCatalogRepository(pool)
		ledger = postgres.NewMovementLedgerRepository(pool)
		locker = postgres.NewAdvisoryItemLocker(lockPool, log)
	}

	// Redis es opcional: sin REDIS_ADDR no hay cache ni cola de conciliación.
	var escalator inventory.Escalator
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("conexión a Redis")
		}
		if cfg.Redis.CacheTTL > 0 {
			ledger = rediscache.NewCachedLedger(ledger, rdb, cfg.Redis.CacheTTL, log)
		}

		asynqClient := asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer asynqClient.Close()
		escalator = queue.NewAsynqEscalator(asynqClient, log)
	} else {
		log.Warn().Msg("REDIS_ADDR vacío: los movimientos sin registro solo quedan en el log")
	}

	movementSvc := inventory.NewMovementService(catalog, ledger, locker, escalator, log,
		inventory.WithRetryPolicy(inventory.RetryPolicy{
			Attempts: cfg.Ledger.AppendAttempts,
			Backoff:  cfg.Ledger.AppendBackoff,
		}),
		inventory.WithLockTimeout(cfg.Ledger.LockTimeout))
	queryUC := inventory.NewQueryUseCase(ledger)
	reconcileUC := inventory.NewReconcileUseCase(catalog, ledger, log)
	kardexUC := inventory.NewKardexUseCase(catalog, ledger, infrapdf.NewKardexPDFGenerator())

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Inventory Ledger API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "storage": cfg.App.Storage})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Movements: movementSvc,
		Queries:   queryUC,
		Reconcile: reconcileUC,
		Kardex:    kardexUC,
		JWTSecret: cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
