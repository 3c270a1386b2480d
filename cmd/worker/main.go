// worker consume la cola de conciliación y re-registra en el ledger los movimientos
// que modificaron el stock sin quedar registrados.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jhoicas/inventory-ledger/internal/application/inventory"
	"github.com/jhoicas/inventory-ledger/internal/domain/repository"
	"github.com/jhoicas/inventory-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/inventory-ledger/internal/infrastructure/queue"
	"github.com/jhoicas/inventory-ledger/internal/infrastructure/rediscache"
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
		Service: "worker",
	})
	if cfg.Redis.Addr == "" {
		log.Fatal().Msg("REDIS_ADDR es obligatorio para el worker")
	}
	if cfg.App.Storage != config.StoragePostgres {
		log.Fatal().Str("storage", cfg.App.Storage).Msg("el worker solo opera sobre PostgreSQL")
	}
	log.Info().
		Str("env", cfg.App.Env).
		Str("redis_addr", cfg.Redis.Addr).
		Int("concurrency", cfg.Worker.Concurrency).
		Msg("iniciando worker de conciliación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB, cfg.App.Name+"-worker")
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	catalog := postgres.NewItemCatalogRepository(pool)
	var ledger repository.MovementLedger = postgres.NewMovementLedgerRepository(pool)

	// El re-registro también invalida el historial cacheado por la API.
	if cfg.Redis.CacheTTL > 0 {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		ledger = rediscache.NewCachedLedger(ledger, rdb, cfg.Redis.CacheTTL, log)
	}

	reconcileUC := inventory.NewReconcileUseCase(catalog, ledger, log)

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Concurrency:     cfg.Worker.Concurrency,
			Queues:          map[string]int{queue.QueueReconcile: 1},
			ShutdownTimeout: 10 * time.Second,
			Logger:          queue.NewAsynqLogger(log),
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				retried, _ := asynq.GetRetryCount(ctx)
				maxRetry, _ := asynq.GetMaxRetry(ctx)
				ev := log.Warn()
				if retried >= maxRetry {
					ev = log.Error()
				}
				ev.Err(err).
					Str("task_type", task.Type()).
					Int("retried", retried).
					Int("max_retry", maxRetry).
					Msg("tarea de conciliación fallida")
			}),
		},
	)

	mux := asynq.NewServeMux()
	queue.NewReconcileProcessor(reconcileUC, log).Register(mux)

	if err := srv.Start(mux); err != nil {
		log.Fatal().Err(err).Msg("iniciar worker")
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando worker...")
	srv.Shutdown()
	log.Info().Msg("worker detenido")
}
