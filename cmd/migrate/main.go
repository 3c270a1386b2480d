// migrate ejecuta las migraciones embebidas con goose.
//
// Uso: go run ./cmd/migrate [up|down|status|version|redo|reset] [args...]
package main

import (
	"context"
	"os"

	"github.com/jhoicas/inventory-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/inventory-ledger/pkg/config"
	"github.com/jhoicas/inventory-ledger/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "migrate"})

	command := "up"
	var args []string
	if len(os.Args) > 1 {
		command = os.Args[1]
		args = os.Args[2:]
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB, cfg.App.Name+"-migrate")
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool, command, args...); err != nil {
		log.Fatal().Err(err).Str("command", command).Msg("migración fallida")
	}
	log.Info().Str("command", command).Msg("migración completada")
}
