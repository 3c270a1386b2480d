// seed da de alta ítems en el catálogo (stock cero) a partir de un CSV.
// El stock inicial se carga después con movimientos de entrada, para que el
// historial explique la cantidad desde el primer día.
//
// Uso: go run ./cmd/seed [-latin1] [-comma ';'] items.csv
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/jhoicas/inventory-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/inventory-ledger/pkg/config"
	"github.com/jhoicas/inventory-ledger/pkg/logger"
)

func main() {
	latin1 := flag.Bool("latin1", false, "el archivo está en ISO-8859-1")
	comma := flag.String("comma", ",", "separador de columnas")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "uso: seed [-latin1] [-comma ';'] items.csv")
		os.Exit(2)
	}
	sep, _ := utf8.DecodeRuneInString(*comma)

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "seed"})

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		log.Fatal().Err(err).Msg("abrir CSV")
	}
	defer f.Close()

	items, err := readItems(f, sep, *latin1)
	if err != nil {
		log.Fatal().Err(err).Msg("leer CSV")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB, cfg.App.Name+"-seed")
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	catalog := postgres.NewItemCatalogRepository(pool)
	var created, skipped int
	for _, it := range items {
		ok, err := catalog.Register(ctx, it)
		if err != nil {
			log.Fatal().Err(err).Str("item_id", it.ID).Msg("registrar ítem")
		}
		if ok {
			created++
		} else {
			skipped++
		}
	}
	log.Info().Int("created", created).Int("skipped", skipped).Msg("catálogo cargado")
}
