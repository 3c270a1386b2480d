package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// readItems lee el catálogo en CSV: id, unidad de medida, ubicación.
// La primera fila se omite si es encabezado (primer campo "id").
// Con latin1 el archivo se decodifica desde ISO-8859-1 (exportaciones de hojas de cálculo).
func readItems(r io.Reader, comma rune, latin1 bool) ([]entity.StockedItem, error) {
	if latin1 {
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	}
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var items []entity.StockedItem
	seen := make(map[string]int)
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		if line == 1 && len(rec) > 0 && strings.EqualFold(strings.TrimSpace(rec[0]), "id") {
			continue
		}
		if len(rec) < 3 {
			return nil, fmt.Errorf("línea %d: se esperaban 3 columnas (id, unidad, ubicación), hay %d", line, len(rec))
		}
		it := entity.StockedItem{
			ID:            strings.TrimSpace(rec[0]),
			UnitOfMeasure: strings.TrimSpace(rec[1]),
			Location:      strings.TrimSpace(rec[2]),
		}
		if it.ID == "" || it.UnitOfMeasure == "" {
			return nil, fmt.Errorf("línea %d: id y unidad son obligatorios", line)
		}
		if prev, ok := seen[it.ID]; ok {
			return nil, fmt.Errorf("línea %d: ítem %s repetido (línea %d)", line, it.ID, prev)
		}
		seen[it.ID] = line
		items = append(items, it)
	}
	return items, nil
}
