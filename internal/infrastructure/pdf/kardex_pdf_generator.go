// Package pdf genera la tarjeta kardex de un ítem: historial de movimientos con saldo acumulado.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Ítem + Unidad + Ubicación   │  Rango + Generado    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Fecha | Tipo | Detalle | Responsable | E | S | Saldo │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: Entradas / Salidas / Saldo final + QR del ítem     │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventory-ledger/internal/application/inventory"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
)

var _ inventory.KardexRenderer = (*KardexPDFGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// KardexPDFGenerator implementa inventory.KardexRenderer usando Maroto v2.
type KardexPDFGenerator struct {
	now func() time.Time
}

// NewKardexPDFGenerator construye el generador.
func NewKardexPDFGenerator() *KardexPDFGenerator {
	return &KardexPDFGenerator{now: time.Now}
}

// Render genera el PDF y devuelve sus bytes.
func (g *KardexPDFGenerator) Render(k inventory.Kardex) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 8}).
		WithTitle("Kardex "+k.Item.ID, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(k, g.now()))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	if len(k.Lines) == 0 {
		m.AddRows(row.New(8).Add(col.New(12).Add(
			text.New("Sin movimientos en el rango seleccionado", props.Text{Align: align.Center, Top: 2, Color: colorGray}),
		)))
	}
	for _, r := range tableDetailRows(k.Lines) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(summaryRow(k))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar kardex: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: ítem (izq) y rango + fecha de generación (der).
func headerRow(k inventory.Kardex, now time.Time) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New("KARDEX "+k.Item.ID, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Unidad: %s   |   Ubicación: %s",
				nonEmpty(k.Item.UnitOfMeasure, "-"), nonEmpty(k.Item.Location, "-"),
			), props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New("Rango: "+rangeLabel(k.Range), props.Text{
				Size: 8, Align: align.Right, Top: 2,
			}),
			text.New("Generado: "+now.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 9, Color: colorGray,
			}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla con fondo azul.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Fecha", 2, align.Left),
		h("Tipo", 1, align.Left),
		h("Detalle", 3, align.Left),
		h("Responsable", 2, align.Left),
		h("Entrada", 1, align.Right),
		h("Salida", 1, align.Right),
		h("Saldo", 2, align.Right),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

// tableDetailRows: una fila por movimiento.
func tableDetailRows(lines []inventory.KardexLine) []core.Row {
	result := make([]core.Row, 0, len(lines))
	cell := func(s string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(s, props.Text{Size: 7.5, Align: a, Top: 1, Left: 1, Right: 1}))
	}
	for _, l := range lines {
		mv := l.Movement
		in, out := "", ""
		switch {
		case mv.IsIncrease():
			in = formatQty(mv.Quantity)
		case mv.IsDecrease():
			out = formatQty(mv.Quantity)
		}
		result = append(result, row.New(7).Add(
			cell(mv.Date.Format("02/01/2006"), 2, align.Left),
			cell(mv.Type.Label(), 1, align.Left),
			cell(detail(mv), 3, align.Left),
			cell(mv.ResponsibleParty, 2, align.Left),
			cell(in, 1, align.Right),
			cell(out, 1, align.Right),
			cell(formatQty(l.Balance), 2, align.Right),
		))
	}
	return result
}

// summaryRow: totales del rango y QR con el ID del ítem para escanear en bodega.
func summaryRow(k inventory.Kardex) core.Row {
	totalIn, totalOut := decimal.Zero, decimal.Zero
	for _, l := range k.Lines {
		switch {
		case l.Movement.IsIncrease():
			totalIn = totalIn.Add(l.Movement.Quantity)
		case l.Movement.IsDecrease():
			totalOut = totalOut.Add(l.Movement.Quantity)
		}
	}
	final := k.Item.CurrentQuantity
	if n := len(k.Lines); n > 0 {
		final = k.Lines[n-1].Balance
	}
	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	return row.New(30).Add(
		col.New(3).Add(code.NewQr(k.Item.ID, props.Rect{Percent: 90, Center: true})),
		col.New(3),
		col.New(3).Add(
			label("Entradas:"),
			label("Salidas:"),
			label("Saldo final:"),
		),
		col.New(3).Add(
			value(formatQty(totalIn)),
			value(formatQty(totalOut)),
			text.New(formatQty(final), props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 1,
			}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func detail(m entity.Movement) string {
	switch m.Type {
	case entity.MovementTypeInbound:
		return fmt.Sprintf("%s → %s", m.SourceDocument, m.DestinationLocation)
	case entity.MovementTypeOutbound:
		return fmt.Sprintf("%s / %s (%s)", m.DestinationDocument, m.DepartmentOrProject, m.SourceLocation)
	case entity.MovementTypeTransfer:
		return fmt.Sprintf("%s → %s", m.SourceLocation, m.DestinationLocation)
	case entity.MovementTypeAdjustment:
		s := m.AdjustmentReason
		if m.CorrectsMovementID != "" {
			s += " (corrige " + shortID(m.CorrectsMovementID) + ")"
		}
		return s
	}
	return ""
}

func rangeLabel(r entity.DateRange) string {
	from, to := "inicio", "hoy"
	if r.From != nil {
		from = r.From.Format("02/01/2006")
	}
	if r.To != nil {
		to = r.To.Format("02/01/2006")
	}
	return from + " - " + to
}

// formatQty sin ceros decimales sobrantes: "12", "2.5".
func formatQty(d decimal.Decimal) string {
	return d.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
