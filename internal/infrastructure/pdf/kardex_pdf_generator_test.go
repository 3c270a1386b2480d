package pdf_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventory-ledger/internal/application/inventory"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/jhoicas/inventory-ledger/internal/infrastructure/pdf"
)

func TestRender_GeneraPDF(t *testing.T) {
	date := time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC)
	k := inventory.Kardex{
		Item: entity.StockedItem{ID: "RM001", UnitOfMeasure: "kg", CurrentQuantity: decimal.NewFromInt(40), Location: "A"},
		Lines: []inventory.KardexLine{
			{Movement: entity.Movement{ID: "1", Type: entity.MovementTypeInbound, Quantity: decimal.NewFromInt(100), Date: date,
				ResponsibleParty: "Recepción", SourceDocument: "OC-1", DestinationLocation: "A"}, Balance: decimal.NewFromInt(100)},
			{Movement: entity.Movement{ID: "2", Type: entity.MovementTypeOutbound, Quantity: decimal.NewFromInt(60), Date: date,
				ResponsibleParty: "Planta", DestinationDocument: "REQ-1", DepartmentOrProject: "P1", SourceLocation: "A"}, Balance: decimal.NewFromInt(40)},
		},
	}

	b, err := pdf.NewKardexPDFGenerator().Render(k)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, []byte("%PDF")), "el documento debe ser un PDF")
}

func TestRender_SinMovimientos(t *testing.T) {
	b, err := pdf.NewKardexPDFGenerator().Render(inventory.Kardex{Item: entity.StockedItem{ID: "VACIO"}})
	require.NoError(t, err)
	assert.NotEmpty(t, b)
}
