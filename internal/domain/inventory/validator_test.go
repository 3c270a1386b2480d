package inventory_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventory-ledger/internal/domain"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/jhoicas/inventory-ledger/internal/domain/inventory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

var (
	now     = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	ayer    = now.AddDate(0, 0, -1)
	testRM1 = entity.StockedItem{ID: "RM001", UnitOfMeasure: "kg", CurrentQuantity: decimal.NewFromInt(150), Location: "A"}
)

func vcWithItem() inventory.ValidationContext {
	item := testRM1
	return inventory.ValidationContext{Item: &item, Now: now}
}

func baseRequest(d entity.MovementDetails) entity.MovementRequest {
	return entity.MovementRequest{
		ItemID:           "RM001",
		Quantity:         decimal.NewFromInt(10),
		Date:             ayer,
		ResponsibleParty: "Laura Gómez",
		Details:          d,
	}
}

func issueCodes(t *testing.T, err error) []domain.IssueCode {
	t.Helper()
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve), "se esperaba *domain.ValidationError, llegó %v", err)
	codes := make([]domain.IssueCode, 0, len(ve.Issues))
	for _, is := range ve.Issues {
		codes = append(codes, is.Code)
	}
	return codes
}

func missingFields(t *testing.T, err error) []string {
	t.Helper()
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	var fields []string
	for _, is := range ve.Issues {
		if is.Code == domain.IssueMissingField {
			fields = append(fields, is.Field)
		}
	}
	return fields
}

// ──────────────────────────────────────────────────────────────────────────────
// Reglas universales
// ──────────────────────────────────────────────────────────────────────────────

func TestValidate_EntradaValida(t *testing.T) {
	req := baseRequest(entity.InboundDetails{SourceDocument: " OC-100 ", DestinationLocation: "Bodega 1"})
	req.ResponsibleParty = "  Laura Gómez  "

	out, err := inventory.Validate(req, vcWithItem())
	require.NoError(t, err)
	assert.Equal(t, "Laura Gómez", out.ResponsibleParty, "el responsable se recorta")
	d, ok := out.Details.(entity.InboundDetails)
	require.True(t, ok)
	assert.Equal(t, "OC-100", d.SourceDocument)
}

func TestValidate_ReportaTodasLasReglas(t *testing.T) {
	req := entity.MovementRequest{
		ItemID:   "NOPE",
		Quantity: decimal.Zero,
		Date:     now.Add(time.Hour),
		Details:  entity.InboundDetails{},
	}
	_, err := inventory.Validate(req, inventory.ValidationContext{Now: now})
	require.Error(t, err)

	codes := issueCodes(t, err)
	assert.Contains(t, codes, domain.IssueItemNotFound)
	assert.Contains(t, codes, domain.IssueInvalidQuantity)
	assert.Contains(t, codes, domain.IssueInvalidDate)
	assert.Contains(t, codes, domain.IssueMissingResponsibleParty)
	assert.ElementsMatch(t, []string{"source_document", "destination_location"}, missingFields(t, err))

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
	assert.ErrorIs(t, err, domain.ErrInvalidDate)
	assert.NotErrorIs(t, err, domain.ErrSameLocationTransfer)
}

func TestValidate_CantidadNegativa(t *testing.T) {
	req := baseRequest(entity.InboundDetails{SourceDocument: "OC-1", DestinationLocation: "B"})
	req.Quantity = decimal.NewFromInt(-5)

	_, err := inventory.Validate(req, vcWithItem())
	assert.Equal(t, []domain.IssueCode{domain.IssueInvalidQuantity}, issueCodes(t, err))
}

func TestValidate_CantidadFueraDeEscala(t *testing.T) {
	cases := []struct {
		name     string
		quantity string
	}{
		{"cinco decimales", "0.00001"},
		{"decimales sobrantes", "12.34567"},
		{"igual al máximo", "100000000000000"},
		{"sobre el máximo", "123456789012345.5"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := baseRequest(entity.InboundDetails{SourceDocument: "OC-1", DestinationLocation: "B"})
			req.Quantity = decimal.RequireFromString(tc.quantity)

			_, err := inventory.Validate(req, vcWithItem())
			assert.Equal(t, []domain.IssueCode{domain.IssueInvalidQuantity}, issueCodes(t, err))
		})
	}
}

func TestValidate_CantidadEnElLimiteDeEscala(t *testing.T) {
	for _, q := range []string{"0.0001", "12.3400000", "99999999999999.9999"} {
		req := baseRequest(entity.InboundDetails{SourceDocument: "OC-1", DestinationLocation: "B"})
		req.Quantity = decimal.RequireFromString(q)

		_, err := inventory.Validate(req, vcWithItem())
		assert.NoError(t, err, q)
	}
}

func TestValidate_FechaIgualAlRegistroEsValida(t *testing.T) {
	req := baseRequest(entity.InboundDetails{SourceDocument: "OC-1", DestinationLocation: "B"})
	req.Date = now

	_, err := inventory.Validate(req, vcWithItem())
	assert.NoError(t, err)
}

func TestValidate_FechaCeroEsCampoFaltante(t *testing.T) {
	req := baseRequest(entity.InboundDetails{SourceDocument: "OC-1", DestinationLocation: "B"})
	req.Date = time.Time{}

	_, err := inventory.Validate(req, vcWithItem())
	assert.Equal(t, []string{"date"}, missingFields(t, err))
}

func TestValidate_SinDetalleEsTipoInvalido(t *testing.T) {
	req := baseRequest(nil)
	_, err := inventory.Validate(req, vcWithItem())
	assert.Equal(t, []domain.IssueCode{domain.IssueInvalidMovementType}, issueCodes(t, err))
}

// ──────────────────────────────────────────────────────────────────────────────
// Reglas por tipo
// ──────────────────────────────────────────────────────────────────────────────

func TestValidate_SalidaCamposObligatorios(t *testing.T) {
	_, err := inventory.Validate(baseRequest(entity.OutboundDetails{}), vcWithItem())
	assert.ElementsMatch(t,
		[]string{"destination_document", "department_or_project", "source_location"},
		missingFields(t, err))
}

func TestValidate_TrasladoMismaUbicacion(t *testing.T) {
	_, err := inventory.Validate(baseRequest(entity.TransferDetails{SourceLocation: "A", DestinationLocation: "A"}), vcWithItem())
	assert.Equal(t, []domain.IssueCode{domain.IssueSameLocationTransfer}, issueCodes(t, err))
	assert.ErrorIs(t, err, domain.ErrSameLocationTransfer)
}

func TestValidate_TrasladoMismaUbicacionIgnoraMayusculasYEspacios(t *testing.T) {
	_, err := inventory.Validate(baseRequest(entity.TransferDetails{SourceLocation: "bodega a", DestinationLocation: " Bodega A "}), vcWithItem())
	assert.ErrorIs(t, err, domain.ErrSameLocationTransfer)
}

func TestValidate_AjusteSinDireccionNiMotivo(t *testing.T) {
	_, err := inventory.Validate(baseRequest(entity.AdjustmentDetails{}), vcWithItem())
	assert.ElementsMatch(t, []string{"adjustment_direction", "adjustment_reason"}, missingFields(t, err))
}

func TestValidate_AjusteDireccionInvalida(t *testing.T) {
	_, err := inventory.Validate(baseRequest(entity.AdjustmentDetails{Direction: "SIDEWAYS", Reason: "conteo"}), vcWithItem())
	assert.Equal(t, []domain.IssueCode{domain.IssueInvalidAdjustmentDirection}, issueCodes(t, err))
}

func TestValidate_CorreccionDeMovimientoDeOtroItem(t *testing.T) {
	vc := vcWithItem()
	vc.CorrectedMovement = &entity.Movement{ID: "mov-1", ItemID: "OTRO"}
	req := baseRequest(entity.AdjustmentDetails{Direction: entity.AdjustmentDecrease, Reason: "error de digitación", CorrectsMovementID: "mov-1"})

	_, err := inventory.Validate(req, vc)
	assert.ErrorIs(t, err, domain.ErrCorrectedMovementNotFound)
}

func TestValidate_CorreccionValida(t *testing.T) {
	vc := vcWithItem()
	vc.CorrectedMovement = &entity.Movement{ID: "mov-1", ItemID: "RM001"}
	req := baseRequest(entity.AdjustmentDetails{Direction: entity.AdjustmentDecrease, Reason: "error de digitación", CorrectsMovementID: "mov-1"})

	out, err := inventory.Validate(req, vc)
	require.NoError(t, err)
	assert.Equal(t, "mov-1", out.Details.(entity.AdjustmentDetails).CorrectsMovementID)
}

func TestValidate_MismaSolicitudMismoError(t *testing.T) {
	req := baseRequest(entity.TransferDetails{SourceLocation: "A"})
	_, err1 := inventory.Validate(req, vcWithItem())
	_, err2 := inventory.Validate(req, vcWithItem())
	require.Error(t, err1)
	assert.Equal(t, err1, err2)
}
