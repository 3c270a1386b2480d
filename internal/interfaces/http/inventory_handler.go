package http

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventory-ledger/internal/application/dto"
	"github.com/jhoicas/inventory-ledger/internal/application/inventory"
	"github.com/jhoicas/inventory-ledger/internal/domain"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
)

// InventoryHandler maneja las peticiones HTTP de movimientos, historial y conciliación (protegido).
type InventoryHandler struct {
	movements *inventory.MovementService
	queries   *inventory.QueryUseCase
	reconcile *inventory.ReconcileUseCase
	kardex    *inventory.KardexUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(
	movements *inventory.MovementService,
	queries *inventory.QueryUseCase,
	reconcile *inventory.ReconcileUseCase,
	kardex *inventory.KardexUseCase,
) *InventoryHandler {
	return &InventoryHandler{movements: movements, queries: queries, reconcile: reconcile, kardex: kardex}
}

// SubmitMovement godoc
// @Summary      Registrar movimiento de inventario
// @Description  Entrada, salida, traslado o ajuste. Valida, actualiza el stock del ítem y
//
//	deja el registro inmutable en el ledger.
//
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SubmitMovementRequest  true  "item_id, type, quantity, date, responsible_party y los campos del tipo"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) SubmitMovement(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.SubmitMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	req, err := in.ToDomain(userID)
	if err != nil {
		return writeError(c, err)
	}
	mov, err := h.movements.SubmitMovement(c.UserContext(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromMovement(*mov))
}

// ListMovements godoc
// @Summary      Consultar movimientos
// @Description  Movimientos por fecha ascendente. Todos los filtros son opcionales.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        item_id            query  string  false  "Ítem"
// @Param        type               query  string  false  "INBOUND | OUTBOUND | TRANSFER | ADJUSTMENT"
// @Param        responsible_party  query  string  false  "Responsable"
// @Param        from               query  string  false  "Desde (YYYY-MM-DD o RFC3339)"
// @Param        to                 query  string  false  "Hasta, inclusivo (YYYY-MM-DD o RFC3339)"
// @Success      200  {object}  dto.MovementListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	r, err := rangeFromQuery(c)
	if err != nil {
		return writeError(c, err)
	}
	filter := entity.MovementFilter{
		ItemID:           c.Query("item_id"),
		Type:             entity.MovementType(strings.ToUpper(strings.TrimSpace(c.Query("type")))),
		ResponsibleParty: c.Query("responsible_party"),
		Range:            r,
	}
	movs, err := h.queries.QueryMovements(c.UserContext(), filter)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FromMovements(movs))
}

// ItemHistory godoc
// @Summary      Historial de un ítem
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id    path   string  true   "Ítem"
// @Param        from  query  string  false  "Desde (YYYY-MM-DD o RFC3339)"
// @Param        to    query  string  false  "Hasta, inclusivo (YYYY-MM-DD o RFC3339)"
// @Success      200  {object}  dto.MovementListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/items/{id}/movements [get]
func (h *InventoryHandler) ItemHistory(c *fiber.Ctx) error {
	r, err := rangeFromQuery(c)
	if err != nil {
		return writeError(c, err)
	}
	movs, err := h.queries.QueryItemHistory(c.UserContext(), c.Params("id"), r)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FromMovements(movs))
}

// Reconcile godoc
// @Summary      Conciliar stock contra historial
// @Description  Reconstruye el ítem desde cero con su historial y lo compara con el stock guardado.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Ítem"
// @Success      200  {object}  dto.ReconciliationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/items/{id}/reconciliation [get]
func (h *InventoryHandler) Reconcile(c *fiber.Ctx) error {
	rep, err := h.reconcile.Reconcile(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FromReconciliation(*rep))
}

// KardexPDF godoc
// @Summary      Tarjeta kardex en PDF
// @Tags         inventory
// @Security     Bearer
// @Produce      application/pdf
// @Param        id    path   string  true   "Ítem"
// @Param        from  query  string  false  "Desde (YYYY-MM-DD o RFC3339)"
// @Param        to    query  string  false  "Hasta, inclusivo (YYYY-MM-DD o RFC3339)"
// @Success      200  {file}    file
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/items/{id}/kardex.pdf [get]
func (h *InventoryHandler) KardexPDF(c *fiber.Ctx) error {
	r, err := rangeFromQuery(c)
	if err != nil {
		return writeError(c, err)
	}
	id := c.Params("id")
	pdf, err := h.kardex.GeneratePDF(c.UserContext(), id, r)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="kardex-%s.pdf"`, id))
	return c.Send(pdf)
}

func rangeFromQuery(c *fiber.Ctx) (entity.DateRange, error) {
	var r entity.DateRange
	if s := strings.TrimSpace(c.Query("from")); s != "" {
		t, err := dto.ParseDate(s, false)
		if err != nil {
			return r, fmt.Errorf("%w: from %q", domain.ErrInvalidInput, s)
		}
		r.From = &t
	}
	if s := strings.TrimSpace(c.Query("to")); s != "" {
		t, err := dto.ParseDate(s, true)
		if err != nil {
			return r, fmt.Errorf("%w: to %q", domain.ErrInvalidInput, s)
		}
		r.To = &t
	}
	return r, nil
}

// writeError traduce errores de dominio a respuestas HTTP.
func writeError(c *fiber.Ctx, err error) error {
	var (
		ve *domain.ValidationError
		se *domain.InsufficientStockError
		pe *domain.PersistenceError
	)
	switch {
	case errors.As(err, &ve):
		if ve.OnlyItemNotFound() {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: string(domain.IssueItemNotFound), Message: ve.Issues[0].Message})
		}
		issues := make([]dto.IssueDTO, 0, len(ve.Issues))
		for _, is := range ve.Issues {
			issues = append(issues, dto.IssueDTO{Code: string(is.Code), Field: is.Field, Message: is.Message})
		}
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "la solicitud incumple una o más reglas", Issues: issues})
	case errors.As(err, &se):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code:    "INSUFFICIENT_STOCK",
			Message: se.Error(),
			Details: map[string]interface{}{
				"item_id":   se.ItemID,
				"available": se.Available.String(),
				"requested": se.Requested.String(),
			},
		})
	case errors.As(err, &pe):
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Code:    "PERSISTENCE_ERROR",
			Message: "el stock se actualizó pero el movimiento quedó pendiente de registro",
			Details: map[string]interface{}{
				"movement_id":        pe.Movement.ID,
				"item_id":            pe.Movement.ItemID,
				"resulting_quantity": pe.Movement.ResultingQuantity.String(),
				"escalated":          pe.Escalated,
			},
		})
	case errors.Is(err, domain.ErrItemNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: string(domain.IssueItemNotFound), Message: "ítem no encontrado"})
	case errors.Is(err, domain.ErrInvalidMovementType), errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return c.Status(fiber.StatusRequestTimeout).JSON(dto.ErrorResponse{Code: "CANCELLED", Message: "la solicitud se canceló antes de modificar el stock"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
