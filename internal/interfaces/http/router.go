package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventory-ledger/internal/application/inventory"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Movements *inventory.MovementService
	Queries   *inventory.QueryUseCase
	Reconcile *inventory.ReconcileUseCase
	Kardex    *inventory.KardexUseCase
	JWTSecret string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	invGroup := protected.Group("/inventory")
	h := NewInventoryHandler(deps.Movements, deps.Queries, deps.Reconcile, deps.Kardex)

	// Solo admin y bodeguero registran movimientos; la lectura es para cualquier rol.
	invGroup.Post("/movements", RequireRole(RoleAdmin, RoleBodeguero), h.SubmitMovement)
	invGroup.Get("/movements", h.ListMovements)
	invGroup.Get("/items/:id/movements", h.ItemHistory)
	invGroup.Get("/items/:id/reconciliation", h.Reconcile)
	invGroup.Get("/items/:id/kardex.pdf", h.KardexPDF)
}
