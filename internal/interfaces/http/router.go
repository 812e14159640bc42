package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger-api/internal/application/ledger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ApplyUC   *ledger.ApplyUseCase
	UndoUC    *ledger.UndoUseCase
	QueryUC   *ledger.QueryUseCase
	JWTSecret string
	// UndoRoles roles autorizados a revertir transacciones.
	UndoRoles []string
}

// Router registra las rutas de la API. Todas las rutas del ledger requieren
// Bearer Token; la reversa además exige uno de los roles de UndoRoles.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	handler := NewLedgerHandler(deps.ApplyUC, deps.UndoUC, deps.QueryUC)

	ledgerGroup := protected.Group("/ledger")
	ledgerGroup.Post("/movements", handler.ApplyMovement)
	ledgerGroup.Post("/undo", RequireRole(deps.UndoRoles...), handler.UndoMovement)
	ledgerGroup.Get("/transactions", handler.ListTransactions)
	ledgerGroup.Get("/transactions/:id", handler.GetTransaction)
	ledgerGroup.Get("/stock", handler.ListStock)
}
