package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/ledger"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// LedgerHandler maneja las peticiones HTTP del ledger de stock (protegido).
type LedgerHandler struct {
	applyUC *ledger.ApplyUseCase
	undoUC  *ledger.UndoUseCase
	queryUC *ledger.QueryUseCase
}

// NewLedgerHandler construye el handler.
func NewLedgerHandler(applyUC *ledger.ApplyUseCase, undoUC *ledger.UndoUseCase, queryUC *ledger.QueryUseCase) *LedgerHandler {
	return &LedgerHandler{applyUC: applyUC, undoUC: undoUC, queryUC: queryUC}
}

// ApplyMovement godoc
// @Summary      Registrar movimiento de stock
// @Tags         ledger
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ApplyMovementRequest  true  "type (PUTAWAY|REMOVE|MOVE), item_id, quantity, from_location_id/to_location_id según tipo"
// @Success      201   {object}  dto.TransactionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/ledger/movements [post]
func (h *LedgerHandler) ApplyMovement(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.ApplyMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	record, err := h.applyUC.Apply(c.Context(), ledger.ApplyInput{
		Type:           in.Type,
		ItemID:         in.ItemID,
		Quantity:       in.Quantity,
		FromLocationID: in.FromLocationID,
		ToLocationID:   in.ToLocationID,
		ActorID:        userID,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewTransactionResponse(record))
}

// UndoMovement godoc
// @Summary      Revertir la transacción COMPLETED más reciente de un ítem
// @Description  Solo la transacción cronológicamente más nueva del ítem es
//               elegible; las anteriores deben esperar a que las más nuevas
//               se reviertan primero.
// @Tags         ledger
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.UndoRequest  true  "transaction_id"
// @Success      200   {object}  dto.TransactionResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/ledger/undo [post]
func (h *LedgerHandler) UndoMovement(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.UndoRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	record, err := h.undoUC.Undo(c.Context(), in.TransactionID, userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewTransactionResponse(record))
}

// ListTransactions godoc
// @Summary      Listar transacciones del log con filtros
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        item_id      query  string  false  "Filtrar por ítem"
// @Param        location_id  query  string  false  "Filtrar por ubicación (origen o destino)"
// @Param        type         query  string  false  "PUTAWAY | REMOVE | MOVE"
// @Param        status       query  string  false  "COMPLETED | UNDONE"
// @Param        from         query  string  false  "Fecha mínima (RFC3339)"
// @Param        to           query  string  false  "Fecha máxima (RFC3339)"
// @Success      200  {object}  dto.TransactionListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/ledger/transactions [get]
func (h *LedgerHandler) ListTransactions(c *fiber.Ctx) error {
	var q dto.ListTransactionsQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	q.DefaultPage()

	filter := repository.TransactionFilter{
		ItemID:     q.ItemID,
		LocationID: q.LocationID,
		Type:       q.Type,
		Status:     q.Status,
		Limit:      q.Limit,
		Offset:     q.Offset,
	}
	if q.From != "" {
		t, err := time.Parse(time.RFC3339, q.From)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "from debe ser RFC3339"})
		}
		filter.From = &t
	}
	if q.To != "" {
		t, err := time.Parse(time.RFC3339, q.To)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "to debe ser RFC3339"})
		}
		filter.To = &t
	}

	list, total, err := h.queryUC.ListTransactions(c.Context(), filter)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.TransactionResponse, 0, len(list))
	for _, t := range list {
		out = append(out, dto.NewTransactionResponse(t))
	}
	return c.JSON(dto.TransactionListResponse{
		Items: out,
		Page:  dto.PageResponse{Limit: q.Limit, Offset: q.Offset, Total: total},
	})
}

// GetTransaction godoc
// @Summary      Obtener una transacción por id
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la transacción"
// @Success      200  {object}  dto.TransactionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/ledger/transactions/{id} [get]
func (h *LedgerHandler) GetTransaction(c *fiber.Ctx) error {
	record, err := h.queryUC.GetTransaction(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewTransactionResponse(record))
}

// ListStock godoc
// @Summary      Stock actual por ubicación o por ítem
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        location_id  query  string  false  "Stock en reposo de una ubicación"
// @Param        item_id      query  string  false  "Ubicaciones con stock de un ítem"
// @Success      200  {array}   dto.StockEntryResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/ledger/stock [get]
func (h *LedgerHandler) ListStock(c *fiber.Ctx) error {
	locationID := c.Query("location_id")
	itemID := c.Query("item_id")

	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	page.DefaultPage()

	switch {
	case locationID != "":
		entries, err := h.queryUC.ListStockByLocation(c.Context(), locationID, page.Limit, page.Offset)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(mapStock(entries))
	case itemID != "":
		entries, err := h.queryUC.ListStockByItem(c.Context(), itemID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(mapStock(entries))
	default:
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "se requiere location_id o item_id"})
	}
}

// respondError mapea la taxonomía de errores del dominio a códigos HTTP.
func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "transacción no encontrada"})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente"})
	case errors.Is(err, domain.ErrAlreadyUndone):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "ALREADY_UNDONE", Message: "la transacción ya fue revertida"})
	case errors.Is(err, domain.ErrNotLatest):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "NOT_LATEST", Message: "primero deben revertirse las transacciones más recientes del ítem"})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: "modificación concurrente, reintente la operación"})
	case errors.Is(err, domain.ErrStorageUnavailable):
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "STORAGE_UNAVAILABLE", Message: "almacenamiento no disponible"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}

func mapStock(entries []*entity.StockEntry) []dto.StockEntryResponse {
	out := make([]dto.StockEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.NewStockEntryResponse(e))
	}
	return out
}
