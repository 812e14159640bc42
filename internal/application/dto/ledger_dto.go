package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// ApplyMovementRequest body para POST /api/ledger/movements.
// PUTAWAY usa to_location_id; REMOVE usa from_location_id; MOVE usa ambos.
type ApplyMovementRequest struct {
	Type           string          `json:"type"`
	ItemID         string          `json:"item_id"`
	Quantity       decimal.Decimal `json:"quantity"`
	FromLocationID *string         `json:"from_location_id,omitempty"`
	ToLocationID   *string         `json:"to_location_id,omitempty"`
}

// UndoRequest body para POST /api/ledger/undo.
type UndoRequest struct {
	TransactionID string `json:"transaction_id"`
}

// TransactionResponse representación de un registro del log.
type TransactionResponse struct {
	ID             string          `json:"id"`
	Type           string          `json:"type"`
	ItemID         string          `json:"item_id"`
	FromLocationID *string         `json:"from_location_id,omitempty"`
	ToLocationID   *string         `json:"to_location_id,omitempty"`
	Quantity       decimal.Decimal `json:"quantity"`
	ActorID        string          `json:"actor_id"`
	CreatedAt      time.Time       `json:"created_at"`
	Status         string          `json:"status"`
	UndoneAt       *time.Time      `json:"undone_at,omitempty"`
	UndoneBy       *string         `json:"undone_by,omitempty"`
}

// NewTransactionResponse mapea la entidad al DTO de respuesta.
func NewTransactionResponse(t *entity.StockTransaction) TransactionResponse {
	return TransactionResponse{
		ID:             t.ID,
		Type:           t.Type,
		ItemID:         t.ItemID,
		FromLocationID: t.FromLocationID,
		ToLocationID:   t.ToLocationID,
		Quantity:       t.Quantity,
		ActorID:        t.ActorID,
		CreatedAt:      t.CreatedAt,
		Status:         t.Status,
		UndoneAt:       t.UndoneAt,
		UndoneBy:       t.UndoneBy,
	}
}

// StockEntryResponse stock en reposo de un ítem en una ubicación.
type StockEntryResponse struct {
	ItemID     string          `json:"item_id"`
	LocationID string          `json:"location_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// NewStockEntryResponse mapea la entidad al DTO de respuesta.
func NewStockEntryResponse(e *entity.StockEntry) StockEntryResponse {
	return StockEntryResponse{
		ItemID:     e.ItemID,
		LocationID: e.LocationID,
		Quantity:   e.Quantity,
		UpdatedAt:  e.UpdatedAt,
	}
}

// TransactionListResponse lista paginada de transacciones del log.
type TransactionListResponse struct {
	Items []TransactionResponse `json:"items"`
	Page  PageResponse          `json:"page"`
}

// ListTransactionsQuery query params para GET /api/ledger/transactions.
type ListTransactionsQuery struct {
	ItemID     string `query:"item_id"`
	LocationID string `query:"location_id"`
	Type       string `query:"type"`
	Status     string `query:"status"`
	From       string `query:"from"` // RFC3339
	To         string `query:"to"`   // RFC3339
	PageRequest
}
