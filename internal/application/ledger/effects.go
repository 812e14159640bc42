package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	domledger "github.com/jhoicas/stock-ledger-api/internal/domain/ledger"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// applyDeltas aplica una lista de deltas de stock dentro de la transacción
// en curso. Cada ubicación se lee con bloqueo de fila (GetForUpdate) y se
// verifica que el resultado no baje de cero antes de escribir; como todo
// ocurre en la misma transacción SQL, un fallo en cualquier delta revierte
// los anteriores. Los decrementos vienen primero en la lista, así el caso
// común de stock insuficiente falla antes de tocar la ubicación destino.
func applyDeltas(stockRepo repository.StockRepository, itemID string, deltas []domledger.StockDelta, now time.Time) error {
	for _, d := range deltas {
		entry, err := stockRepo.GetForUpdate(itemID, d.LocationID)
		if err != nil {
			return err
		}
		newQty := entry.Quantity.Add(d.Delta)
		if newQty.LessThan(decimal.Zero) {
			return domain.ErrInsufficientStock
		}
		entry.Quantity = newQty
		entry.UpdatedAt = now
		if err := stockRepo.Upsert(entry); err != nil {
			return err
		}
	}
	return nil
}
