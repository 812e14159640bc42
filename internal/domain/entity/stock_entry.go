package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockEntry representa la cantidad en reposo de un ítem en una ubicación.
// Llave única (ItemID, LocationID); la ausencia de fila equivale a cantidad
// cero. Se crea en el primer movimiento entrante y nunca se borra: una
// cantidad cero es un estado de reposo válido, no un tombstone.
type StockEntry struct {
	ItemID     string
	LocationID string
	Quantity   decimal.Decimal // siempre >= 0
	UpdatedAt  time.Time
}
