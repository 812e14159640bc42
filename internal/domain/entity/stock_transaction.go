package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de transacción de stock.
const (
	TxTypePutaway = "PUTAWAY" // entrada a una ubicación
	TxTypeRemove  = "REMOVE"  // salida desde una ubicación
	TxTypeMove    = "MOVE"    // traslado entre ubicaciones
)

// Estados de una transacción.
const (
	TxStatusCompleted = "COMPLETED"
	TxStatusUndone    = "UNDONE"
)

// StockTransaction es un registro inmutable del log de movimientos.
// Los campos centrales (tipo, cantidad, ítem, ubicaciones, actor, fecha)
// nunca cambian tras el commit; solo el bloque de reversa (Status,
// UndoneAt, UndoneBy) transiciona COMPLETED → UNDONE, exactamente una vez.
// Un registro jamás se borra físicamente: la reversa muta el registro
// original en lugar de emitir un asiento compensatorio.
type StockTransaction struct {
	ID             string
	Type           string
	ItemID         string
	FromLocationID *string // requerido en REMOVE/MOVE, ausente en PUTAWAY
	ToLocationID   *string // requerido en PUTAWAY/MOVE, ausente en REMOVE
	Quantity       decimal.Decimal // siempre > 0
	ActorID        string
	CreatedAt      time.Time

	Status   string
	UndoneAt *time.Time
	UndoneBy *string
}

// IsUndone indica si la transacción ya fue revertida.
func (t *StockTransaction) IsUndone() bool {
	return t.Status == TxStatusUndone
}
