package repository

import (
	"time"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// TransactionFilter filtros para listar transacciones del log.
// Los campos string vacíos y los punteros nil se ignoran.
type TransactionFilter struct {
	ItemID     string
	LocationID string // coincide contra origen o destino
	Type       string
	Status     string
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

// TransactionRepository define el puerto de persistencia del log de
// transacciones. Append-mostly: los registros nunca se borran y su único
// campo mutable es el bloque de reversa (MarkUndone).
type TransactionRepository interface {
	Create(tx *entity.StockTransaction) error
	// GetByID retorna nil, nil si el registro no existe.
	GetByID(id string) (*entity.StockTransaction, error)
	// GetByIDForUpdate bloquea la fila del registro (SELECT FOR UPDATE) para
	// que dos reversas concurrentes del mismo id no pasen ambas la validación.
	GetByIDForUpdate(id string) (*entity.StockTransaction, error)

	// HasNewerCompleted indica si existe otra transacción COMPLETED del mismo
	// ítem con created_at estrictamente mayor. Es la consulta de la que
	// depende la restricción de recencia; está respaldada por el índice
	// (item_id, status, created_at).
	HasNewerCompleted(itemID string, createdAt time.Time, excludeID string) (bool, error)
	// FindMostRecentCompleted retorna la transacción COMPLETED más reciente
	// del ítem, o nil, nil si no hay ninguna.
	FindMostRecentCompleted(itemID string) (*entity.StockTransaction, error)

	// MarkUndone transiciona COMPLETED → UNDONE. UNDONE es terminal.
	MarkUndone(id string, undoneAt time.Time, undoneBy string) error

	List(filter TransactionFilter) ([]*entity.StockTransaction, error)
	// Count cuenta las coincidencias del filtro ignorando Limit/Offset.
	Count(filter TransactionFilter) (int, error)
}
