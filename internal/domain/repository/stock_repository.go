package repository

import "github.com/jhoicas/stock-ledger-api/internal/domain/entity"

// StockRepository define el puerto para consultar/actualizar el stock por
// ítem+ubicación. Las mutaciones se usan dentro de transacciones para
// garantizar consistencia.
type StockRepository interface {
	// Get devuelve la entrada; si no existe fila retorna una entrada con
	// cantidad cero (la ausencia equivale a cero).
	Get(itemID, locationID string) (*entity.StockEntry, error)
	// GetForUpdate igual que Get pero bloquea la fila (SELECT FOR UPDATE).
	GetForUpdate(itemID, locationID string) (*entity.StockEntry, error)
	Upsert(entry *entity.StockEntry) error

	// Proyecciones de solo lectura.
	ListByLocation(locationID string, limit, offset int) ([]*entity.StockEntry, error)
	ListByItem(itemID string) ([]*entity.StockEntry, error)
}
