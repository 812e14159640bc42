package ledger

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// QueryUseCase proyecciones de solo lectura sobre el log y el stock.
// Usan repositorios atados al pool, sin transacción.
type QueryUseCase struct {
	txRepo    repository.TransactionRepository
	stockRepo repository.StockRepository
}

// NewQueryUseCase construye el caso de uso de consultas.
func NewQueryUseCase(txRepo repository.TransactionRepository, stockRepo repository.StockRepository) *QueryUseCase {
	return &QueryUseCase{txRepo: txRepo, stockRepo: stockRepo}
}

// ListTransactions lista transacciones con filtros por ítem, ubicación,
// tipo, estado y rango de fechas. Retorna la página y el total de
// coincidencias del filtro (sin paginar).
func (uc *QueryUseCase) ListTransactions(ctx context.Context, filter repository.TransactionFilter) ([]*entity.StockTransaction, int, error) {
	filter.Limit = clampLimit(filter.Limit)
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	list, err := uc.txRepo.List(filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := uc.txRepo.Count(filter)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// clampLimit acota el tamaño de página a [1, 100]; cero o negativo usa el
// valor por defecto. Un limit por encima del máximo se recorta, no se
// reinicia al por defecto.
func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return 20
	case limit > 100:
		return 100
	default:
		return limit
	}
}

// GetTransaction obtiene una transacción por id.
func (uc *QueryUseCase) GetTransaction(ctx context.Context, id string) (*entity.StockTransaction, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	record, err := uc.txRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, domain.ErrNotFound
	}
	return record, nil
}

// ListStockByLocation lista el stock en reposo de una ubicación.
func (uc *QueryUseCase) ListStockByLocation(ctx context.Context, locationID string, limit, offset int) ([]*entity.StockEntry, error) {
	if locationID == "" {
		return nil, domain.ErrInvalidInput
	}
	limit = clampLimit(limit)
	if offset < 0 {
		offset = 0
	}
	return uc.stockRepo.ListByLocation(locationID, limit, offset)
}

// ListStockByItem lista las ubicaciones donde un ítem tiene stock registrado.
func (uc *QueryUseCase) ListStockByItem(ctx context.Context, itemID string) ([]*entity.StockEntry, error) {
	if itemID == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.stockRepo.ListByItem(itemID)
}
