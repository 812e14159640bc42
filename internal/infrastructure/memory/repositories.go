package memory

import (
	"time"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// Repos atados a una transacción (Run): el Store ya tiene el lock tomado,
// así que operan directo sobre el estado.

type stockRepo struct{ s *Store }

var _ repository.StockRepository = (*stockRepo)(nil)

func (r *stockRepo) Get(itemID, locationID string) (*entity.StockEntry, error) {
	return r.s.getStock(itemID, locationID), nil
}

// GetForUpdate en memoria es igual a Get: el lock del Run ya serializa las
// transacciones entre sí.
func (r *stockRepo) GetForUpdate(itemID, locationID string) (*entity.StockEntry, error) {
	return r.s.getStock(itemID, locationID), nil
}

func (r *stockRepo) Upsert(entry *entity.StockEntry) error {
	r.s.upsertStock(entry)
	return nil
}

func (r *stockRepo) ListByLocation(locationID string, limit, offset int) ([]*entity.StockEntry, error) {
	return r.s.listStockByLocation(locationID, limit, offset), nil
}

func (r *stockRepo) ListByItem(itemID string) ([]*entity.StockEntry, error) {
	return r.s.listStockByItem(itemID), nil
}

type txRepo struct{ s *Store }

var _ repository.TransactionRepository = (*txRepo)(nil)

func (r *txRepo) Create(t *entity.StockTransaction) error {
	if existing := r.s.getTx(t.ID); existing != nil {
		return domain.ErrConflict
	}
	r.s.createTx(t)
	return nil
}

func (r *txRepo) GetByID(id string) (*entity.StockTransaction, error) {
	return r.s.getTx(id), nil
}

func (r *txRepo) GetByIDForUpdate(id string) (*entity.StockTransaction, error) {
	return r.s.getTx(id), nil
}

func (r *txRepo) HasNewerCompleted(itemID string, createdAt time.Time, excludeID string) (bool, error) {
	return r.s.hasNewerCompleted(itemID, createdAt, excludeID), nil
}

func (r *txRepo) FindMostRecentCompleted(itemID string) (*entity.StockTransaction, error) {
	return r.s.findMostRecentCompleted(itemID), nil
}

func (r *txRepo) MarkUndone(id string, undoneAt time.Time, undoneBy string) error {
	if !r.s.markUndone(id, undoneAt, undoneBy) {
		return domain.ErrAlreadyUndone
	}
	return nil
}

func (r *txRepo) List(filter repository.TransactionFilter) ([]*entity.StockTransaction, error) {
	return r.s.listTx(filter), nil
}

func (r *txRepo) Count(filter repository.TransactionFilter) (int, error) {
	return r.s.countTx(filter), nil
}

// Repos independientes: toman el lock por llamada, para las proyecciones de
// solo lectura fuera de una transacción.

type stockRepoStandalone struct{ s *Store }

var _ repository.StockRepository = (*stockRepoStandalone)(nil)

func (r *stockRepoStandalone) Get(itemID, locationID string) (*entity.StockEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.getStock(itemID, locationID), nil
}

func (r *stockRepoStandalone) GetForUpdate(itemID, locationID string) (*entity.StockEntry, error) {
	return r.Get(itemID, locationID)
}

func (r *stockRepoStandalone) Upsert(entry *entity.StockEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.upsertStock(entry)
	return nil
}

func (r *stockRepoStandalone) ListByLocation(locationID string, limit, offset int) ([]*entity.StockEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.listStockByLocation(locationID, limit, offset), nil
}

func (r *stockRepoStandalone) ListByItem(itemID string) ([]*entity.StockEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.listStockByItem(itemID), nil
}

type txRepoStandalone struct{ s *Store }

var _ repository.TransactionRepository = (*txRepoStandalone)(nil)

func (r *txRepoStandalone) Create(t *entity.StockTransaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if existing := r.s.getTx(t.ID); existing != nil {
		return domain.ErrConflict
	}
	r.s.createTx(t)
	return nil
}

func (r *txRepoStandalone) GetByID(id string) (*entity.StockTransaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.getTx(id), nil
}

func (r *txRepoStandalone) GetByIDForUpdate(id string) (*entity.StockTransaction, error) {
	return r.GetByID(id)
}

func (r *txRepoStandalone) HasNewerCompleted(itemID string, createdAt time.Time, excludeID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.hasNewerCompleted(itemID, createdAt, excludeID), nil
}

func (r *txRepoStandalone) FindMostRecentCompleted(itemID string) (*entity.StockTransaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.findMostRecentCompleted(itemID), nil
}

func (r *txRepoStandalone) MarkUndone(id string, undoneAt time.Time, undoneBy string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if !r.s.markUndone(id, undoneAt, undoneBy) {
		return domain.ErrAlreadyUndone
	}
	return nil
}

func (r *txRepoStandalone) List(filter repository.TransactionFilter) ([]*entity.StockTransaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.listTx(filter), nil
}

func (r *txRepoStandalone) Count(filter repository.TransactionFilter) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.countTx(filter), nil
}
