// Package memory provee una implementación en memoria del TxRunner y los
// repositorios del ledger, con la misma semántica de atomicidad que el
// adaptador PostgreSQL: los efectos de un Run commitean juntos o ninguno.
// Se usa en tests y para correr el servicio sin base de datos.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/application/ledger"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ ledger.TxRunner = (*Store)(nil)

type stockKey struct {
	itemID     string
	locationID string
}

// Store guarda stock y log bajo un mutex. Las transacciones (Run) se
// serializan entre sí; el rollback se implementa restaurando un snapshot,
// así un fallo a mitad de camino no deja efectos parciales.
type Store struct {
	mu    sync.Mutex
	stock map[stockKey]entity.StockEntry
	log   map[string]entity.StockTransaction
}

// NewStore construye un Store vacío.
func NewStore() *Store {
	return &Store{
		stock: make(map[stockKey]entity.StockEntry),
		log:   make(map[string]entity.StockTransaction),
	}
}

// Run ejecuta fn bajo el lock del Store con repos atados a él. Si fn falla,
// el estado se restaura al snapshot previo (equivalente al Rollback SQL).
func (s *Store) Run(ctx context.Context, fn func(
	txRepo repository.TransactionRepository,
	stockRepo repository.StockRepository,
) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stockSnap := make(map[stockKey]entity.StockEntry, len(s.stock))
	for k, v := range s.stock {
		stockSnap[k] = v
	}
	logSnap := make(map[string]entity.StockTransaction, len(s.log))
	for k, v := range s.log {
		logSnap[k] = v
	}

	if err := fn(&txRepo{s: s}, &stockRepo{s: s}); err != nil {
		s.stock = stockSnap
		s.log = logSnap
		return err
	}
	return nil
}

// TransactionRepository devuelve un repositorio independiente (toma el lock
// en cada llamada), para consultas fuera de una transacción.
func (s *Store) TransactionRepository() repository.TransactionRepository {
	return &txRepoStandalone{s: s}
}

// StockRepository devuelve un repositorio independiente para consultas.
func (s *Store) StockRepository() repository.StockRepository {
	return &stockRepoStandalone{s: s}
}

// ── Acceso interno (lock ya tomado) ──────────────────────────────────────────

func (s *Store) getStock(itemID, locationID string) *entity.StockEntry {
	if e, ok := s.stock[stockKey{itemID, locationID}]; ok {
		copied := e
		return &copied
	}
	return &entity.StockEntry{ItemID: itemID, LocationID: locationID, Quantity: decimal.Zero}
}

func (s *Store) upsertStock(entry *entity.StockEntry) {
	s.stock[stockKey{entry.ItemID, entry.LocationID}] = *entry
}

func (s *Store) listStockByLocation(locationID string, limit, offset int) []*entity.StockEntry {
	var list []*entity.StockEntry
	for k, e := range s.stock {
		if k.locationID == locationID {
			copied := e
			list = append(list, &copied)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ItemID < list[j].ItemID })
	return paginate(list, limit, offset)
}

func (s *Store) listStockByItem(itemID string) []*entity.StockEntry {
	var list []*entity.StockEntry
	for k, e := range s.stock {
		if k.itemID == itemID {
			copied := e
			list = append(list, &copied)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].LocationID < list[j].LocationID })
	return list
}

func (s *Store) getTx(id string) *entity.StockTransaction {
	if t, ok := s.log[id]; ok {
		copied := t
		return &copied
	}
	return nil
}

func (s *Store) createTx(t *entity.StockTransaction) {
	s.log[t.ID] = *t
}

func (s *Store) hasNewerCompleted(itemID string, createdAt time.Time, excludeID string) bool {
	for id, t := range s.log {
		if id == excludeID || t.ItemID != itemID || t.Status != entity.TxStatusCompleted {
			continue
		}
		if t.CreatedAt.After(createdAt) {
			return true
		}
	}
	return false
}

func (s *Store) findMostRecentCompleted(itemID string) *entity.StockTransaction {
	var newest *entity.StockTransaction
	for _, t := range s.log {
		if t.ItemID != itemID || t.Status != entity.TxStatusCompleted {
			continue
		}
		if newest == nil || t.CreatedAt.After(newest.CreatedAt) {
			copied := t
			newest = &copied
		}
	}
	return newest
}

func (s *Store) markUndone(id string, undoneAt time.Time, undoneBy string) bool {
	t, ok := s.log[id]
	if !ok || t.Status != entity.TxStatusCompleted {
		return false
	}
	t.Status = entity.TxStatusUndone
	t.UndoneAt = &undoneAt
	t.UndoneBy = &undoneBy
	s.log[id] = t
	return true
}

func (s *Store) listTx(filter repository.TransactionFilter) []*entity.StockTransaction {
	var list []*entity.StockTransaction
	for _, t := range s.log {
		if !matches(t, filter) {
			continue
		}
		copied := t
		list = append(list, &copied)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return paginate(list, filter.Limit, filter.Offset)
}

func (s *Store) countTx(filter repository.TransactionFilter) int {
	total := 0
	for _, t := range s.log {
		if matches(t, filter) {
			total++
		}
	}
	return total
}

func matches(t entity.StockTransaction, f repository.TransactionFilter) bool {
	if f.ItemID != "" && t.ItemID != f.ItemID {
		return false
	}
	if f.LocationID != "" {
		from := t.FromLocationID != nil && *t.FromLocationID == f.LocationID
		to := t.ToLocationID != nil && *t.ToLocationID == f.LocationID
		if !from && !to {
			return false
		}
	}
	if f.Type != "" && t.Type != f.Type {
		return false
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.From != nil && t.CreatedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && t.CreatedAt.After(*f.To) {
		return false
	}
	return true
}

func paginate[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
