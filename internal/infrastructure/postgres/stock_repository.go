package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con
// pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// Get obtiene la entrada de stock de un ítem en una ubicación. Si no hay
// fila devuelve una entrada con cantidad cero: la ausencia equivale a cero.
func (r *StockRepo) Get(itemID, locationID string) (*entity.StockEntry, error) {
	query := `
		SELECT item_id, location_id, quantity, updated_at
		FROM stock WHERE item_id = $1 AND location_id = $2`
	var e entity.StockEntry
	err := r.q.QueryRow(context.Background(), query, itemID, locationID).Scan(
		&e.ItemID, &e.LocationID, &e.Quantity, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.StockEntry{ItemID: itemID, LocationID: locationID, Quantity: decimal.Zero}, nil
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return &e, nil
}

// GetForUpdate obtiene la entrada y bloquea la fila (SELECT FOR UPDATE).
// Una fila ausente no se puede bloquear, así que se materializa en cero
// (INSERT ... ON CONFLICT DO NOTHING) y se vuelve a leer con el lock: dos
// transacciones que estrenan la misma ubicación se serializan sobre esa fila
// en vez de partir ambas de una lectura cero sin bloqueo.
func (r *StockRepo) GetForUpdate(itemID, locationID string) (*entity.StockEntry, error) {
	entry, err := r.selectForUpdate(itemID, locationID)
	if err == nil || !errors.Is(err, pgx.ErrNoRows) {
		return entry, err
	}

	insert := `
		INSERT INTO stock (item_id, location_id, quantity, updated_at)
		VALUES ($1, $2, 0, now())
		ON CONFLICT (item_id, location_id) DO NOTHING`
	if _, err := r.q.Exec(context.Background(), insert, itemID, locationID); err != nil {
		return nil, fmt.Errorf("materializar fila de stock: %w", err)
	}

	entry, err = r.selectForUpdate(itemID, locationID)
	if err != nil {
		return nil, fmt.Errorf("get stock for update: %w", err)
	}
	return entry, nil
}

func (r *StockRepo) selectForUpdate(itemID, locationID string) (*entity.StockEntry, error) {
	query := `
		SELECT item_id, location_id, quantity, updated_at
		FROM stock WHERE item_id = $1 AND location_id = $2
		FOR UPDATE`
	var e entity.StockEntry
	err := r.q.QueryRow(context.Background(), query, itemID, locationID).Scan(
		&e.ItemID, &e.LocationID, &e.Quantity, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("get stock for update: %w", err)
	}
	return &e, nil
}

// Upsert inserta o actualiza la cantidad (por ítem y ubicación). Nunca borra:
// una cantidad cero queda como estado de reposo válido.
func (r *StockRepo) Upsert(entry *entity.StockEntry) error {
	query := `
		INSERT INTO stock (item_id, location_id, quantity, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (item_id, location_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = now()`
	_, err := r.q.Exec(context.Background(), query, entry.ItemID, entry.LocationID, entry.Quantity)
	if err != nil {
		return fmt.Errorf("upsert stock: %w", err)
	}
	return nil
}

// ListByLocation lista el stock en reposo de una ubicación.
func (r *StockRepo) ListByLocation(locationID string, limit, offset int) ([]*entity.StockEntry, error) {
	query := `
		SELECT item_id, location_id, quantity, updated_at
		FROM stock WHERE location_id = $1
		ORDER BY item_id LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, locationID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list stock by location: %w", err)
	}
	defer rows.Close()
	return scanStockEntries(rows)
}

// ListByItem lista las ubicaciones con stock registrado para un ítem.
func (r *StockRepo) ListByItem(itemID string) ([]*entity.StockEntry, error) {
	query := `
		SELECT item_id, location_id, quantity, updated_at
		FROM stock WHERE item_id = $1
		ORDER BY location_id`
	rows, err := r.q.Query(context.Background(), query, itemID)
	if err != nil {
		return nil, fmt.Errorf("list stock by item: %w", err)
	}
	defer rows.Close()
	return scanStockEntries(rows)
}

func scanStockEntries(rows pgx.Rows) ([]*entity.StockEntry, error) {
	var list []*entity.StockEntry
	for rows.Next() {
		var e entity.StockEntry
		if err := rows.Scan(&e.ItemID, &e.LocationID, &e.Quantity, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock entry: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}
