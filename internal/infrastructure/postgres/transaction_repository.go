package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ repository.TransactionRepository = (*TransactionRepo)(nil)

const txColumns = `id, type, item_id, from_location_id, to_location_id, quantity, actor_id, created_at, status, undone_at, undone_by`

// TransactionRepo implementación del log de transacciones sobre PostgreSQL
// (usable con pool o tx).
type TransactionRepo struct {
	q Querier
}

// NewTransactionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransactionRepository(q Querier) *TransactionRepo {
	return &TransactionRepo{q: q}
}

// Create persiste un registro nuevo del log.
func (r *TransactionRepo) Create(t *entity.StockTransaction) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	query := `
		INSERT INTO stock_transactions (` + txColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(context.Background(), query,
		t.ID, t.Type, t.ItemID, t.FromLocationID, t.ToLocationID,
		t.Quantity, t.ActorID, t.CreatedAt, t.Status, t.UndoneAt, t.UndoneBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: transacción duplicada", domain.ErrConflict)
		}
		return fmt.Errorf("create stock transaction: %w", err)
	}
	return nil
}

// GetByID obtiene un registro por ID. Retorna nil, nil si no existe.
func (r *TransactionRepo) GetByID(id string) (*entity.StockTransaction, error) {
	query := `SELECT ` + txColumns + ` FROM stock_transactions WHERE id = $1`
	return r.getOne(query, id)
}

// GetByIDForUpdate obtiene el registro y bloquea su fila (SELECT FOR UPDATE),
// de modo que dos reversas concurrentes del mismo id se serialicen.
func (r *TransactionRepo) GetByIDForUpdate(id string) (*entity.StockTransaction, error) {
	query := `SELECT ` + txColumns + ` FROM stock_transactions WHERE id = $1 FOR UPDATE`
	return r.getOne(query, id)
}

func (r *TransactionRepo) getOne(query string, args ...any) (*entity.StockTransaction, error) {
	var t entity.StockTransaction
	err := r.q.QueryRow(context.Background(), query, args...).Scan(
		&t.ID, &t.Type, &t.ItemID, &t.FromLocationID, &t.ToLocationID,
		&t.Quantity, &t.ActorID, &t.CreatedAt, &t.Status, &t.UndoneAt, &t.UndoneBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock transaction: %w", err)
	}
	return &t, nil
}

// HasNewerCompleted indica si existe otra transacción COMPLETED del mismo
// ítem con created_at estrictamente mayor. Respaldada por el índice
// (item_id, status, created_at) para no escanear el log.
func (r *TransactionRepo) HasNewerCompleted(itemID string, createdAt time.Time, excludeID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM stock_transactions
			WHERE item_id = $1 AND status = $2 AND created_at > $3 AND id <> $4
		)`
	var exists bool
	err := r.q.QueryRow(context.Background(), query, itemID, entity.TxStatusCompleted, createdAt, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("has newer completed: %w", err)
	}
	return exists, nil
}

// FindMostRecentCompleted retorna la transacción COMPLETED más reciente del
// ítem, o nil, nil si no hay ninguna.
func (r *TransactionRepo) FindMostRecentCompleted(itemID string) (*entity.StockTransaction, error) {
	query := `
		SELECT ` + txColumns + ` FROM stock_transactions
		WHERE item_id = $1 AND status = $2
		ORDER BY created_at DESC LIMIT 1`
	return r.getOne(query, itemID, entity.TxStatusCompleted)
}

// MarkUndone transiciona COMPLETED → UNDONE y fija el bloque de reversa.
// El predicado de status garantiza que la transición ocurra exactamente una
// vez aunque el caller se haya saltado el bloqueo de fila.
func (r *TransactionRepo) MarkUndone(id string, undoneAt time.Time, undoneBy string) error {
	query := `
		UPDATE stock_transactions
		SET status = $1, undone_at = $2, undone_by = $3
		WHERE id = $4 AND status = $5`
	tag, err := r.q.Exec(context.Background(), query,
		entity.TxStatusUndone, undoneAt, undoneBy, id, entity.TxStatusCompleted)
	if err != nil {
		return fmt.Errorf("mark undone: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAlreadyUndone
	}
	return nil
}

// buildFilter arma la cláusula WHERE posicional compartida por List y Count.
func buildFilter(filter repository.TransactionFilter) (string, []any, int) {
	where := " WHERE 1=1"
	var args []any
	pos := 1
	if filter.ItemID != "" {
		where += fmt.Sprintf(" AND item_id = $%d", pos)
		args = append(args, filter.ItemID)
		pos++
	}
	if filter.LocationID != "" {
		where += fmt.Sprintf(" AND (from_location_id = $%d OR to_location_id = $%d)", pos, pos)
		args = append(args, filter.LocationID)
		pos++
	}
	if filter.Type != "" {
		where += fmt.Sprintf(" AND type = $%d", pos)
		args = append(args, filter.Type)
		pos++
	}
	if filter.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", pos)
		args = append(args, filter.Status)
		pos++
	}
	if filter.From != nil {
		where += fmt.Sprintf(" AND created_at >= $%d", pos)
		args = append(args, *filter.From)
		pos++
	}
	if filter.To != nil {
		where += fmt.Sprintf(" AND created_at <= $%d", pos)
		args = append(args, *filter.To)
		pos++
	}
	return where, args, pos
}

// List lista transacciones con filtros opcionales por ítem, ubicación
// (origen o destino), tipo, estado y rango de fechas.
func (r *TransactionRepo) List(filter repository.TransactionFilter) ([]*entity.StockTransaction, error) {
	where, args, pos := buildFilter(filter)
	query := `SELECT ` + txColumns + ` FROM stock_transactions` + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock transactions: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockTransaction
	for rows.Next() {
		var t entity.StockTransaction
		if err := rows.Scan(&t.ID, &t.Type, &t.ItemID, &t.FromLocationID, &t.ToLocationID,
			&t.Quantity, &t.ActorID, &t.CreatedAt, &t.Status, &t.UndoneAt, &t.UndoneBy); err != nil {
			return nil, fmt.Errorf("scan stock transaction: %w", err)
		}
		list = append(list, &t)
	}
	return list, rows.Err()
}

// Count cuenta las coincidencias del filtro ignorando Limit/Offset, para
// reportar el total real de la lista paginada.
func (r *TransactionRepo) Count(filter repository.TransactionFilter) (int, error) {
	where, args, _ := buildFilter(filter)
	query := `SELECT COUNT(*) FROM stock_transactions` + where
	var total int
	if err := r.q.QueryRow(context.Background(), query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count stock transactions: %w", err)
	}
	return total, nil
}
