package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/postgres"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fake Querier: registra el SQL ejecutado y responde filas guionadas, para
// verificar la conversación con la base sin un PostgreSQL vivo.
// ──────────────────────────────────────────────────────────────────────────────

type fakeRow struct {
	err  error
	vals []any
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = r.vals[i].(string)
		case *decimal.Decimal:
			*p = r.vals[i].(decimal.Decimal)
		case *time.Time:
			*p = r.vals[i].(time.Time)
		}
	}
	return nil
}

type fakeQuerier struct {
	t       *testing.T
	queries []string
	rows    []fakeRow
}

func (q *fakeQuerier) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	q.queries = append(q.queries, sql)
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (q *fakeQuerier) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	q.t.Fatalf("Query no esperado: %s", sql)
	return nil, nil
}

func (q *fakeQuerier) QueryRow(_ context.Context, sql string, _ ...any) pgx.Row {
	q.queries = append(q.queries, sql)
	require.NotEmpty(q.t, q.rows, "QueryRow sin fila guionada: %s", sql)
	row := q.rows[0]
	q.rows = q.rows[1:]
	return row
}

func stockRow(itemID, locationID string, qty int64) fakeRow {
	return fakeRow{vals: []any{itemID, locationID, decimal.NewFromInt(qty), time.Now()}}
}

// ──────────────────────────────────────────────────────────────────────────────
// GetForUpdate
// ──────────────────────────────────────────────────────────────────────────────

// Una fila ausente debe materializarse y releerse bajo el lock: el valor
// devuelto es el que quede tras serializar con cualquier sesión concurrente,
// nunca una lectura cero sin bloqueo. Dos PUTAWAY simultáneos que estrenan la
// ubicación dependen de esto para no pisarse la cantidad.
func TestGetForUpdate_FilaAusenteSeMaterializaYRelee(t *testing.T) {
	q := &fakeQuerier{t: t, rows: []fakeRow{
		{err: pgx.ErrNoRows},           // primer SELECT FOR UPDATE: no hay fila
		stockRow("item-1", "L1", 5),    // relectura: la sesión rival ya commiteó 5
	}}
	repo := postgres.NewStockRepository(q)

	entry, err := repo.GetForUpdate("item-1", "L1")
	require.NoError(t, err)
	assert.True(t, entry.Quantity.Equal(decimal.NewFromInt(5)),
		"debe verse la cantidad commiteada por la sesión rival, no un cero obsoleto")

	require.Len(t, q.queries, 3)
	assert.Contains(t, q.queries[0], "FOR UPDATE")
	assert.Contains(t, q.queries[1], "ON CONFLICT (item_id, location_id) DO NOTHING",
		"la fila ausente debe materializarse en cero para poder bloquearla")
	assert.Contains(t, q.queries[1], "INSERT INTO stock")
	assert.Contains(t, q.queries[2], "FOR UPDATE",
		"tras materializar hay que releer con el lock tomado")
}

// Con la fila presente no hay inserción: un solo SELECT FOR UPDATE.
func TestGetForUpdate_FilaExistenteNoInserta(t *testing.T) {
	q := &fakeQuerier{t: t, rows: []fakeRow{stockRow("item-1", "L1", 12)}}
	repo := postgres.NewStockRepository(q)

	entry, err := repo.GetForUpdate("item-1", "L1")
	require.NoError(t, err)
	assert.True(t, entry.Quantity.Equal(decimal.NewFromInt(12)))

	require.Len(t, q.queries, 1)
	assert.Contains(t, q.queries[0], "FOR UPDATE")
}

// Get (sin lock) conserva la semántica ausencia-equivale-a-cero sin insertar.
func TestGet_FilaAusenteDevuelveCeroSinInsertar(t *testing.T) {
	q := &fakeQuerier{t: t, rows: []fakeRow{{err: pgx.ErrNoRows}}}
	repo := postgres.NewStockRepository(q)

	entry, err := repo.Get("item-1", "L1")
	require.NoError(t, err)
	assert.True(t, entry.Quantity.IsZero())
	assert.Len(t, q.queries, 1, "una lectura sin lock no debe escribir nada")
}
