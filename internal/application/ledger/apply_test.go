package ledger_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appledger "github.com/jhoicas/stock-ledger-api/internal/application/ledger"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const testActor = "00000000-0000-0000-0000-000000000001"

func loc(s string) *string { return &s }

func qty(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

// newEngine construye el motor completo sobre el store en memoria, que tiene
// la misma semántica de atomicidad que el adaptador PostgreSQL.
func newEngine() (*memory.Store, *appledger.ApplyUseCase, *appledger.UndoUseCase) {
	store := memory.NewStore()
	return store, appledger.NewApplyUseCase(store), appledger.NewUndoUseCase(store)
}

// mustApply aplica un movimiento que debe ser válido.
func mustApply(t *testing.T, uc *appledger.ApplyUseCase, input appledger.ApplyInput) *entity.StockTransaction {
	t.Helper()
	if input.ActorID == "" {
		input.ActorID = testActor
	}
	record, err := uc.Apply(context.Background(), input)
	require.NoError(t, err)
	require.NotNil(t, record)
	// Separar los timestamps de movimientos consecutivos: la restricción de
	// recencia compara created_at con orden estricto.
	time.Sleep(time.Millisecond)
	return record
}

// listAll filtro para traer todo el log de un ítem.
func listAll(itemID string) repository.TransactionFilter {
	return repository.TransactionFilter{ItemID: itemID, Limit: 100}
}

// stockAt consulta la cantidad en reposo de un ítem en una ubicación.
func stockAt(t *testing.T, store *memory.Store, itemID, locationID string) decimal.Decimal {
	t.Helper()
	entry, err := store.StockRepository().Get(itemID, locationID)
	require.NoError(t, err)
	return entry.Quantity
}

// totalFor suma el stock de un ítem en todas sus ubicaciones: MOVE preserva
// el total, PUTAWAY/REMOVE lo cambian en ±qty.
func totalFor(t *testing.T, store *memory.Store, itemID string) decimal.Decimal {
	t.Helper()
	entries, err := store.StockRepository().ListByItem(itemID)
	require.NoError(t, err)
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Quantity)
	}
	return total
}

// ──────────────────────────────────────────────────────────────────────────────
// Apply
// ──────────────────────────────────────────────────────────────────────────────

func TestApply_PutawayCreaEntrada(t *testing.T) {
	store, applyUC, _ := newEngine()

	record := mustApply(t, applyUC, appledger.ApplyInput{
		Type: entity.TxTypePutaway, ItemID: "item-1", Quantity: qty(10), ToLocationID: loc("L1"),
	})

	assert.Equal(t, entity.TxTypePutaway, record.Type)
	assert.Equal(t, entity.TxStatusCompleted, record.Status)
	assert.NotEmpty(t, record.ID)
	assert.Equal(t, testActor, record.ActorID)
	assert.Nil(t, record.FromLocationID)
	require.NotNil(t, record.ToLocationID)
	assert.Equal(t, "L1", *record.ToLocationID)

	assert.True(t, stockAt(t, store, "item-1", "L1").Equal(qty(10)))
}

func TestApply_PutawayAcumulaSobreEntradaExistente(t *testing.T) {
	store, applyUC, _ := newEngine()

	mustApply(t, applyUC, appledger.ApplyInput{Type: entity.TxTypePutaway, ItemID: "item-1", Quantity: qty(10), ToLocationID: loc("L1")})
	mustApply(t, applyUC, appledger.ApplyInput{Type: entity.TxTypePutaway, ItemID: "item-1", Quantity: qty(5), ToLocationID: loc("L1")})

	assert.True(t, stockAt(t, store, "item-1", "L1").Equal(qty(15)))
}

func TestApply_RemoveDescuentaStock(t *testing.T) {
	store, applyUC, _ := newEngine()

	mustApply(t, applyUC, appledger.ApplyInput{Type: entity.TxTypePutaway, ItemID: "item-1", Quantity: qty(10), ToLocationID: loc("L1")})
	mustApply(t, applyUC, appledger.ApplyInput{Type: entity.TxTypeRemove, ItemID: "item-1", Quantity: qty(4), FromLocationID: loc("L1")})

	assert.True(t, stockAt(t, store, "item-1", "L1").Equal(qty(6)))
}

// Escenario del ledger: stock en cero, REMOVE falla con stock insuficiente
// y el estado queda intacto (ni stock ni log mutados).
func TestApply_RemoveSinStockFallaSinMutar(t *testing.T) {
	store, applyUC, _ := newEngine()

	_, err := applyUC.Apply(context.Background(), appledger.ApplyInput{
		Type: entity.TxTypeRemove, ItemID: "item-1", Quantity: qty(5), FromLocationID: loc("L1"), ActorID: testActor,
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.True(t, stockAt(t, store, "item-1", "L1").IsZero())
	list, err := store.TransactionRepository().List(listAll("item-1"))
	require.NoError(t, err)
	assert.Empty(t, list, "un apply fallido no debe dejar asiento en el log")
}

func TestApply_MoveTrasladaEntreUbicaciones(t *testing.T) {
	store, applyUC, _ := newEngine()

	mustApply(t, applyUC, appledger.ApplyInput{Type: entity.TxTypePutaway, ItemID: "item-1", Quantity: qty(5), ToLocationID: loc("L1")})
	mustApply(t, applyUC, appledger.ApplyInput{Type: entity.TxTypeMove, ItemID: "item-1", Quantity: qty(5), FromLocationID: loc("L1"), ToLocationID: loc("L2")})

	assert.True(t, stockAt(t, store, "item-1", "L1").IsZero())
	assert.True(t, stockAt(t, store, "item-1", "L2").Equal(qty(5)))
}

// MOVE no cambia el total del ítem entre ubicaciones; PUTAWAY/REMOVE lo
// cambian exactamente en ±cantidad.
func TestApply_TotalPorItemSegunTipo(t *testing.T) {
	store, applyUC, _ := newEngine()

	mustApply(t, applyUC, appledger.ApplyInput{Type: entity.TxTypePutaway, ItemID: "item-1", Quantity: qty(10), ToLocationID: loc("L1")})
	assert.True(t, totalFor(t, store, "item-1").Equal(qty(10)))

	mustApply(t, applyUC, appledger.ApplyInput{Type: entity.TxTypeMove, ItemID: "item-1", Quantity: qty(6), FromLocationID: loc("L1"), ToLocationID: loc("L2")})
	assert.True(t, totalFor(t, store, "item-1").Equal(qty(10)), "MOVE debe preservar el total")

	mustApply(t, applyUC, appledger.ApplyInput{Type: entity.TxTypeRemove, ItemID: "item-1", Quantity: qty(3), FromLocationID: loc("L2")})
	assert.True(t, totalFor(t, store, "item-1").Equal(qty(7)))
}

func TestApply_MoveSinStockSuficienteFalla(t *testing.T) {
	store, applyUC, _ := newEngine()

	mustApply(t, applyUC, appledger.ApplyInput{Type: entity.TxTypePutaway, ItemID: "item-1", Quantity: qty(3), ToLocationID: loc("L1")})

	_, err := applyUC.Apply(context.Background(), appledger.ApplyInput{
		Type: entity.TxTypeMove, ItemID: "item-1", Quantity: qty(5), FromLocationID: loc("L1"), ToLocationID: loc("L2"), ActorID: testActor,
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	// Sin efectos parciales: el destino no recibió nada y el origen conserva lo suyo.
	assert.True(t, stockAt(t, store, "item-1", "L1").Equal(qty(3)))
	assert.True(t, stockAt(t, store, "item-1", "L2").IsZero())
}

func TestApply_OperandosInvalidos(t *testing.T) {
	_, applyUC, _ := newEngine()

	cases := []struct {
		name  string
		input appledger.ApplyInput
	}{
		{"putaway sin destino", appledger.ApplyInput{Type: entity.TxTypePutaway, ItemID: "item-1", Quantity: qty(5), ActorID: testActor}},
		{"remove sin origen", appledger.ApplyInput{Type: entity.TxTypeRemove, ItemID: "item-1", Quantity: qty(5), ActorID: testActor}},
		{"cantidad no positiva", appledger.ApplyInput{Type: entity.TxTypePutaway, ItemID: "item-1", Quantity: qty(0), ToLocationID: loc("L1"), ActorID: testActor}},
		{"sin actor", appledger.ApplyInput{Type: entity.TxTypePutaway, ItemID: "item-1", Quantity: qty(5), ToLocationID: loc("L1")}},
		{"tipo desconocido", appledger.ApplyInput{Type: "TELEPORT", ItemID: "item-1", Quantity: qty(5), ToLocationID: loc("L1"), ActorID: testActor}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := applyUC.Apply(context.Background(), tc.input)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Propiedad de concurrencia: N REMOVE concurrentes sobre la misma entrada con
// demanda combinada mayor al stock disponible. Debe tener éxito exactamente el
// subconjunto que cabe y el total descontado nunca supera el stock inicial.
// ──────────────────────────────────────────────────────────────────────────────

func TestApply_RemovesConcurrentesNoSobregiran(t *testing.T) {
	store, applyUC, _ := newEngine()

	mustApply(t, applyUC, appledger.ApplyInput{Type: entity.TxTypePutaway, ItemID: "item-1", Quantity: qty(10), ToLocationID: loc("L1")})

	const workers = 5
	perWorker := qty(3) // demanda combinada 15 > 10 disponibles

	var wg sync.WaitGroup
	var mu sync.Mutex
	var okCount, insufficientCount int

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := applyUC.Apply(context.Background(), appledger.ApplyInput{
				Type: entity.TxTypeRemove, ItemID: "item-1", Quantity: perWorker,
				FromLocationID: loc("L1"), ActorID: testActor,
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				okCount++
			case assert.ErrorIs(t, err, domain.ErrInsufficientStock):
				insufficientCount++
			}
		}()
	}
	wg.Wait()

	// Con 10 disponibles y retiros de a 3, caben exactamente 3 retiros.
	assert.Equal(t, 3, okCount)
	assert.Equal(t, workers-3, insufficientCount)
	assert.True(t, stockAt(t, store, "item-1", "L1").Equal(qty(1)))
}
