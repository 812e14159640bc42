package ledger_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appledger "github.com/jhoicas/stock-ledger-api/internal/application/ledger"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/memory"
)

// seedTransactions inserta n registros COMPLETED de un ítem directo en el
// store, con created_at crecientes.
func seedTransactions(t *testing.T, store *memory.Store, itemID string, n int) {
	t.Helper()
	base := time.Now().Add(-time.Hour)
	for i := 0; i < n; i++ {
		to := "L1"
		err := store.TransactionRepository().Create(&entity.StockTransaction{
			ID:           fmt.Sprintf("%s-tx-%03d", itemID, i),
			Type:         entity.TxTypePutaway,
			ItemID:       itemID,
			ToLocationID: &to,
			Quantity:     qty(1),
			ActorID:      testActor,
			CreatedAt:    base.Add(time.Duration(i) * time.Second),
			Status:       entity.TxStatusCompleted,
		})
		require.NoError(t, err)
	}
}

// Un limit por encima del máximo se recorta a 100, no se reinicia al valor
// por defecto: limit=101 nunca devuelve menos filas que limit=100.
func TestListTransactions_LimiteSobreElMaximoSeRecorta(t *testing.T) {
	store := memory.NewStore()
	queryUC := appledger.NewQueryUseCase(store.TransactionRepository(), store.StockRepository())

	seedTransactions(t, store, "item-1", 102)

	list, total, err := queryUC.ListTransactions(context.Background(), repository.TransactionFilter{
		ItemID: "item-1", Limit: 101,
	})
	require.NoError(t, err)
	assert.Len(t, list, 100)
	assert.Equal(t, 102, total)
}

func TestListTransactions_LimiteCeroUsaElDefecto(t *testing.T) {
	store := memory.NewStore()
	queryUC := appledger.NewQueryUseCase(store.TransactionRepository(), store.StockRepository())

	seedTransactions(t, store, "item-1", 25)

	list, total, err := queryUC.ListTransactions(context.Background(), repository.TransactionFilter{ItemID: "item-1"})
	require.NoError(t, err)
	assert.Len(t, list, 20)
	assert.Equal(t, 25, total)
}

// El total cuenta las coincidencias del filtro completo, no solo la página.
func TestListTransactions_TotalIgnoraPaginacion(t *testing.T) {
	store := memory.NewStore()
	queryUC := appledger.NewQueryUseCase(store.TransactionRepository(), store.StockRepository())

	seedTransactions(t, store, "item-1", 7)
	seedTransactions(t, store, "item-2", 4)

	list, total, err := queryUC.ListTransactions(context.Background(), repository.TransactionFilter{
		ItemID: "item-1", Limit: 3, Offset: 3,
	})
	require.NoError(t, err)
	assert.Len(t, list, 3)
	assert.Equal(t, 7, total, "el total es por filtro, sin limit/offset")
}

func TestListStockByLocation_LimiteSobreElMaximoSeRecorta(t *testing.T) {
	store := memory.NewStore()
	queryUC := appledger.NewQueryUseCase(store.TransactionRepository(), store.StockRepository())

	now := time.Now()
	for i := 0; i < 102; i++ {
		err := store.StockRepository().Upsert(&entity.StockEntry{
			ItemID:     fmt.Sprintf("item-%03d", i),
			LocationID: "L1",
			Quantity:   qty(1),
			UpdatedAt:  now,
		})
		require.NoError(t, err)
	}

	entries, err := queryUC.ListStockByLocation(context.Background(), "L1", 101, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 100)
}
