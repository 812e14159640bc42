package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	domledger "github.com/jhoicas/stock-ledger-api/internal/domain/ledger"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// ApplyUseCase registra movimientos de stock (PUTAWAY, REMOVE, MOVE) de
// forma transaccional, con bloqueo de fila (SELECT FOR UPDATE) sobre las
// entradas de stock involucradas y Commit/Rollback vía TxRunner.
type ApplyUseCase struct {
	txRunner TxRunner
}

// NewApplyUseCase construye el caso de uso.
func NewApplyUseCase(txRunner TxRunner) *ApplyUseCase {
	return &ApplyUseCase{txRunner: txRunner}
}

// ApplyInput entrada para registrar un movimiento.
// PUTAWAY requiere ToLocationID; REMOVE requiere FromLocationID;
// MOVE requiere ambos (distintos). Quantity siempre > 0.
type ApplyInput struct {
	Type           string
	ItemID         string
	Quantity       decimal.Decimal
	FromLocationID *string
	ToLocationID   *string
	ActorID        string
}

// Apply valida el movimiento, muta el stock y agrega el registro al log
// como una sola unidad atómica. Retorna el registro creado (COMPLETED).
// Errores: ErrInvalidInput (operandos), ErrInsufficientStock (REMOVE/MOVE
// sin stock suficiente en origen), ErrConflict (concurrencia, reintentable).
func (uc *ApplyUseCase) Apply(ctx context.Context, input ApplyInput) (*entity.StockTransaction, error) {
	if input.ActorID == "" {
		return nil, domain.ErrInvalidInput
	}
	op, err := domledger.New(input.Type, input.ItemID, input.Quantity, input.FromLocationID, input.ToLocationID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	record := &entity.StockTransaction{
		ID:             uuid.New().String(),
		Type:           op.Type(),
		ItemID:         op.ItemID(),
		FromLocationID: op.FromLocationID(),
		ToLocationID:   op.ToLocationID(),
		Quantity:       op.Quantity(),
		ActorID:        input.ActorID,
		CreatedAt:      now,
		Status:         entity.TxStatusCompleted,
	}

	// Mutación de stock y asiento en el log en la misma transacción:
	// commitean juntos o ninguno (TxRunner hace Commit/Rollback).
	err = uc.txRunner.Run(ctx, func(
		txRepo repository.TransactionRepository,
		stockRepo repository.StockRepository,
	) error {
		if err := applyDeltas(stockRepo, op.ItemID(), op.Forward(), now); err != nil {
			return err
		}
		return txRepo.Create(record)
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}
