package ledger

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	domledger "github.com/jhoicas/stock-ledger-api/internal/domain/ledger"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// UndoUseCase revierte la transacción COMPLETED más reciente de un ítem.
// Solo esa puede revertirse; las anteriores quedan bloqueadas hasta que las
// más nuevas se reviertan primero, en orden cronológico inverso estricto.
// La reversa no emite un registro compensatorio: muta el registro original
// (COMPLETED → UNDONE), que queda como rastro de auditoría de la reversión.
type UndoUseCase struct {
	txRunner TxRunner
}

// NewUndoUseCase construye el caso de uso.
func NewUndoUseCase(txRunner TxRunner) *UndoUseCase {
	return &UndoUseCase{txRunner: txRunner}
}

// Undo valida la elegibilidad y aplica la mutación compensatoria junto con
// el cambio de estado como una sola unidad atómica. Las precondiciones se
// evalúan en orden y cortan con su error específico:
//
//  1. ErrNotFound          - el id no existe en el log
//  2. ErrAlreadyUndone     - el registro ya está UNDONE (terminal)
//  3. ErrInsufficientStock - la compensación dejaría stock negativo
//  4. ErrNotLatest         - existe otra COMPLETED más reciente del ítem
//
// La insuficiencia se reporta antes que la recencia: si lo movido ya fue
// consumido en el destino, el cliente ve stock insuficiente y no un error
// de orden. Como todo corre dentro de la misma transacción, la mutación
// compensatoria aplicada antes del chequeo de recencia se revierte entera
// si este falla.
//
// La fila del registro se bloquea (SELECT FOR UPDATE) antes de validar, de
// modo que dos reversas concurrentes del mismo id no pasen ambas el chequeo
// de estado contra una lectura obsoleta.
func (uc *UndoUseCase) Undo(ctx context.Context, transactionID, userID string) (*entity.StockTransaction, error) {
	if transactionID == "" || userID == "" {
		return nil, domain.ErrInvalidInput
	}

	var undone *entity.StockTransaction
	err := uc.txRunner.Run(ctx, func(
		txRepo repository.TransactionRepository,
		stockRepo repository.StockRepository,
	) error {
		record, err := txRepo.GetByIDForUpdate(transactionID)
		if err != nil {
			return err
		}
		if record == nil {
			return domain.ErrNotFound
		}
		if record.IsUndone() {
			return domain.ErrAlreadyUndone
		}

		op, err := domledger.FromTransaction(record)
		if err != nil {
			return err
		}

		now := time.Now()
		if err := applyDeltas(stockRepo, record.ItemID, op.Inverse(), now); err != nil {
			return err
		}

		// Restricción de recencia: solo la COMPLETED cronológicamente más
		// nueva del ítem es elegible. Si falla, la transacción se revierte
		// junto con las mutaciones de stock ya aplicadas.
		newer, err := txRepo.HasNewerCompleted(record.ItemID, record.CreatedAt, record.ID)
		if err != nil {
			return err
		}
		if newer {
			return domain.ErrNotLatest
		}

		if err := txRepo.MarkUndone(record.ID, now, userID); err != nil {
			return err
		}

		record.Status = entity.TxStatusUndone
		record.UndoneAt = &now
		record.UndoneBy = &userID
		undone = record
		return nil
	})
	if err != nil {
		return nil, err
	}
	return undone, nil
}
