package ledger

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción del storage,
// pasando repositorios atados a esa transacción. Es la frontera de
// atomicidad del motor: los efectos de stock y el asiento en el log
// commitean juntos o ninguno.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		txRepo repository.TransactionRepository,
		stockRepo repository.StockRepository,
	) error) error
}
