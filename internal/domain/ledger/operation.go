package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// StockDelta es un ajuste con signo sobre una ubicación. Delta positivo suma
// stock, negativo resta. Quien aplique un delta negativo debe verificar que
// la cantidad resultante no baje de cero (stock insuficiente).
type StockDelta struct {
	LocationID string
	Delta      decimal.Decimal
}

// Operation es la variante cerrada sobre el tipo de movimiento (PUTAWAY,
// REMOVE, MOVE). Cada variante define su efecto hacia adelante y su inverso
// como listas de deltas, de modo que aplicar y revertir comparten la misma
// definición y el par forward/inverse no puede desalinearse.
type Operation interface {
	Type() string
	ItemID() string
	Quantity() decimal.Decimal
	FromLocationID() *string
	ToLocationID() *string

	// Forward devuelve los deltas del efecto de la operación, con los
	// decrementos antes que los incrementos.
	Forward() []StockDelta
	// Inverse devuelve los deltas compensatorios exactos, también con los
	// decrementos primero.
	Inverse() []StockDelta
}

// New construye y valida la variante según el tipo. Valida los operandos:
// cantidad estrictamente positiva y ubicaciones requeridas por tipo
// (PUTAWAY exige destino, REMOVE exige origen, MOVE exige ambos distintos).
func New(txType, itemID string, quantity decimal.Decimal, fromLocationID, toLocationID *string) (Operation, error) {
	if itemID == "" || !quantity.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	switch txType {
	case entity.TxTypePutaway:
		if !present(toLocationID) {
			return nil, domain.ErrInvalidInput
		}
		return putaway{base{itemID: itemID, qty: quantity, to: toLocationID}}, nil
	case entity.TxTypeRemove:
		if !present(fromLocationID) {
			return nil, domain.ErrInvalidInput
		}
		return remove{base{itemID: itemID, qty: quantity, from: fromLocationID}}, nil
	case entity.TxTypeMove:
		if !present(fromLocationID) || !present(toLocationID) || *fromLocationID == *toLocationID {
			return nil, domain.ErrInvalidInput
		}
		return move{base{itemID: itemID, qty: quantity, from: fromLocationID, to: toLocationID}}, nil
	default:
		return nil, domain.ErrInvalidInput
	}
}

// FromTransaction reconstruye la variante desde un registro del log, para
// calcular la mutación compensatoria al revertir.
func FromTransaction(t *entity.StockTransaction) (Operation, error) {
	return New(t.Type, t.ItemID, t.Quantity, t.FromLocationID, t.ToLocationID)
}

func present(loc *string) bool {
	return loc != nil && *loc != ""
}

// base campos comunes a las tres variantes.
type base struct {
	itemID string
	qty    decimal.Decimal
	from   *string
	to     *string
}

func (b base) ItemID() string           { return b.itemID }
func (b base) Quantity() decimal.Decimal { return b.qty }
func (b base) FromLocationID() *string  { return b.from }
func (b base) ToLocationID() *string    { return b.to }

type putaway struct{ base }

func (p putaway) Type() string { return entity.TxTypePutaway }

func (p putaway) Forward() []StockDelta {
	return []StockDelta{{LocationID: *p.to, Delta: p.qty}}
}

// Inverse de PUTAWAY decrementa el destino: puede fallar por stock
// insuficiente si lo ingresado fue luego movido o retirado.
func (p putaway) Inverse() []StockDelta { return negate(p.Forward()) }

type remove struct{ base }

func (r remove) Type() string { return entity.TxTypeRemove }

func (r remove) Forward() []StockDelta {
	return []StockDelta{{LocationID: *r.from, Delta: r.qty.Neg()}}
}

// Inverse de REMOVE siempre es satisfacible: devuelve stock al origen.
func (r remove) Inverse() []StockDelta { return negate(r.Forward()) }

type move struct{ base }

func (m move) Type() string { return entity.TxTypeMove }

func (m move) Forward() []StockDelta {
	return []StockDelta{
		{LocationID: *m.from, Delta: m.qty.Neg()},
		{LocationID: *m.to, Delta: m.qty},
	}
}

// Inverse de MOVE decrementa el destino y reintegra el origen; falla por
// stock insuficiente si parte de lo trasladado ya salió del destino.
func (m move) Inverse() []StockDelta { return negate(m.Forward()) }

// negate niega cada delta y revierte el orden de la lista, de modo que el
// inverso también lleve los decrementos primero. Al derivarse siempre de
// Forward, el par efecto/compensación queda consistente por construcción.
func negate(deltas []StockDelta) []StockDelta {
	out := make([]StockDelta, len(deltas))
	for i, d := range deltas {
		out[len(deltas)-1-i] = StockDelta{LocationID: d.LocationID, Delta: d.Delta.Neg()}
	}
	return out
}
