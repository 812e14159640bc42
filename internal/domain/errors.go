package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// El motor detecta todas las violaciones antes de mutar estado: si una
// operación retorna error, ni el stock ni el log quedaron modificados.
var (
	// ErrInvalidInput operando inválido: cantidad no positiva, ubicación
	// requerida ausente o tipo de transacción desconocido.
	ErrInvalidInput = errors.New("entrada inválida")

	// ErrNotFound la transacción referenciada no existe.
	ErrNotFound = errors.New("recurso no encontrado")

	// ErrInsufficientStock la mutación dejaría stock negativo en alguna ubicación.
	ErrInsufficientStock = errors.New("stock insuficiente")

	// ErrAlreadyUndone la transacción ya fue revertida (UNDONE es terminal).
	ErrAlreadyUndone = errors.New("transacción ya revertida")

	// ErrNotLatest existe una transacción COMPLETED más reciente para el mismo
	// ítem; debe revertirse primero, en orden cronológico inverso estricto.
	ErrNotLatest = errors.New("no es la transacción más reciente del ítem")

	// ErrConflict modificación concurrente detectada por la capa transaccional
	// (deadlock o fallo de serialización). Seguro reintentar la operación completa.
	ErrConflict = errors.New("conflicto con el estado actual")

	// ErrStorageUnavailable fallo de transporte o durabilidad del storage.
	ErrStorageUnavailable = errors.New("almacenamiento no disponible")
)
