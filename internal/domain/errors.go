package domain

import (
	"errors"
	"fmt"
)

// Operation - операция над корзиной.
type Operation string

const (
	OpAdd    Operation = "add"
	OpRemove Operation = "remove"
	OpUpdate Operation = "update"
)

// Kind - вид отказа операции.
type Kind string

const (
	KindNone           Kind = ""
	KindNotFound       Kind = "not_found"
	KindOutOfStock     Kind = "out_of_stock"
	KindLookupFailure  Kind = "lookup_failure"
	KindPersistFailure Kind = "persist_failure"
	KindUnknown        Kind = "unknown"
)

var (
	// ErrNotFound - позиции с таким ID нет в корзине.
	ErrNotFound = errors.New("product not in cart")
	// ErrOutOfStock - остатка недостаточно для запрошенного изменения.
	ErrOutOfStock = errors.New("requested amount out of stock")
	// ErrLookupFailure - не удалось получить остаток или карточку товара.
	ErrLookupFailure = errors.New("product lookup failed")
	// ErrPersistFailure - не удалось записать снапшот корзины.
	ErrPersistFailure = errors.New("cart snapshot write failed")
)

// OpError - отказ операции корзины. Err всегда оборачивает один из sentinel-ов выше.
type OpError struct {
	Op        Operation
	ProductID int
	Err       error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("cart %s product_id=%d: %v", e.Op, e.ProductID, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

// KindOf - классифицирует ошибку операции; nil даёт KindNone.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrOutOfStock):
		return KindOutOfStock
	case errors.Is(err, ErrLookupFailure):
		return KindLookupFailure
	case errors.Is(err, ErrPersistFailure):
		return KindPersistFailure
	default:
		return KindUnknown
	}
}

// OpOf - операция, на которой произошёл отказ (если ошибка - OpError).
func OpOf(err error) (Operation, bool) {
	var opErr *OpError
	if errors.As(err, &opErr) {
		return opErr.Op, true
	}
	return "", false
}
