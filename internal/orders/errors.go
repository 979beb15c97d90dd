package orders

import (
	"errors"
	"fmt"
)

// ErrOrderNotFound is returned by invoice reads for unknown order ids.
var ErrOrderNotFound = errors.New("order not found")

// ValidationError reports malformed caller input. Nothing has been
// persisted when one is returned.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Msg)
}

// ProductNotFoundError reports a cart line referencing a product id that
// does not exist.
type ProductNotFoundError struct {
	ProductID int64
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %d not found", e.ProductID)
}

// InsufficientStockError reports a cart line asking for more units than
// the product currently has. The whole order is aborted.
type InsufficientStockError struct {
	SKU  string
	Have int
	Need int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: need %d, have %d", e.SKU, e.Need, e.Have)
}

// ConflictError reports a hard uniqueness violation, e.g. a customer
// phone that already exists on a direct create.
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string {
	return e.Msg
}
