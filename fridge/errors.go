/*
errors.go - Error types for the fridge engine

ERROR CATEGORIES:
  1. Validation errors - malformed input, rejected before any write
  2. Business rule errors - insufficient stock, invalid cash transaction
  3. Not found errors - referenced product, site or stock item is absent

USAGE:
  Callers branch with errors.Is on the sentinels; structured errors carry
  the details and unwrap to them:

    var short *fridge.InsufficientStockError
    if errors.As(err, &short) {
        log.Printf("only %d left", short.Available)
    }

SEE ALSO:
  - api/errors.go: maps these to HTTP status codes
*/
package fridge

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is returned when a required field is missing or malformed.
	ErrValidation = errors.New("validation failed")

	// ErrInsufficientStock is returned when a sale asks for more units than the
	// site holds, or the site does not stock the product at all.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrInvalidTransaction is returned when a cash transaction has a bad kind,
	// a non-positive amount or an empty description.
	ErrInvalidTransaction = errors.New("invalid cash transaction")

	// ErrInvalidQuantity is returned when a stock change would leave a negative
	// quantity, or a sale quantity is not positive.
	ErrInvalidQuantity = errors.New("invalid quantity")

	// ErrInvalidPrice is a validation failure on a product price. It matches
	// ErrValidation too.
	ErrInvalidPrice = fmt.Errorf("%w: invalid price", ErrValidation)

	ErrProductNotFound   = errors.New("product not found")
	ErrSiteNotFound      = errors.New("site not found")
	ErrStockItemNotFound = errors.New("stock item not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InsufficientStockError provides details about a rejected sale.
// Available is zero when the site has no stock row for the product.
type InsufficientStockError struct {
	SiteID    SiteID
	ProductID ProductID
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock: available %d, requested %d", e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}

// ValidationError names the offending field.
type ValidationError struct {
	Field  string
	Reason string
	kind   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	if e.kind != nil {
		return e.kind
	}
	return ErrValidation
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func invalidTx(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason, kind: ErrInvalidTransaction}
}

func invalidPrice(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason, kind: ErrInvalidPrice}
}

func invalidQty(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason, kind: ErrInvalidQuantity}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input or
// a business rule the client can correct.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrInvalidTransaction) ||
		errors.Is(err, ErrInvalidQuantity)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrSiteNotFound) ||
		errors.Is(err, ErrStockItemNotFound)
}
