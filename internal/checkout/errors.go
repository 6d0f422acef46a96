package checkout

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyCart rejects a checkout with nothing in the cart. No storage
	// write happens.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrCommitFailed reports a storage-level failure inside the atomic
	// write unit. The whole unit rolled back: no customer, order, items or
	// availability flips persist, and the cart is untouched, so the caller
	// may retry the checkout as-is.
	ErrCommitFailed = errors.New("order commit failed")
)

// InvalidInputError names the request field that failed validation.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// UnavailableError reports the books that no longer exist or were sold by
// another session between cart add and commit. The caller is told every
// offending book id, not just the first.
type UnavailableError struct {
	BookIDs []string
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("books no longer available: %s", strings.Join(e.BookIDs, ", "))
}
