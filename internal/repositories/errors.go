package repository

import (
	"errors"

	"github.com/lib/pq"
)

var (
	// ErrDuplicateEmail surfaces a unique violation on users.email.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrOrderNumberConflict surfaces a unique violation on
	// orders.order_number. The checkout retries once with a fresh number
	// before giving up.
	ErrOrderNumberConflict = errors.New("order number already exists")

	// ErrStockConflict means a conditional stock decrement matched no row:
	// either the product vanished or the decrement would have gone negative.
	ErrStockConflict = errors.New("stock decrement rejected")
)

const uniqueViolationCode = "23505"

// isUniqueViolation classifies the error by driver code instead of matching
// message text.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error

	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolationCode
}
