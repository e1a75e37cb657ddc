package orders

import "errors"

// Every error here is recoverable at the API boundary; the handlers map
// them to client-facing responses.
var (
	// ErrItemNotFound: the referenced catalog item is missing.
	ErrItemNotFound = errors.New("item not found")

	// ErrInvalidReference: a line item was constructed against a missing
	// or malformed item/variant reference.
	ErrInvalidReference = errors.New("invalid item reference")

	// ErrEmptyCart: checkout attempted with no lines.
	ErrEmptyCart = errors.New("cannot check out an empty cart")

	// ErrAlreadyPaid: checkout or mutation attempted on a finalized order.
	ErrAlreadyPaid = errors.New("order is already paid")

	// ErrConflict: optimistic-concurrency retries exhausted.
	ErrConflict = errors.New("cart was modified concurrently, please retry")

	// ErrOrderNotFound: lookup by id matched nothing for this user.
	ErrOrderNotFound = errors.New("order not found")

	// ErrStaleOrder is returned by Store.Update when the revision no longer
	// matches; the service reloads and retries.
	ErrStaleOrder = errors.New("stale order revision")
)
