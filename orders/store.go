package orders

import (
	"context"

	"github.com/jillianguerra/home-depot/models"
)

// Store is the persistence collaborator for the cart/order aggregate.
type Store interface {
	// GetOrCreateCart atomically finds the user's unpaid order or creates
	// an empty one. Concurrent callers for the same user must observe the
	// same order.
	GetOrCreateCart(ctx context.Context, userID string) (*models.Order, error)

	// Update persists the aggregate if its revision still matches the
	// stored one, bumping the revision on success. Returns ErrStaleOrder
	// when another writer got there first.
	Update(ctx context.Context, o *models.Order) error

	// PaidOrders returns the user's order history, most recent first.
	PaidOrders(ctx context.Context, userID string) ([]models.Order, error)

	// OrderByID loads a single order; ErrOrderNotFound when missing.
	OrderByID(ctx context.Context, orderID string) (*models.Order, error)
}

// Catalog resolves item references when lines are added to a cart.
type Catalog interface {
	ItemByID(ctx context.Context, itemID string) (*models.Item, error)
}
