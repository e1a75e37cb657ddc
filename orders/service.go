package orders

import (
	"context"
	"errors"
	"time"

	"github.com/jillianguerra/home-depot/models"
)

// maxUpdateAttempts bounds the optimistic-concurrency retry loop; when a
// mutation keeps losing the CAS race it surfaces ErrConflict instead of
// spinning.
const maxUpdateAttempts = 3

// Service owns the cart/order aggregate operations. All derived fields
// (orderTotal, totalQty, orderId) live on the model and are recomputed on
// read, never stored.
type Service struct {
	store   Store
	catalog Catalog
}

func NewService(store Store, catalog Catalog) *Service {
	return &Service{store: store, catalog: catalog}
}

// GetCart returns the user's unpaid order, creating one if none exists.
// The underlying upsert is atomic, so concurrent callers cannot end up
// with two carts.
func (s *Service) GetCart(ctx context.Context, userID string) (*models.Order, error) {
	return s.store.GetOrCreateCart(ctx, userID)
}

// newLineItem snapshots the item (and chosen variant) into a fresh line.
func newLineItem(item *models.Item, subItemID string, qty int) (models.LineItem, error) {
	if item == nil {
		return models.LineItem{}, ErrInvalidReference
	}
	if qty < 1 {
		qty = 1
	}
	line := models.LineItem{Qty: qty, Item: *item}
	if subItemID != "" {
		sub := item.FindSubItem(subItemID)
		if sub == nil {
			return models.LineItem{}, ErrInvalidReference
		}
		chosen := *sub
		line.SubItem = &chosen
	}
	return line, nil
}

// AddItem increments the existing line for (itemID, subItemID) or resolves
// the item against the catalog and appends a quantity-1 line. Returns the
// persisted aggregate so callers can read the fresh totals.
func (s *Service) AddItem(ctx context.Context, order *models.Order, itemID, subItemID string) (*models.Order, error) {
	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		if order.IsPaid {
			return nil, ErrAlreadyPaid
		}

		if line := order.FindLine(itemID, subItemID); line != nil {
			line.Qty++
		} else {
			item, err := s.catalog.ItemByID(ctx, itemID)
			if err != nil {
				return nil, err
			}
			newLine, err := newLineItem(item, subItemID, 1)
			if err != nil {
				return nil, err
			}
			order.LineItems = append(order.LineItems, newLine)
		}

		err := s.store.Update(ctx, order)
		if err == nil {
			return order, nil
		}
		if !errors.Is(err, ErrStaleOrder) {
			return nil, err
		}
		if order, err = s.store.OrderByID(ctx, order.ID); err != nil {
			return nil, err
		}
	}
	return nil, ErrConflict
}

// SetItemQty overwrites the quantity of an existing line, or removes the
// line when newQty drops to zero or below. A missing line with a positive
// newQty is a no-op: set-quantity never implicitly adds items.
func (s *Service) SetItemQty(ctx context.Context, order *models.Order, itemID, subItemID string, newQty int) (*models.Order, error) {
	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		if order.IsPaid {
			return nil, ErrAlreadyPaid
		}

		line := order.FindLine(itemID, subItemID)
		if line == nil {
			return order, nil
		}
		if newQty <= 0 {
			order.RemoveLine(itemID, subItemID)
		} else {
			line.Qty = newQty
		}

		err := s.store.Update(ctx, order)
		if err == nil {
			return order, nil
		}
		if !errors.Is(err, ErrStaleOrder) {
			return nil, err
		}
		if order, err = s.store.OrderByID(ctx, order.ID); err != nil {
			return nil, err
		}
	}
	return nil, ErrConflict
}

// Checkout finalizes an unpaid order with at least one line. After it the
// aggregate is immutable history and is never returned by GetCart again.
func (s *Service) Checkout(ctx context.Context, order *models.Order) (*models.Order, error) {
	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		if order.IsPaid {
			return nil, ErrAlreadyPaid
		}
		if len(order.LineItems) == 0 {
			return nil, ErrEmptyCart
		}

		now := time.Now()
		order.IsPaid = true
		order.PaidAt = &now

		err := s.store.Update(ctx, order)
		if err == nil {
			return order, nil
		}
		if !errors.Is(err, ErrStaleOrder) {
			return nil, err
		}
		if order, err = s.store.OrderByID(ctx, order.ID); err != nil {
			return nil, err
		}
	}
	return nil, ErrConflict
}

// History returns the user's paid orders, most recent first.
func (s *Service) History(ctx context.Context, userID string) ([]models.Order, error) {
	return s.store.PaidOrders(ctx, userID)
}

// Order loads a single order, scoped to its owner.
func (s *Service) Order(ctx context.Context, userID, orderID string) (*models.Order, error) {
	order, err := s.store.OrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.User != userID {
		return nil, ErrOrderNotFound
	}
	return order, nil
}
