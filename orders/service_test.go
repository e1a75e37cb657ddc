package orders

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/jillianguerra/home-depot/models"
)

// memStore is an in-memory Store with the same revision semantics as the
// Mongo-backed one.
type memStore struct {
	mu     sync.Mutex
	orders map[string]models.Order
	nextID int
}

func newMemStore() *memStore {
	return &memStore{orders: make(map[string]models.Order)}
}

func (s *memStore) GetOrCreateCart(_ context.Context, userID string) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range s.orders {
		if o.User == userID && !o.IsPaid {
			found := o
			return &found, nil
		}
	}

	s.nextID++
	o := models.Order{
		ID:        "ord" + strconv.Itoa(s.nextID),
		User:      userID,
		LineItems: []models.LineItem{},
		CreatedAt: time.Now(),
	}
	s.orders[o.ID] = o
	return &o, nil
}

func (s *memStore) Update(_ context.Context, o *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.orders[o.ID]
	if !ok || stored.Rev != o.Rev {
		return ErrStaleOrder
	}
	o.Rev++
	s.orders[o.ID] = *o
	return nil
}

func (s *memStore) PaidOrders(_ context.Context, userID string) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var paid []models.Order
	for _, o := range s.orders {
		if o.User == userID && o.IsPaid {
			paid = append(paid, o)
		}
	}
	for i := 0; i < len(paid); i++ {
		for j := i + 1; j < len(paid); j++ {
			if paid[j].PaidAt.After(*paid[i].PaidAt) {
				paid[i], paid[j] = paid[j], paid[i]
			}
		}
	}
	return paid, nil
}

func (s *memStore) OrderByID(_ context.Context, orderID string) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderID]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return &o, nil
}

// fakeCatalog serves a fixed item set.
type fakeCatalog struct {
	items map[string]models.Item
}

func (c *fakeCatalog) ItemByID(_ context.Context, itemID string) (*models.Item, error) {
	item, ok := c.items[itemID]
	if !ok {
		return nil, ErrItemNotFound
	}
	return &item, nil
}

// staleStore wraps a Store and fails every Update with ErrStaleOrder.
type staleStore struct {
	Store
}

func (s *staleStore) Update(context.Context, *models.Order) error {
	return ErrStaleOrder
}

func testService() (*Service, *memStore) {
	store := newMemStore()
	cat := &fakeCatalog{items: map[string]models.Item{
		"hammer": {ItemID: "hammer", Name: "Claw Hammer", Price: 100},
		"drill": {ItemID: "drill", Name: "Power Drill", Price: 250, SubItems: []models.SubItem{
			{SubItemID: "drill-red", Color: "red", Price: 275},
		}},
	}}
	return NewService(store, cat), store
}

func TestGetCartReturnsSameCart(t *testing.T) {
	svc, _ := testService()
	ctx := context.Background()

	first, err := svc.GetCart(ctx, "u1")
	if err != nil {
		t.Fatalf("GetCart: %v", err)
	}
	second, err := svc.GetCart(ctx, "u1")
	if err != nil {
		t.Fatalf("GetCart: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("expected the same cart, got %q and %q", first.ID, second.ID)
	}
	if first.IsPaid || len(first.LineItems) != 0 {
		t.Errorf("new cart should be empty and unpaid: %+v", first)
	}
}

func TestAddItemTotals(t *testing.T) {
	svc, _ := testService()
	ctx := context.Background()

	cart, _ := svc.GetCart(ctx, "u1")
	cart, err := svc.AddItem(ctx, cart, "hammer", "")
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if got := cart.OrderTotal(); got != 100 {
		t.Errorf("orderTotal = %v, want 100", got)
	}
	if got := cart.TotalQty(); got != 1 {
		t.Errorf("totalQty = %d, want 1", got)
	}

	// Re-adding the same item grows the existing line, not the line count.
	cart, err = svc.AddItem(ctx, cart, "hammer", "")
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if len(cart.LineItems) != 1 {
		t.Fatalf("line count = %d, want 1", len(cart.LineItems))
	}
	if cart.LineItems[0].Qty != 2 {
		t.Errorf("qty = %d, want 2", cart.LineItems[0].Qty)
	}
	if got := cart.OrderTotal(); got != 200 {
		t.Errorf("orderTotal = %v, want 200", got)
	}
}

func TestAddItemVariantUsesVariantPrice(t *testing.T) {
	svc, _ := testService()
	ctx := context.Background()

	cart, _ := svc.GetCart(ctx, "u1")
	cart, err := svc.AddItem(ctx, cart, "drill", "drill-red")
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if got := cart.OrderTotal(); got != 275 {
		t.Errorf("orderTotal = %v, want variant price 275", got)
	}

	// The base configuration is a separate line from the variant.
	cart, err = svc.AddItem(ctx, cart, "drill", "")
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if len(cart.LineItems) != 2 {
		t.Errorf("line count = %d, want 2", len(cart.LineItems))
	}
	if got := cart.OrderTotal(); got != 525 {
		t.Errorf("orderTotal = %v, want 525", got)
	}
}

func TestAddItemUnknownItem(t *testing.T) {
	svc, _ := testService()
	ctx := context.Background()

	cart, _ := svc.GetCart(ctx, "u1")
	if _, err := svc.AddItem(ctx, cart, "no-such-item", ""); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("err = %v, want ErrItemNotFound", err)
	}
}

func TestAddItemUnknownVariant(t *testing.T) {
	svc, _ := testService()
	ctx := context.Background()

	cart, _ := svc.GetCart(ctx, "u1")
	if _, err := svc.AddItem(ctx, cart, "drill", "drill-blue"); !errors.Is(err, ErrInvalidReference) {
		t.Errorf("err = %v, want ErrInvalidReference", err)
	}
}

func TestSetItemQty(t *testing.T) {
	svc, _ := testService()
	ctx := context.Background()

	cart, _ := svc.GetCart(ctx, "u1")
	cart, _ = svc.AddItem(ctx, cart, "hammer", "")

	cart, err := svc.SetItemQty(ctx, cart, "hammer", "", 3)
	if err != nil {
		t.Fatalf("SetItemQty: %v", err)
	}
	if got := cart.OrderTotal(); got != 300 {
		t.Errorf("orderTotal = %v, want 300", got)
	}
	if got := cart.TotalQty(); got != 3 {
		t.Errorf("totalQty = %d, want 3", got)
	}

	// Zero removes the line entirely.
	cart, err = svc.SetItemQty(ctx, cart, "hammer", "", 0)
	if err != nil {
		t.Fatalf("SetItemQty: %v", err)
	}
	if len(cart.LineItems) != 0 {
		t.Errorf("line count = %d, want 0", len(cart.LineItems))
	}
	if got := cart.OrderTotal(); got != 0 {
		t.Errorf("orderTotal = %v, want 0", got)
	}
}

func TestSetItemQtyMissingLineIsNoOp(t *testing.T) {
	svc, store := testService()
	ctx := context.Background()

	cart, _ := svc.GetCart(ctx, "u1")
	before := cart.Rev

	cart, err := svc.SetItemQty(ctx, cart, "hammer", "", 5)
	if err != nil {
		t.Fatalf("SetItemQty: %v", err)
	}
	if len(cart.LineItems) != 0 {
		t.Errorf("set-quantity on a missing line must not add it")
	}

	stored, _ := store.OrderByID(ctx, cart.ID)
	if stored.Rev != before {
		t.Errorf("no-op should not write: rev %d -> %d", before, stored.Rev)
	}
}

func TestCheckoutEmptyCart(t *testing.T) {
	svc, _ := testService()
	ctx := context.Background()

	cart, _ := svc.GetCart(ctx, "u1")
	if _, err := svc.Checkout(ctx, cart); !errors.Is(err, ErrEmptyCart) {
		t.Errorf("err = %v, want ErrEmptyCart", err)
	}
}

func TestCheckoutAndRepeatedCheckout(t *testing.T) {
	svc, _ := testService()
	ctx := context.Background()

	cart, _ := svc.GetCart(ctx, "u1")
	cart, _ = svc.AddItem(ctx, cart, "hammer", "")

	order, err := svc.Checkout(ctx, cart)
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if !order.IsPaid || order.PaidAt == nil {
		t.Fatalf("checked-out order should be paid with a timestamp: %+v", order)
	}

	if _, err := svc.Checkout(ctx, order); !errors.Is(err, ErrAlreadyPaid) {
		t.Errorf("second checkout err = %v, want ErrAlreadyPaid", err)
	}
	if _, err := svc.AddItem(ctx, order, "hammer", ""); !errors.Is(err, ErrAlreadyPaid) {
		t.Errorf("mutating a paid order err = %v, want ErrAlreadyPaid", err)
	}

	// After checkout a fresh GetCart starts a new, empty cart.
	fresh, _ := svc.GetCart(ctx, "u1")
	if fresh.ID == order.ID {
		t.Errorf("GetCart returned the paid order")
	}
	if len(fresh.LineItems) != 0 {
		t.Errorf("fresh cart should be empty")
	}
}

func TestCheckoutOnStaleCopyOfPaidOrder(t *testing.T) {
	svc, _ := testService()
	ctx := context.Background()

	cart, _ := svc.GetCart(ctx, "u1")
	cart, _ = svc.AddItem(ctx, cart, "hammer", "")

	// Simulate two tabs holding the same cart.
	stale := *cart
	stale.LineItems = append([]models.LineItem(nil), cart.LineItems...)

	if _, err := svc.Checkout(ctx, cart); err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	// The second tab's copy is stale; the retry reload sees the paid order.
	if _, err := svc.Checkout(ctx, &stale); !errors.Is(err, ErrAlreadyPaid) {
		t.Errorf("stale checkout err = %v, want ErrAlreadyPaid", err)
	}
}

func TestHistory(t *testing.T) {
	svc, _ := testService()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		cart, _ := svc.GetCart(ctx, "u1")
		cart, _ = svc.AddItem(ctx, cart, "hammer", "")
		if _, err := svc.Checkout(ctx, cart); err != nil {
			t.Fatalf("Checkout: %v", err)
		}
		time.Sleep(2 * time.Millisecond)
	}

	// An open cart must never show up in history.
	open, _ := svc.GetCart(ctx, "u1")
	_, _ = svc.AddItem(ctx, open, "drill", "")

	history, err := svc.History(ctx, "u1")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("history length = %d, want 2", len(history))
	}
	if history[0].PaidAt.Before(*history[1].PaidAt) {
		t.Errorf("history should be most recent first")
	}
	for _, o := range history {
		if !o.IsPaid {
			t.Errorf("unpaid order in history: %+v", o)
		}
	}
}

func TestUpdateRetriesExhaustedReturnConflict(t *testing.T) {
	store := newMemStore()
	cat := &fakeCatalog{items: map[string]models.Item{
		"hammer": {ItemID: "hammer", Name: "Claw Hammer", Price: 100},
	}}
	svc := NewService(&staleStore{Store: store}, cat)
	ctx := context.Background()

	cart, _ := svc.GetCart(ctx, "u1")
	if _, err := svc.AddItem(ctx, cart, "hammer", ""); !errors.Is(err, ErrConflict) {
		t.Errorf("err = %v, want ErrConflict", err)
	}
}

func TestOrderScopedToOwner(t *testing.T) {
	svc, _ := testService()
	ctx := context.Background()

	cart, _ := svc.GetCart(ctx, "u1")
	cart, _ = svc.AddItem(ctx, cart, "hammer", "")
	order, _ := svc.Checkout(ctx, cart)

	if _, err := svc.Order(ctx, "u1", order.ID); err != nil {
		t.Fatalf("owner lookup: %v", err)
	}
	if _, err := svc.Order(ctx, "u2", order.ID); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("foreign lookup err = %v, want ErrOrderNotFound", err)
	}
}
