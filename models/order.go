package models

import (
	"encoding/json"
	"strings"
	"time"
)

// LineItem binds a quantity to a snapshot of an Item (and optionally the
// chosen SubItem) taken when the line entered the cart. Quantity is a
// positive integer for as long as the line exists; lines whose quantity
// drops to zero are removed by the order service, never persisted.
type LineItem struct {
	Qty     int      `json:"qty" bson:"qty"`
	Item    Item     `json:"item" bson:"item"`
	SubItem *SubItem `json:"subItem,omitempty" bson:"subitem,omitempty"`
}

// UnitPrice is the chosen variant's price when one was picked, else the
// item's base price.
func (li LineItem) UnitPrice() float64 {
	if li.SubItem != nil {
		return li.SubItem.Price
	}
	return li.Item.Price
}

// ExtPrice is qty x unit price.
func (li LineItem) ExtPrice() float64 {
	return float64(li.Qty) * li.UnitPrice()
}

func (li LineItem) MarshalJSON() ([]byte, error) {
	type alias LineItem
	return json.Marshal(struct {
		alias
		ExtPrice float64 `json:"extPrice"`
	}{alias(li), li.ExtPrice()})
}

// Order doubles as the cart before checkout and an order-history record
// after. Rev is the optimistic-concurrency revision the store CASes on.
type Order struct {
	ID        string     `json:"id" bson:"orderid"`
	User      string     `json:"user" bson:"user"`
	LineItems []LineItem `json:"lineItems" bson:"lineitems"`
	IsPaid    bool       `json:"isPaid" bson:"ispaid"`
	Rev       int64      `json:"-" bson:"rev"`
	CreatedAt time.Time  `json:"createdAt" bson:"createdAt"`
	PaidAt    *time.Time `json:"paidAt,omitempty" bson:"paidAt,omitempty"`
}

// OrderTotal, TotalQty and ShortID are recomputed on every read and never
// stored, so they cannot drift from the line items.

func (o Order) OrderTotal() float64 {
	var total float64
	for _, li := range o.LineItems {
		total += li.ExtPrice()
	}
	return total
}

func (o Order) TotalQty() int {
	var qty int
	for _, li := range o.LineItems {
		qty += li.Qty
	}
	return qty
}

// ShortID is the human-readable order number: the last six characters of
// the id, uppercased.
func (o Order) ShortID() string {
	id := o.ID
	if len(id) > 6 {
		id = id[len(id)-6:]
	}
	return strings.ToUpper(id)
}

// FindLine returns the line for (itemID, subItemID), or nil. An empty
// subItemID matches only lines without a variant.
func (o *Order) FindLine(itemID, subItemID string) *LineItem {
	for idx := range o.LineItems {
		li := &o.LineItems[idx]
		if li.Item.ItemID != itemID {
			continue
		}
		if subItemID == "" && li.SubItem == nil {
			return li
		}
		if li.SubItem != nil && li.SubItem.SubItemID == subItemID {
			return li
		}
	}
	return nil
}

// RemoveLine drops the line for (itemID, subItemID), preserving the order
// of the remaining lines.
func (o *Order) RemoveLine(itemID, subItemID string) {
	kept := o.LineItems[:0]
	for _, li := range o.LineItems {
		match := li.Item.ItemID == itemID &&
			((subItemID == "" && li.SubItem == nil) ||
				(li.SubItem != nil && li.SubItem.SubItemID == subItemID))
		if !match {
			kept = append(kept, li)
		}
	}
	o.LineItems = kept
}

func (o Order) MarshalJSON() ([]byte, error) {
	type alias Order
	return json.Marshal(struct {
		alias
		OrderID    string  `json:"orderId"`
		OrderTotal float64 `json:"orderTotal"`
		TotalQty   int     `json:"totalQty"`
	}{alias(o), o.ShortID(), o.OrderTotal(), o.TotalQty()})
}
