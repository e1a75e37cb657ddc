package models

import "time"

// SubItem is one purchasable configuration (variant) of an Item.
type SubItem struct {
	SubItemID string   `json:"id" bson:"subitemid"`
	Color     string   `json:"color" bson:"color"`
	Size      string   `json:"size,omitempty" bson:"size,omitempty"`
	Weight    string   `json:"weight,omitempty" bson:"weight,omitempty"`
	Amount    string   `json:"amount,omitempty" bson:"amount,omitempty"`
	Price     float64  `json:"price" bson:"price"`
	Gallery   []string `json:"gallery,omitempty" bson:"gallery,omitempty"`
}

// Item is a purchasable product. From the cart's perspective it is a
// read-only snapshot reference.
type Item struct {
	ItemID      string    `json:"id" bson:"itemid"`
	Name        string    `json:"name" bson:"name"`
	Description string    `json:"description" bson:"description"`
	Image       string    `json:"image,omitempty" bson:"image,omitempty"`
	CategoryID  string    `json:"categoryId,omitempty" bson:"categoryid,omitempty"`
	Price       float64   `json:"price" bson:"price"`
	SubItems    []SubItem `json:"subItems,omitempty" bson:"subitems,omitempty"`
	Featured    bool      `json:"featured" bson:"featured"`
	SearchTerms []string  `json:"searchTerms,omitempty" bson:"searchterms,omitempty"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt"`
}

// FindSubItem returns the variant with the given id, or nil.
func (i *Item) FindSubItem(subItemID string) *SubItem {
	for idx := range i.SubItems {
		if i.SubItems[idx].SubItemID == subItemID {
			return &i.SubItems[idx]
		}
	}
	return nil
}

type Category struct {
	CategoryID   string `json:"id" bson:"categoryid"`
	Name         string `json:"name" bson:"name"`
	DepartmentID string `json:"departmentId,omitempty" bson:"departmentid,omitempty"`
	SortOrder    int    `json:"sortOrder" bson:"sortOrder"`
}

type Department struct {
	DepartmentID string `json:"id" bson:"departmentid"`
	Name         string `json:"name" bson:"name"`
}
