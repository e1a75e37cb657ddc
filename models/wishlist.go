package models

import "time"

// WishlistEntry is a per-user saved item.
type WishlistEntry struct {
	UserID  string    `json:"userId" bson:"userid"`
	ItemID  string    `json:"itemId" bson:"itemid"`
	AddedAt time.Time `json:"addedAt" bson:"addedAt"`
}
