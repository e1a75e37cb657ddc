package models

import "time"

type Review struct {
	ReviewID string    `json:"id" bson:"reviewid"`
	UserID   string    `json:"userId" bson:"userid"`
	ItemID   string    `json:"itemId" bson:"itemid"`
	Rating   int       `json:"rating" bson:"rating"`
	Comment  string    `json:"comment" bson:"comment"`
	Date     time.Time `json:"date" bson:"date"`
}
