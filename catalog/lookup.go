package catalog

import (
	"context"
	"errors"

	"github.com/jillianguerra/home-depot/models"
	"github.com/jillianguerra/home-depot/orders"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Lookup resolves item references for the order service.
type Lookup struct {
	items *mongo.Collection
}

func NewLookup(items *mongo.Collection) *Lookup {
	return &Lookup{items: items}
}

func (l *Lookup) ItemByID(ctx context.Context, itemID string) (*models.Item, error) {
	var item models.Item
	err := l.items.FindOne(ctx, bson.M{"itemid": itemID}).Decode(&item)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, orders.ErrItemNotFound
		}
		return nil, err
	}
	return &item, nil
}
