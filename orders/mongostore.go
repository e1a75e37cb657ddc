package orders

import (
	"context"
	"errors"
	"time"

	"github.com/jillianguerra/home-depot/models"
	"github.com/jillianguerra/home-depot/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore keeps one document per order in the orders collection. A
// partial unique index on (user, ispaid:false) backs the one-unpaid-order-
// per-user invariant.
type MongoStore struct {
	orders *mongo.Collection
}

func NewMongoStore(orders *mongo.Collection) *MongoStore {
	return &MongoStore{orders: orders}
}

// GetOrCreateCart is a single atomic upsert: find the unpaid order for the
// user or insert an empty one, in one round trip. Concurrent first-time
// callers cannot create duplicate carts.
func (s *MongoStore) GetOrCreateCart(ctx context.Context, userID string) (*models.Order, error) {
	filter := bson.M{"user": userID, "ispaid": false}
	update := bson.M{"$setOnInsert": bson.M{
		"orderid":   utils.GetUUID(),
		"user":      userID,
		"ispaid":    false,
		"rev":       int64(0),
		"lineitems": []models.LineItem{},
		"createdAt": time.Now(),
	}}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var order models.Order
	if err := s.orders.FindOneAndUpdate(ctx, filter, update, opts).Decode(&order); err != nil {
		return nil, err
	}
	return &order, nil
}

// Update writes the aggregate back with a compare-and-swap on the revision,
// so rapid double-clicks cannot lose updates.
func (s *MongoStore) Update(ctx context.Context, o *models.Order) error {
	res, err := s.orders.UpdateOne(ctx,
		bson.M{"orderid": o.ID, "rev": o.Rev},
		bson.M{
			"$set": bson.M{
				"lineitems": o.LineItems,
				"ispaid":    o.IsPaid,
				"paidAt":    o.PaidAt,
			},
			"$inc": bson.M{"rev": 1},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrStaleOrder
	}
	o.Rev++
	return nil
}

func (s *MongoStore) PaidOrders(ctx context.Context, userID string) ([]models.Order, error) {
	filter := bson.M{"user": userID, "ispaid": true}
	opts := options.Find().SetSort(bson.D{{Key: "paidAt", Value: -1}})
	return utils.FindAndDecode[models.Order](ctx, s.orders, filter, opts)
}

func (s *MongoStore) OrderByID(ctx context.Context, orderID string) (*models.Order, error) {
	var order models.Order
	err := s.orders.FindOne(ctx, bson.M{"orderid": orderID}).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}
