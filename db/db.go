package db

import (
	"context"
	"os"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const databaseName = "storedb"

// Mongo is the explicit persistence handle passed into the services.
// Its lifecycle is owned by main: opened at startup, closed at shutdown.
type Mongo struct {
	Client *mongo.Client

	Items       *mongo.Collection
	Orders      *mongo.Collection
	Reviews     *mongo.Collection
	Categories  *mongo.Collection
	Departments *mongo.Collection
	Users       *mongo.Collection
	Wishlist    *mongo.Collection
}

// Connect opens the MongoDB connection and prepares the collections.
func Connect(ctx context.Context) (*Mongo, error) {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	database := client.Database(databaseName)
	m := &Mongo{
		Client:      client,
		Items:       database.Collection("items"),
		Orders:      database.Collection("orders"),
		Reviews:     database.Collection("reviews"),
		Categories:  database.Collection("categories"),
		Departments: database.Collection("departments"),
		Users:       database.Collection("users"),
		Wishlist:    database.Collection("wishlist"),
	}

	if err := m.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

// ensureIndexes backs the storage invariants: at most one unpaid order per
// user (the cart upsert races against this index), unique item ids, and one
// review per user per item.
func (m *Mongo) ensureIndexes(ctx context.Context) error {
	_, err := m.Orders.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user", Value: 1}},
		Options: options.Index().
			SetUnique(true).
			SetPartialFilterExpression(bson.M{"ispaid": false}),
	})
	if err != nil {
		return err
	}

	_, err = m.Items.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "itemid", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = m.Reviews.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userid", Value: 1}, {Key: "itemid", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}
