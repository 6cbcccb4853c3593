package store

import (
	"context"
	"fmt"
	"time"

	"storefront-api/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore implements OrderStore on top of MongoDB collections. Orders
// and order items live in separate collections, so the two-step create in
// the service layer really is two independent writes.
type MongoStore struct {
	orders   *mongo.Collection
	items    *mongo.Collection
	counters *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		orders:   db.Collection("orders"),
		items:    db.Collection("order_items"),
		counters: db.Collection("counters"),
	}
}

func (s *MongoStore) CreateOrder(ctx context.Context, order models.Order) error {
	_, err := s.orders.InsertOne(ctx, order)
	return err
}

func (s *MongoStore) DeleteOrder(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.orders.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (s *MongoStore) CreateOrderItems(ctx context.Context, items []models.OrderItem) error {
	docs := make([]interface{}, 0, len(items))
	for _, item := range items {
		docs = append(docs, item)
	}
	_, err := s.items.InsertMany(ctx, docs)
	return err
}

func (s *MongoStore) GetOrder(ctx context.Context, id primitive.ObjectID) (models.Order, error) {
	var order models.Order
	err := s.orders.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if err == mongo.ErrNoDocuments {
		return models.Order{}, ErrOrderNotFound
	}
	if err != nil {
		return models.Order{}, err
	}
	return order, nil
}

func (s *MongoStore) UpdateOrder(ctx context.Context, id primitive.ObjectID, patch map[string]interface{}) error {
	set := bson.M{"updatedAt": time.Now()}
	for field, value := range patch {
		set[field] = value
	}

	result, err := s.orders.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (s *MongoStore) ListOrderItems(ctx context.Context, orderID primitive.ObjectID) ([]models.OrderItem, error) {
	cursor, err := s.items.Find(ctx, bson.M{"orderId": orderID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var items []models.OrderItem
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *MongoStore) ListOrdersByUser(ctx context.Context, userID primitive.ObjectID) ([]models.OrderWithItems, error) {
	cursor, err := s.orders.Find(ctx, bson.M{"userId": userID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}

	listed := make([]models.OrderWithItems, 0, len(orders))
	for _, order := range orders {
		items, err := s.ListOrderItems(ctx, order.ID)
		if err != nil {
			return nil, err
		}
		listed = append(listed, models.OrderWithItems{Order: order, Items: items})
	}
	return listed, nil
}

// NextOrderNumber hands out a sequential order number from an atomically
// incremented counter document. Numbers are assigned exactly once and
// never reused; a gap from a failed intake is fine.
func (s *MongoStore) NextOrderNumber(ctx context.Context) (string, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}

	err := s.counters.FindOneAndUpdate(
		ctx,
		bson.M{"_id": "orders"},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoOrderNumber, err)
	}

	return fmt.Sprintf("ORD-%06d", counter.Seq), nil
}
