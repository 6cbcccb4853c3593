package store

import (
	"context"
	"errors"

	"storefront-api/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrOrderNotFound is returned by reads and updates against an unknown
// order id.
var ErrOrderNotFound = errors.New("order not found")

// ErrNoOrderNumber means the order-number generator is unavailable. Callers
// are expected to fall back to a locally derived number rather than fail
// the intake.
var ErrNoOrderNumber = errors.New("order number generator unavailable")

// OrderStore is the narrow record-oriented contract against the external
// data store. There is no transactional guarantee across CreateOrder and
// CreateOrderItems; callers own the compensation when the second write
// fails.
type OrderStore interface {
	CreateOrder(ctx context.Context, order models.Order) error
	DeleteOrder(ctx context.Context, id primitive.ObjectID) error
	CreateOrderItems(ctx context.Context, items []models.OrderItem) error
	GetOrder(ctx context.Context, id primitive.ObjectID) (models.Order, error)
	UpdateOrder(ctx context.Context, id primitive.ObjectID, patch map[string]interface{}) error
	ListOrderItems(ctx context.Context, orderID primitive.ObjectID) ([]models.OrderItem, error)
	ListOrdersByUser(ctx context.Context, userID primitive.ObjectID) ([]models.OrderWithItems, error)
	NextOrderNumber(ctx context.Context) (string, error)
}
