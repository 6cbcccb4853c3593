package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order statuses. Cancellation is only ever entered from pending_payment
// and is terminal; nothing in this service performs it yet.
const (
	StatusPendingPayment = "pending_payment"
	StatusConfirmed      = "confirmed"
	StatusCancelled      = "cancelled"
)

// Payment statuses.
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
)

// Payment methods accepted at intake.
const (
	PaymentMethodCOD     = "cash_on_delivery"
	PaymentMethodGateway = "gateway"
)

// Order represents a customer order. Shipping fields are captured inline at
// intake time and monetary fields are fixed at creation; payment only ever
// changes status, never amounts.
type Order struct {
	ID                  primitive.ObjectID  `json:"id" bson:"_id"`
	UserID              *primitive.ObjectID `json:"userId,omitempty" bson:"userId,omitempty"`
	OrderNumber         string              `json:"orderNumber" bson:"orderNumber"`
	Status              string              `json:"status" bson:"status"`
	PaymentMethod       string              `json:"paymentMethod" bson:"paymentMethod"`
	PaymentStatus       string              `json:"paymentStatus" bson:"paymentStatus"`
	CustomerName        string              `json:"customerName" bson:"customerName"`
	CustomerEmail       string              `json:"customerEmail" bson:"customerEmail"`
	CustomerPhone       string              `json:"customerPhone" bson:"customerPhone"`
	ShippingAddress     string              `json:"shippingAddress" bson:"shippingAddress"`
	ShippingCity        string              `json:"shippingCity" bson:"shippingCity"`
	ShippingState       string              `json:"shippingState" bson:"shippingState"`
	ShippingPincode     string              `json:"shippingPincode" bson:"shippingPincode"`
	ShippingCountry     string              `json:"shippingCountry" bson:"shippingCountry"`
	Subtotal            float64             `json:"subtotal" bson:"subtotal"`
	Tax                 float64             `json:"tax" bson:"tax"`
	ShippingCost        float64             `json:"shippingCost" bson:"shippingCost"`
	TotalAmount         float64             `json:"totalAmount" bson:"totalAmount"`
	SpecialInstructions string              `json:"specialInstructions,omitempty" bson:"specialInstructions,omitempty"`
	GatewayOrderID      string              `json:"gatewayOrderId,omitempty" bson:"gatewayOrderId,omitempty"`
	GatewayPaymentID    string              `json:"gatewayPaymentId,omitempty" bson:"gatewayPaymentId,omitempty"`
	GatewaySignature    string              `json:"-" bson:"gatewaySignature,omitempty"`
	CreatedAt           time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt           time.Time           `json:"updatedAt" bson:"updatedAt"`
}

// OrderItem represents a single purchased line. Product name, image and
// size are denormalized at purchase time so later catalog edits cannot
// rewrite order history. Items are read-only after creation and are only
// deleted when their order is rolled back.
type OrderItem struct {
	ID           primitive.ObjectID `json:"id" bson:"_id"`
	OrderID      primitive.ObjectID `json:"orderId" bson:"orderId"`
	ProductID    string             `json:"productId" bson:"productId"`
	ProductName  string             `json:"name" bson:"productName"`
	ProductImage string             `json:"image,omitempty" bson:"productImage,omitempty"`
	Size         string             `json:"size,omitempty" bson:"size,omitempty"`
	Quantity     int                `json:"quantity" bson:"quantity"`
	UnitPrice    float64            `json:"unitPrice" bson:"unitPrice"`
	TotalPrice   float64            `json:"totalPrice" bson:"totalPrice"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
}

// OrderWithItems pairs an order with its lines for the listing endpoint.
type OrderWithItems struct {
	Order `bson:",inline"`
	Items []OrderItem `json:"items"`
}

// ValidPaymentMethod reports whether m is one of the accepted intake values.
func ValidPaymentMethod(m string) bool {
	return m == PaymentMethodCOD || m == PaymentMethodGateway
}
