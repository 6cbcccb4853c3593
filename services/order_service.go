package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"storefront-api/cache"
	"storefront-api/mailer"
	"storefront-api/models"
	"storefront-api/payments"
	"storefront-api/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	gatewayCurrency = "INR"

	defaultShippingCountry = "India"
)

// Sender dispatches the order confirmation email. Satisfied by
// *mailer.Mailer.
type Sender interface {
	SendOrderConfirmation(ctx context.Context, data mailer.OrderEmailData) mailer.Result
}

// IntakeItem is one line of an order intake request.
type IntakeItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Image     string  `json:"image"`
	Size      string  `json:"size"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

// OrderIntake is the validated shape of an order submission. TotalAmount
// is taken as the authoritative charge amount; it is not recomputed from
// the item prices.
type OrderIntake struct {
	CustomerName        string       `json:"customerName"`
	CustomerEmail       string       `json:"customerEmail"`
	CustomerPhone       string       `json:"customerPhone"`
	ShippingAddress     string       `json:"shippingAddress"`
	ShippingCity        string       `json:"shippingCity"`
	ShippingState       string       `json:"shippingState"`
	ShippingPincode     string       `json:"shippingPincode"`
	ShippingCountry     string       `json:"shippingCountry"`
	PaymentMethod       string       `json:"paymentMethod"`
	Items               []IntakeItem `json:"items"`
	Subtotal            float64      `json:"subtotal"`
	Tax                 float64      `json:"tax"`
	ShippingCost        float64      `json:"shippingCost"`
	TotalAmount         float64      `json:"totalAmount"`
	SpecialInstructions string       `json:"specialInstructions"`
	UserID              string       `json:"userId"`
}

// PaymentVerificationRequest carries the gateway's signed proof of payment.
// Consumed once, never persisted as-is.
type PaymentVerificationRequest struct {
	OrderID          string `json:"orderId"`
	GatewayOrderID   string `json:"gatewayOrderId"`
	GatewayPaymentID string `json:"gatewayPaymentId"`
	GatewaySignature string `json:"gatewaySignature"`
}

// OrderService is the order lifecycle manager: it owns order creation with
// item rollback, the gateway payment flow, the payment-confirmed state
// transition, and the single call sites for confirmation email dispatch.
type OrderService struct {
	store         store.OrderStore
	gateway       payments.Gateway
	sender        Sender
	listCache     *cache.OrderListCache
	gatewaySecret string
}

func NewOrderService(orderStore store.OrderStore, gateway payments.Gateway, sender Sender, listCache *cache.OrderListCache, gatewaySecret string) *OrderService {
	return &OrderService{
		store:         orderStore,
		gateway:       gateway,
		sender:        sender,
		listCache:     listCache,
		gatewaySecret: gatewaySecret,
	}
}

// CreateOrder validates the intake, persists the order and its items, and
// for cash-on-delivery kicks off the confirmation email without waiting on
// it. If item persistence fails after the order write, the order is
// deleted again and the intake reported as failed; the caller must treat
// that as "order was not placed".
func (s *OrderService) CreateOrder(ctx context.Context, intake OrderIntake) (models.Order, []models.OrderItem, error) {
	userID, err := validateIntake(&intake)
	if err != nil {
		return models.Order{}, nil, err
	}

	orderNumber, err := s.store.NextOrderNumber(ctx)
	if err != nil {
		// Fall back to a timestamp-derived number rather than fail the
		// intake. Small collision risk, accepted.
		orderNumber = fallbackOrderNumber(time.Now())
		log.Printf("orders: order number generator unavailable, using %s: %v", orderNumber, err)
	}

	status, paymentStatus := models.StatusPendingPayment, models.PaymentPending
	if intake.PaymentMethod == models.PaymentMethodCOD {
		status, paymentStatus = models.StatusConfirmed, models.PaymentCompleted
	}

	now := time.Now()
	order := models.Order{
		ID:                  primitive.NewObjectID(),
		UserID:              userID,
		OrderNumber:         orderNumber,
		Status:              status,
		PaymentMethod:       intake.PaymentMethod,
		PaymentStatus:       paymentStatus,
		CustomerName:        intake.CustomerName,
		CustomerEmail:       intake.CustomerEmail,
		CustomerPhone:       intake.CustomerPhone,
		ShippingAddress:     intake.ShippingAddress,
		ShippingCity:        intake.ShippingCity,
		ShippingState:       intake.ShippingState,
		ShippingPincode:     intake.ShippingPincode,
		ShippingCountry:     intake.ShippingCountry,
		Subtotal:            intake.Subtotal,
		Tax:                 intake.Tax,
		ShippingCost:        intake.ShippingCost,
		TotalAmount:         intake.TotalAmount,
		SpecialInstructions: intake.SpecialInstructions,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := s.store.CreateOrder(ctx, order); err != nil {
		return models.Order{}, nil, &PersistenceError{Op: "create order", Err: err}
	}

	items := make([]models.OrderItem, 0, len(intake.Items))
	for _, line := range intake.Items {
		items = append(items, models.OrderItem{
			ID:           primitive.NewObjectID(),
			OrderID:      order.ID,
			ProductID:    line.ProductID,
			ProductName:  line.Name,
			ProductImage: line.Image,
			Size:         line.Size,
			Quantity:     line.Quantity,
			UnitPrice:    line.Price,
			TotalPrice:   line.Price * float64(line.Quantity),
			CreatedAt:    now,
		})
	}

	if err := s.store.CreateOrderItems(ctx, items); err != nil {
		// Compensating delete: there is no cross-collection transaction, so
		// roll the order back by hand. If the delete itself fails the
		// orphan is logged for manual cleanup.
		if delErr := s.store.DeleteOrder(ctx, order.ID); delErr != nil {
			log.Printf("orders: rollback of order %s failed, orphaned record needs cleanup: %v", order.ID.Hex(), delErr)
		}
		return models.Order{}, nil, &PersistenceError{Op: "create order items", Err: err}
	}

	if userID != nil {
		s.listCache.Invalidate(ctx, userID.Hex())
	}

	// Prepaid orders get their email after payment confirmation instead.
	if order.PaymentMethod == models.PaymentMethodCOD {
		s.dispatchConfirmation(order, items)
	}

	return order, items, nil
}

// InitiateGatewayPayment opens a remote gateway transaction for the
// order's total, using the order number as the receipt id. The returned
// amount is in minor currency units.
func (s *OrderService) InitiateGatewayPayment(ctx context.Context, orderID string) (gatewayOrderID string, amountMinorUnits int64, currency string, err error) {
	id, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return "", 0, "", &NotFoundError{Message: "order not found"}
	}

	order, err := s.store.GetOrder(ctx, id)
	if errors.Is(err, store.ErrOrderNotFound) {
		return "", 0, "", &NotFoundError{Message: "order not found"}
	}
	if err != nil {
		return "", 0, "", &PersistenceError{Op: "fetch order", Err: err}
	}

	if order.PaymentMethod != models.PaymentMethodGateway {
		return "", 0, "", &ValidationError{Message: "order is not set for gateway payment"}
	}
	if order.PaymentStatus == models.PaymentCompleted {
		return "", 0, "", &ConflictError{Message: "order is already paid"}
	}

	amountMinorUnits = int64(math.Round(order.TotalAmount * 100))

	gatewayOrderID, err = s.gateway.OpenTransaction(amountMinorUnits, gatewayCurrency, order.OrderNumber, map[string]interface{}{
		"orderId": order.ID.Hex(),
	})
	if err != nil {
		return "", 0, "", err
	}

	// Best effort: the payment can still proceed if this write is lost,
	// the gateway id comes back again with the verification callback.
	if err := s.store.UpdateOrder(ctx, order.ID, map[string]interface{}{"gatewayOrderId": gatewayOrderID}); err != nil {
		log.Printf("orders: failed to save gateway order id %s on order %s: %v", gatewayOrderID, order.ID.Hex(), err)
	}

	return gatewayOrderID, amountMinorUnits, gatewayCurrency, nil
}

// ConfirmGatewayPayment verifies the gateway's signature and, only on a
// match, marks the order paid and confirmed. Nothing upstream of the
// signature check may mark an order paid. The confirmation email is
// dispatched after the state change commits and its outcome never affects
// the returned error.
func (s *OrderService) ConfirmGatewayPayment(ctx context.Context, req PaymentVerificationRequest) (models.Order, error) {
	if req.OrderID == "" || req.GatewayOrderID == "" || req.GatewayPaymentID == "" || req.GatewaySignature == "" {
		return models.Order{}, &ValidationError{Message: "missing payment verification fields"}
	}

	if s.gatewaySecret == "" {
		return models.Order{}, &ConfigError{Message: "payment gateway secret not configured"}
	}

	if !payments.VerifySignature(req.GatewayOrderID, req.GatewayPaymentID, s.gatewaySecret, req.GatewaySignature) {
		return models.Order{}, &SignatureError{}
	}

	id, err := primitive.ObjectIDFromHex(req.OrderID)
	if err != nil {
		return models.Order{}, &NotFoundError{Message: "order not found"}
	}

	order, err := s.store.GetOrder(ctx, id)
	if errors.Is(err, store.ErrOrderNotFound) {
		return models.Order{}, &NotFoundError{Message: "order not found"}
	}
	if err != nil {
		return models.Order{}, &PersistenceError{Op: "fetch order", Err: err}
	}

	patch := map[string]interface{}{
		"paymentStatus":    models.PaymentCompleted,
		"status":           models.StatusConfirmed,
		"gatewayOrderId":   req.GatewayOrderID,
		"gatewayPaymentId": req.GatewayPaymentID,
		"gatewaySignature": req.GatewaySignature,
	}
	if err := s.store.UpdateOrder(ctx, order.ID, patch); err != nil {
		// The gateway considers this payment settled regardless, so the
		// failure mode matters to operators: surface it distinctly.
		return models.Order{}, &PersistenceError{Op: "update order after verified payment", Err: err}
	}

	order.PaymentStatus = models.PaymentCompleted
	order.Status = models.StatusConfirmed
	order.GatewayOrderID = req.GatewayOrderID
	order.GatewayPaymentID = req.GatewayPaymentID
	order.GatewaySignature = req.GatewaySignature

	if order.UserID != nil {
		s.listCache.Invalidate(ctx, order.UserID.Hex())
	}

	items, err := s.store.ListOrderItems(ctx, order.ID)
	if err != nil {
		log.Printf("orders: could not load items of order %s for confirmation email: %v", order.ID.Hex(), err)
		items = nil
	}
	s.dispatchConfirmation(order, items)

	return order, nil
}

// ListUserOrders returns the caller's orders newest first with their
// items, through the listing cache when one is configured.
func (s *OrderService) ListUserOrders(ctx context.Context, userID string) ([]models.OrderWithItems, error) {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, &ValidationError{Message: "invalid user id"}
	}

	orders, err := s.listCache.Get(ctx, userID, func(ctx context.Context) ([]models.OrderWithItems, error) {
		return s.store.ListOrdersByUser(ctx, id)
	})
	if err != nil {
		return nil, &PersistenceError{Op: "list orders", Err: err}
	}
	return orders, nil
}

// dispatchConfirmation sends the confirmation email from a detached
// goroutine. The caller's request is already decided; the outcome is only
// logged. Each state transition has exactly one call site, so a retried
// verification callback can re-send, which is accepted.
func (s *OrderService) dispatchConfirmation(order models.Order, items []models.OrderItem) {
	data := mailer.OrderEmailData{
		OrderNumber:   order.OrderNumber,
		CustomerName:  order.CustomerName,
		CustomerEmail: order.CustomerEmail,
		OrderDate:     order.CreatedAt.Format("2 January 2006"),
		Subtotal:      order.Subtotal,
		Tax:           order.Tax,
		ShippingCost:  order.ShippingCost,
		TotalAmount:   order.TotalAmount,
		PaymentMethod: order.PaymentMethod,
		ShippingAddress: mailer.EmailAddress{
			Address: order.ShippingAddress,
			City:    order.ShippingCity,
			State:   order.ShippingState,
			Pincode: order.ShippingPincode,
			Country: order.ShippingCountry,
		},
	}
	for _, item := range items {
		data.Items = append(data.Items, mailer.EmailItem{
			Name:       item.ProductName,
			Image:      item.ProductImage,
			Size:       item.Size,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			TotalPrice: item.TotalPrice,
		})
	}

	go func() {
		if result := s.sender.SendOrderConfirmation(context.Background(), data); !result.Success {
			log.Printf("orders: confirmation email for %s not delivered: %s", order.OrderNumber, result.Error)
		}
	}()
}

func validateIntake(intake *OrderIntake) (*primitive.ObjectID, error) {
	switch {
	case intake.CustomerName == "", intake.CustomerEmail == "", intake.CustomerPhone == "",
		intake.ShippingAddress == "", intake.ShippingCity == "", intake.ShippingState == "",
		intake.ShippingPincode == "":
		return nil, &ValidationError{Message: "missing required fields"}
	case intake.TotalAmount <= 0:
		return nil, &ValidationError{Message: "missing required fields"}
	case len(intake.Items) == 0:
		return nil, &ValidationError{Message: "order must contain at least one item"}
	}

	if !models.ValidPaymentMethod(intake.PaymentMethod) {
		return nil, &ValidationError{Message: "invalid payment method"}
	}

	for _, item := range intake.Items {
		if item.ProductID == "" || item.Name == "" {
			return nil, &ValidationError{Message: "item is missing product details"}
		}
		if item.Quantity <= 0 {
			return nil, &ValidationError{Message: "item quantity must be positive"}
		}
		if item.Price < 0 {
			return nil, &ValidationError{Message: "item price must not be negative"}
		}
	}

	if intake.ShippingCountry == "" {
		intake.ShippingCountry = defaultShippingCountry
	}

	if intake.UserID == "" {
		return nil, nil
	}
	userID, err := primitive.ObjectIDFromHex(intake.UserID)
	if err != nil {
		return nil, &ValidationError{Message: "invalid user id"}
	}
	return &userID, nil
}

// fallbackOrderNumber derives an order number from the millisecond clock
// when the generator is unavailable.
func fallbackOrderNumber(now time.Time) string {
	ms := fmt.Sprintf("%d", now.UnixMilli())
	if len(ms) > 10 {
		ms = ms[len(ms)-10:]
	}
	return "ORD-" + ms
}
