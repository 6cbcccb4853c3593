package controllers

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"storefront-api/mailer"
	"storefront-api/middlewares"
	"storefront-api/models"
	"storefront-api/responses"
	"storefront-api/services"
	"storefront-api/store"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	testGatewaySecret = "gw-secret"
	testJWTSecret     = "jwt-secret"
)

type memStore struct {
	mu     sync.Mutex
	orders map[primitive.ObjectID]models.Order
	items  map[primitive.ObjectID][]models.OrderItem
	seq    int64
}

func newMemStore() *memStore {
	return &memStore{
		orders: make(map[primitive.ObjectID]models.Order),
		items:  make(map[primitive.ObjectID][]models.OrderItem),
	}
}

func (m *memStore) CreateOrder(ctx context.Context, order models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[order.ID] = order
	return nil
}

func (m *memStore) DeleteOrder(ctx context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.orders, id)
	return nil
}

func (m *memStore) CreateOrderItems(ctx context.Context, items []models.OrderItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range items {
		m.items[item.OrderID] = append(m.items[item.OrderID], item)
	}
	return nil
}

func (m *memStore) GetOrder(ctx context.Context, id primitive.ObjectID) (models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[id]
	if !ok {
		return models.Order{}, store.ErrOrderNotFound
	}
	return order, nil
}

func (m *memStore) UpdateOrder(ctx context.Context, id primitive.ObjectID, patch map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[id]
	if !ok {
		return store.ErrOrderNotFound
	}
	if v, ok := patch["status"].(string); ok {
		order.Status = v
	}
	if v, ok := patch["paymentStatus"].(string); ok {
		order.PaymentStatus = v
	}
	if v, ok := patch["gatewayOrderId"].(string); ok {
		order.GatewayOrderID = v
	}
	if v, ok := patch["gatewayPaymentId"].(string); ok {
		order.GatewayPaymentID = v
	}
	m.orders[id] = order
	return nil
}

func (m *memStore) ListOrderItems(ctx context.Context, orderID primitive.ObjectID) ([]models.OrderItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.items[orderID], nil
}

func (m *memStore) ListOrdersByUser(ctx context.Context, userID primitive.ObjectID) ([]models.OrderWithItems, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var listed []models.OrderWithItems
	for id, order := range m.orders {
		if order.UserID != nil && *order.UserID == userID {
			listed = append(listed, models.OrderWithItems{Order: order, Items: m.items[id]})
		}
	}
	return listed, nil
}

func (m *memStore) NextOrderNumber(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	return fmt.Sprintf("ORD-%06d", m.seq), nil
}

type stubGateway struct {
	id  string
	err error
}

func (s *stubGateway) OpenTransaction(amountMinorUnits int64, currency, receiptID string, metadata map[string]interface{}) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.id, nil
}

type noopSender struct{}

func (noopSender) SendOrderConfirmation(ctx context.Context, data mailer.OrderEmailData) mailer.Result {
	return mailer.Result{Success: true}
}

func newTestApp(t *testing.T) (*fiber.App, *memStore) {
	t.Helper()
	st := newMemStore()
	svc := services.NewOrderService(st, &stubGateway{id: "rzp_test_123"}, noopSender{}, nil, testGatewaySecret)

	app := fiber.New()
	ctl := NewOrderController(svc)
	app.Post("/api/orders/create", middlewares.OptionalAuth(testJWTSecret), ctl.CreateOrder)
	app.Post("/api/payments/create-order", ctl.CreateGatewaySession)
	app.Post("/api/payments/verify", ctl.VerifyPayment)
	app.Get("/api/orders/my-orders", middlewares.RequireAuth(testJWTSecret), ctl.GetMyOrders)
	return app, st
}

func intakeBody() map[string]interface{} {
	return map[string]interface{}{
		"customerName":    "Asha Rao",
		"customerEmail":   "asha@example.com",
		"customerPhone":   "+91 98765 43210",
		"shippingAddress": "12 Lake Road",
		"shippingCity":    "Pune",
		"shippingState":   "MH",
		"shippingPincode": "411001",
		"paymentMethod":   models.PaymentMethodCOD,
		"items": []map[string]interface{}{
			{"productId": "prod-1", "name": "Wall Clock", "size": "M", "quantity": 2, "price": 100},
		},
		"subtotal":    200,
		"totalAmount": 200,
	}
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}, token string) (*http.Response, []byte) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func signToken(t *testing.T, userID string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"id": userID}).
		SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return token
}

func gatewaySign(gatewayOrderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(testGatewaySecret))
	mac.Write([]byte(gatewayOrderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestCreateOrderEndpoint_CashOnDelivery(t *testing.T) {
	app, _ := newTestApp(t)

	resp, raw := doJSON(t, app, http.MethodPost, "/api/orders/create", intakeBody(), "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body responses.CreateOrderResponse
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.True(t, body.Success)
	assert.Equal(t, models.StatusConfirmed, body.Order.Status)
	assert.Equal(t, models.PaymentMethodCOD, body.Order.PaymentMethod)
	assert.NotEmpty(t, body.Order.OrderNumber)

	// A second identical intake gets its own order number.
	resp2, raw2 := doJSON(t, app, http.MethodPost, "/api/orders/create", intakeBody(), "")
	require.Equal(t, http.StatusCreated, resp2.StatusCode)
	var body2 responses.CreateOrderResponse
	require.NoError(t, json.Unmarshal(raw2, &body2))
	assert.NotEqual(t, body.Order.OrderNumber, body2.Order.OrderNumber)
}

func TestCreateOrderEndpoint_Validation(t *testing.T) {
	app, _ := newTestApp(t)

	payload := intakeBody()
	payload["customerEmail"] = ""
	resp, raw := doJSON(t, app, http.MethodPost, "/api/orders/create", payload, "")

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var body responses.ErrorResponse
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "missing required fields", body.Error)
}

func TestGatewayPaymentFlow(t *testing.T) {
	app, _ := newTestApp(t)

	payload := intakeBody()
	payload["paymentMethod"] = models.PaymentMethodGateway
	resp, raw := doJSON(t, app, http.MethodPost, "/api/orders/create", payload, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created responses.CreateOrderResponse
	require.NoError(t, json.Unmarshal(raw, &created))
	require.Equal(t, models.StatusPendingPayment, created.Order.Status)

	sessionResp, sessionRaw := doJSON(t, app, http.MethodPost, "/api/payments/create-order",
		map[string]string{"orderId": created.Order.ID}, "")
	require.Equal(t, http.StatusOK, sessionResp.StatusCode)

	var session responses.GatewaySessionResponse
	require.NoError(t, json.Unmarshal(sessionRaw, &session))
	assert.Equal(t, "rzp_test_123", session.GatewayOrderID)
	assert.Equal(t, int64(20000), session.Amount)
	assert.Equal(t, "INR", session.Currency)

	verifyResp, verifyRaw := doJSON(t, app, http.MethodPost, "/api/payments/verify",
		map[string]string{
			"orderId":          created.Order.ID,
			"gatewayOrderId":   session.GatewayOrderID,
			"gatewayPaymentId": "pay_42",
			"gatewaySignature": gatewaySign(session.GatewayOrderID, "pay_42"),
		}, "")
	require.Equal(t, http.StatusOK, verifyResp.StatusCode)

	var verified responses.VerifyPaymentResponse
	require.NoError(t, json.Unmarshal(verifyRaw, &verified))
	assert.True(t, verified.Success)
	assert.Equal(t, created.Order.OrderNumber, verified.Order.OrderNumber)
}

func TestGatewaySessionEndpoint_Errors(t *testing.T) {
	app, _ := newTestApp(t)

	resp, _ := doJSON(t, app, http.MethodPost, "/api/payments/create-order", map[string]string{}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPost, "/api/payments/create-order",
		map[string]string{"orderId": primitive.NewObjectID().Hex()}, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestVerifyEndpoint_Rejections(t *testing.T) {
	app, _ := newTestApp(t)

	payload := intakeBody()
	payload["paymentMethod"] = models.PaymentMethodGateway
	_, raw := doJSON(t, app, http.MethodPost, "/api/orders/create", payload, "")
	var created responses.CreateOrderResponse
	require.NoError(t, json.Unmarshal(raw, &created))

	t.Run("missing fields", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodPost, "/api/payments/verify",
			map[string]string{"orderId": created.Order.ID}, "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("invalid signature", func(t *testing.T) {
		resp, respRaw := doJSON(t, app, http.MethodPost, "/api/payments/verify",
			map[string]string{
				"orderId":          created.Order.ID,
				"gatewayOrderId":   "rzp_test_123",
				"gatewayPaymentId": "pay_42",
				"gatewaySignature": "deadbeef",
			}, "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var body responses.ErrorResponse
		require.NoError(t, json.Unmarshal(respRaw, &body))
		assert.Equal(t, "Invalid payment signature", body.Error)
	})

	t.Run("unknown order", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodPost, "/api/payments/verify",
			map[string]string{
				"orderId":          primitive.NewObjectID().Hex(),
				"gatewayOrderId":   "rzp_test_123",
				"gatewayPaymentId": "pay_42",
				"gatewaySignature": gatewaySign("rzp_test_123", "pay_42"),
			}, "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestMyOrdersEndpoint(t *testing.T) {
	app, _ := newTestApp(t)
	userID := primitive.NewObjectID().Hex()

	resp, _ := doJSON(t, app, http.MethodGet, "/api/orders/my-orders", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, _ = doJSON(t, app, http.MethodPost, "/api/orders/create", intakeBody(), signToken(t, userID))

	resp, raw := doJSON(t, app, http.MethodGet, "/api/orders/my-orders", nil, signToken(t, userID))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body responses.ListOrdersResponse
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.True(t, body.Success)
	require.Len(t, body.Orders, 1)
	require.Len(t, body.Orders[0].Items, 1)
	assert.Equal(t, "Wall Clock", body.Orders[0].Items[0].ProductName)
}
