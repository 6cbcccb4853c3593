package responses

import "storefront-api/models"

// ErrorResponse is the failure envelope for every endpoint. The gateway
// fields are only populated when a remote provider call failed and its
// diagnostics should reach the client unmodified.
type ErrorResponse struct {
	Error                   string `json:"error"`
	Details                 string `json:"details,omitempty"`
	StatusCode              int    `json:"statusCode,omitempty"`
	GatewayErrorCode        string `json:"gatewayErrorCode,omitempty"`
	GatewayErrorDescription string `json:"gatewayErrorDescription,omitempty"`
}

// OrderSummary is the slim order view returned by intake and verification.
type OrderSummary struct {
	ID            string `json:"id"`
	OrderNumber   string `json:"orderNumber"`
	Status        string `json:"status,omitempty"`
	PaymentMethod string `json:"paymentMethod,omitempty"`
}

type CreateOrderResponse struct {
	Success bool         `json:"success"`
	Order   OrderSummary `json:"order"`
}

type GatewaySessionResponse struct {
	Success        bool   `json:"success"`
	GatewayOrderID string `json:"gatewayOrderId"`
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
}

type VerifyPaymentResponse struct {
	Success bool         `json:"success"`
	Order   OrderSummary `json:"order"`
}

type ListOrdersResponse struct {
	Success bool                    `json:"success"`
	Orders  []models.OrderWithItems `json:"orders"`
}
