package controllers

import (
	"context"
	"errors"
	"time"

	"storefront-api/models"
	"storefront-api/payments"
	"storefront-api/responses"
	"storefront-api/services"

	"github.com/gofiber/fiber/v2"
)

const requestTimeout = 10 * time.Second

// OrderController exposes the order intake, gateway payment, and listing
// endpoints over Fiber. All state lives behind the injected service.
type OrderController struct {
	service *services.OrderService
}

func NewOrderController(service *services.OrderService) *OrderController {
	return &OrderController{service: service}
}

// CreateOrder handles order intake. Guests may order; an authenticated
// caller's user id is attached to the order.
func (ctl *OrderController) CreateOrder(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), requestTimeout)
	defer cancel()

	var intake services.OrderIntake
	if err := c.BodyParser(&intake); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(responses.ErrorResponse{
			Error: "Invalid request body",
		})
	}

	if userID, ok := c.Locals("userId").(string); ok && userID != "" {
		intake.UserID = userID
	}

	order, _, err := ctl.service.CreateOrder(ctx, intake)
	if err != nil {
		return writeError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(responses.CreateOrderResponse{
		Success: true,
		Order: responses.OrderSummary{
			ID:            order.ID.Hex(),
			OrderNumber:   order.OrderNumber,
			Status:        order.Status,
			PaymentMethod: order.PaymentMethod,
		},
	})
}

// CreateGatewaySession opens a gateway transaction for an existing
// pending order and returns its reference for the client-side checkout.
func (ctl *OrderController) CreateGatewaySession(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), requestTimeout)
	defer cancel()

	var body struct {
		OrderID string `json:"orderId"`
	}
	if err := c.BodyParser(&body); err != nil || body.OrderID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(responses.ErrorResponse{
			Error: "Missing orderId",
		})
	}

	gatewayOrderID, amount, currency, err := ctl.service.InitiateGatewayPayment(ctx, body.OrderID)
	if err != nil {
		return writeError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(responses.GatewaySessionResponse{
		Success:        true,
		GatewayOrderID: gatewayOrderID,
		Amount:         amount,
		Currency:       currency,
	})
}

// VerifyPayment is the gateway redirect callback: it checks the signed
// proof of payment and confirms the order.
func (ctl *OrderController) VerifyPayment(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), requestTimeout)
	defer cancel()

	var req services.PaymentVerificationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(responses.ErrorResponse{
			Error: "Invalid request body",
		})
	}

	order, err := ctl.service.ConfirmGatewayPayment(ctx, req)
	if err != nil {
		return writeError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(responses.VerifyPaymentResponse{
		Success: true,
		Order: responses.OrderSummary{
			ID:          order.ID.Hex(),
			OrderNumber: order.OrderNumber,
		},
	})
}

// GetMyOrders lists the authenticated caller's orders, newest first, with
// nested items.
func (ctl *OrderController) GetMyOrders(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), requestTimeout)
	defer cancel()

	userID, ok := c.Locals("userId").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(responses.ErrorResponse{
			Error: "Unauthorized",
		})
	}

	orders, err := ctl.service.ListUserOrders(ctx, userID)
	if err != nil {
		return writeError(c, err)
	}
	if orders == nil {
		orders = []models.OrderWithItems{}
	}

	return c.Status(fiber.StatusOK).JSON(responses.ListOrdersResponse{
		Success: true,
		Orders:  orders,
	})
}

// writeError maps the service error taxonomy onto HTTP responses.
// Validation, conflict, and signature errors are the caller's to fix;
// persistence and gateway failures carry details for diagnosis.
func writeError(c *fiber.Ctx, err error) error {
	var validationErr *services.ValidationError
	if errors.As(err, &validationErr) {
		return c.Status(fiber.StatusBadRequest).JSON(responses.ErrorResponse{
			Error: validationErr.Message,
		})
	}

	var conflictErr *services.ConflictError
	if errors.As(err, &conflictErr) {
		return c.Status(fiber.StatusBadRequest).JSON(responses.ErrorResponse{
			Error: conflictErr.Message,
		})
	}

	var signatureErr *services.SignatureError
	if errors.As(err, &signatureErr) {
		return c.Status(fiber.StatusBadRequest).JSON(responses.ErrorResponse{
			Error: "Invalid payment signature",
		})
	}

	var notFoundErr *services.NotFoundError
	if errors.As(err, &notFoundErr) {
		return c.Status(fiber.StatusNotFound).JSON(responses.ErrorResponse{
			Error: notFoundErr.Message,
		})
	}

	var gatewayErr *payments.GatewayError
	if errors.As(err, &gatewayErr) {
		return c.Status(fiber.StatusInternalServerError).JSON(responses.ErrorResponse{
			Error:                   "Failed to create gateway order",
			Details:                 gatewayErr.Error(),
			StatusCode:              gatewayErr.StatusCode,
			GatewayErrorCode:        gatewayErr.Code,
			GatewayErrorDescription: gatewayErr.Description,
		})
	}

	var configErr *services.ConfigError
	if errors.As(err, &configErr) {
		return c.Status(fiber.StatusInternalServerError).JSON(responses.ErrorResponse{
			Error: configErr.Message,
		})
	}

	var persistenceErr *services.PersistenceError
	if errors.As(err, &persistenceErr) {
		return c.Status(fiber.StatusInternalServerError).JSON(responses.ErrorResponse{
			Error:   "Database operation failed",
			Details: persistenceErr.Error(),
		})
	}

	return c.Status(fiber.StatusInternalServerError).JSON(responses.ErrorResponse{
		Error: "Internal server error",
	})
}
