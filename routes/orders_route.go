package routes

import (
	orderController "storefront-api/controllers/orders"
	"storefront-api/middlewares"

	"github.com/gofiber/fiber/v2"
)

// OrderRoutes wires the order and payment endpoints. Intake and the
// gateway flow allow guests; listing requires a token.
func OrderRoutes(app *fiber.App, ctl *orderController.OrderController, jwtSecret string) {
	app.Post("/api/orders/create", middlewares.OptionalAuth(jwtSecret), ctl.CreateOrder)
	app.Post("/api/payments/create-order", ctl.CreateGatewaySession)
	app.Post("/api/payments/verify", ctl.VerifyPayment)
	app.Get("/api/orders/my-orders", middlewares.RequireAuth(jwtSecret), ctl.GetMyOrders)
}
