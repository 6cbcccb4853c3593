package main

import (
	"log"
	"time"

	"storefront-api/cache"
	"storefront-api/configs"
	orderController "storefront-api/controllers/orders"
	"storefront-api/mailer"
	"storefront-api/payments"
	"storefront-api/routes"
	"storefront-api/services"
	"storefront-api/store"

	"github.com/gofiber/fiber/v2"
)

func main() {
	app := fiber.New()

	mongoClient := configs.ConnectDB(configs.EnvMongoURI())
	orderStore := store.NewMongoStore(mongoClient.Database(configs.EnvMongoDatabase()))

	gateway := payments.NewRazorpayGateway(configs.EnvRazorpayKeyID(), configs.EnvRazorpayKeySecret())

	sender := mailer.New(
		configs.EnvBrevoAPIKey(),
		configs.EnvBrevoFromEmail(),
		configs.EnvBrevoFromName(),
		configs.EnvBrevoReplyTo(),
		configs.EnvBrevoTimeout(),
	)

	listCache := cache.New(configs.ConnectRedis(configs.EnvRedisAddr()), time.Minute)

	orderService := services.NewOrderService(orderStore, gateway, sender, listCache, configs.EnvRazorpayKeySecret())

	routes.OrderRoutes(app, orderController.NewOrderController(orderService), configs.EnvJWTSecret())

	log.Fatal(app.Listen(":" + configs.EnvPort()))
}
