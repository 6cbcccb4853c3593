package middlewares

import (
	"strings"

	"storefront-api/responses"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

// RequireAuth validates the bearer token and stores the caller's user id
// in Locals("userId"). Requests without a valid token are rejected.
func RequireAuth(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := userIDFromHeader(c.Get("Authorization"), secret)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(responses.ErrorResponse{
				Error: "Unauthorized",
			})
		}
		c.Locals("userId", userID)
		return c.Next()
	}
}

// OptionalAuth attaches the user id when a valid bearer token is present
// and lets the request through either way. Order intake allows guest
// checkout, so a missing or bad token just means no owning user.
func OptionalAuth(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if userID, ok := userIDFromHeader(c.Get("Authorization"), secret); ok {
			c.Locals("userId", userID)
		}
		return c.Next()
	}
}

func userIDFromHeader(authHeader, secret string) (string, bool) {
	if authHeader == "" || secret == "" {
		return "", false
	}

	bearerToken := strings.Split(authHeader, " ")
	if len(bearerToken) != 2 || bearerToken[0] != "Bearer" {
		return "", false
	}

	claims := &jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(bearerToken[1], claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return "", false
	}

	userID, ok := (*claims)["id"].(string)
	if !ok || userID == "" {
		return "", false
	}
	return userID, true
}
