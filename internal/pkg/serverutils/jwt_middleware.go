// FILE: internal/pkg/serverutils/jwt_middleware.go
package serverutils

import (
	"os"

	"blicktrack-entitlement-be/pkg/identity"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JwtMiddleware validates the bearer token issued by the identity service and
// stamps the acting admin onto the request context for assignedBy tracking.
func JwtMiddleware(ctx *fiber.Ctx) error {
	authHeader := ctx.Get("Authorization")
	if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Missing token"})
	}
	tokenStr := authHeader[7:]

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return []byte(os.Getenv("JWT_SECRET")), nil
	})

	if err != nil || !token.Valid {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid token"})
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid claims"})
	}

	actorStr, _ := claims["actor_id"].(string)
	actorId, err := uuid.Parse(actorStr)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid actor"})
	}

	ctx.Locals("actor_id", actorStr)
	ctx.SetUserContext(identity.WithActor(ctx.UserContext(), actorId))
	return ctx.Next()
}
