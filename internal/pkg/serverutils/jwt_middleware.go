package serverutils

import (
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Identity is what the auth collaborator's token resolves to: an opaque
// account id plus the admin flag. Nothing else in the token is consumed.
type Identity struct {
	UserID  uuid.UUID
	IsAdmin bool
}

// ParseIdentityToken validates a bearer token string and extracts the
// identity claims used to tag senders and gate the admin view.
func ParseIdentityToken(tokenStr string) (*Identity, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.ErrUnauthorized
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		return nil, fiber.ErrUnauthorized
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fiber.ErrUnauthorized
	}

	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return nil, fiber.ErrUnauthorized
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, fiber.ErrUnauthorized
	}

	isAdmin, _ := claims["is_admin"].(bool)
	return &Identity{UserID: userID, IsAdmin: isAdmin}, nil
}

func JwtMiddleware(ctx *fiber.Ctx) error {
	authHeader := ctx.Get("Authorization")
	if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Missing token"})
	}

	identity, err := ParseIdentityToken(authHeader[7:])
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid token"})
	}

	ctx.Locals("user_id", identity.UserID.String())
	ctx.Locals("is_admin", identity.IsAdmin)
	return ctx.Next()
}

// AdminMiddleware gates the admin console surface. Requires JwtMiddleware to
// have run first.
func AdminMiddleware(ctx *fiber.Ctx) error {
	isAdmin, _ := ctx.Locals("is_admin").(bool)
	if !isAdmin {
		return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "Admin access required"})
	}
	return ctx.Next()
}
