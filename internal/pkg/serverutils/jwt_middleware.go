package serverutils

import (
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const SessionCookieName = "session_token"

// JWTSecret resolves the token signing key. Signing and verification must
// resolve it identically, fallback included, or every issued token fails
// verification when JWT_SECRET is unset.
func JWTSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "default_secret"
	}
	return []byte(secret)
}

// JwtMiddleware resolves the caller's identity from either the
// Authorization header or the session cookie, before any handler runs.
func JwtMiddleware(ctx *fiber.Ctx) error {
	tokenStr := ""

	authHeader := ctx.Get("Authorization")
	if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
		tokenStr = authHeader[7:]
	}
	if tokenStr == "" {
		tokenStr = ctx.Cookies(SessionCookieName)
	}
	if tokenStr == "" {
		return NotAuthenticated()
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return JWTSecret(), nil
	})

	if err != nil || !token.Valid {
		return NotAuthenticated()
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return NotAuthenticated()
	}

	userId, ok := claims["user_id"].(string)
	if !ok || userId == "" {
		return NotAuthenticated()
	}

	ctx.Locals("user_id", userId)
	return ctx.Next()
}
