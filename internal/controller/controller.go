package controller

import (
	"emojify-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// currentUserId reads the identity placed by the JWT middleware.
func currentUserId(ctx *fiber.Ctx) (uuid.UUID, error) {
	idStr, ok := ctx.Locals("user_id").(string)
	if !ok || idStr == "" {
		return uuid.Nil, serverutils.NotAuthenticated()
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, serverutils.NotAuthenticated()
	}
	return id, nil
}
