package controller

import (
	"emojify-be/internal/dto"
	"emojify-be/internal/pkg/serverutils"
	"emojify-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IEmojiController interface {
	RegisterRoutes(r fiber.Router)
	Save(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type emojiController struct {
	service service.IEmojiService
}

func NewEmojiController(service service.IEmojiService) IEmojiController {
	return &emojiController{service: service}
}

func (c *emojiController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/emojis", serverutils.JwtMiddleware)
	h.Post("/", c.Save)
	h.Get("/", c.List)
	h.Delete("/:id", c.Delete)
}

func (c *emojiController) Save(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	var req dto.SaveEmojiRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Save(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Emoji saved", res))
}

func (c *emojiController) List(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	page := ctx.QueryInt("page", 1)
	pageSize := ctx.QueryInt("page_size", 20)

	items, total, err := c.service.List(ctx.Context(), userId, page, pageSize)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Saved emojis", fiber.Map{
		"items": items,
		"total": total,
		"page":  page,
	}))
}

func (c *emojiController) Delete(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	emojiId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "invalid emoji id"))
	}

	if err := c.service.Delete(ctx.Context(), userId, emojiId); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Emoji deleted", nil))
}
