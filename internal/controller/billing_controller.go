package controller

import (
	"fmt"
	"os"

	"emojify-be/internal/dto"
	"emojify-be/internal/pkg/serverutils"
	"emojify-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type IBillingController interface {
	RegisterRoutes(r fiber.Router)
	GetPlans(ctx *fiber.Ctx) error
	Checkout(ctx *fiber.Ctx) error
	Portal(ctx *fiber.Ctx) error
	SelectFree(ctx *fiber.Ctx) error
	Webhook(ctx *fiber.Ctx) error
}

type billingController struct {
	service service.IBillingService
}

func NewBillingController(service service.IBillingService) IBillingController {
	return &billingController{service: service}
}

func (c *billingController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/billing")
	h.Get("/plans", c.GetPlans)
	h.Post("/webhook", c.Webhook)

	// Checkout is reachable without a session so guests can purchase.
	h.Post("/checkout", c.Checkout)

	h.Post("/portal", serverutils.JwtMiddleware, c.Portal)
	h.Post("/free", serverutils.JwtMiddleware, c.SelectFree)
}

func (c *billingController) GetPlans(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Plans", c.service.GetPlans()))
}

// optionalUserId resolves the caller when a valid token is present, without
// rejecting anonymous requests.
func optionalUserId(ctx *fiber.Ctx) *uuid.UUID {
	tokenStr := ""
	authHeader := ctx.Get("Authorization")
	if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
		tokenStr = authHeader[7:]
	}
	if tokenStr == "" {
		tokenStr = ctx.Cookies(serverutils.SessionCookieName)
	}
	if tokenStr == "" {
		return nil
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		return nil
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil
	}
	idStr, _ := claims["user_id"].(string)
	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil
	}
	return &id
}

func (c *billingController) Checkout(ctx *fiber.Ctx) error {
	var req dto.CheckoutRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.CreateCheckoutSession(ctx.Context(), optionalUserId(ctx), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Checkout session created", res))
}

func (c *billingController) Portal(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.CreateBillingPortal(ctx.Context(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Billing portal session created", res))
}

func (c *billingController) SelectFree(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.SelectFreePlan(ctx.Context(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Free plan selected", res))
}

func (c *billingController) Webhook(ctx *fiber.Ctx) error {
	// Raw body is required; the signature covers the exact bytes sent.
	payload := ctx.Body()
	signature := ctx.Get("Stripe-Signature")

	err := c.service.HandleWebhook(ctx.Context(), payload, signature)
	if err != nil {
		if appErr, ok := err.(*serverutils.AppError); ok {
			return appErr
		}
		fmt.Printf("[WEBHOOK ERROR] Processing failed: %v\n", err)
		// Return 500 so the processor retries the delivery
		return ctx.SendStatus(fiber.StatusInternalServerError)
	}

	return ctx.SendStatus(fiber.StatusOK)
}
