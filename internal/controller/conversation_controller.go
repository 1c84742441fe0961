package controller

import (
	"strconv"

	"nexora-campus-be/internal/dto"
	"nexora-campus-be/internal/pkg/serverutils"
	"nexora-campus-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IConversationController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	Summary(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
	Deactivate(ctx *fiber.Ctx) error
}

type conversationController struct {
	conversationService service.IConversationService
}

func NewConversationController(conversationService service.IConversationService) IConversationController {
	return &conversationController{conversationService: conversationService}
}

func (c *conversationController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	h := r.Group("/conversations")
	h.Get("/:session_id/summary", auth, c.Summary)
	h.Get("/:session_id/history", auth, c.History)
	h.Delete("/:session_id", auth, c.Deactivate)
}

func (c *conversationController) Summary(ctx *fiber.Ctx) error {
	res, err := c.conversationService.GetSummary(ctx.UserContext(), ctx.Params("session_id"))
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

func (c *conversationController) History(ctx *fiber.Ctx) error {
	query := dto.HistoryQuery{Limit: dto.DefaultHistoryLimit}
	if raw := ctx.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return serverutils.NewValidationError("limit", "value is not a valid integer")
		}
		query.Limit = limit
	}
	if err := serverutils.ValidateRequest(query); err != nil {
		return err
	}

	res, err := c.conversationService.GetHistory(ctx.UserContext(), ctx.Params("session_id"), query.Limit)
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

func (c *conversationController) Deactivate(ctx *fiber.Ctx) error {
	res, err := c.conversationService.Deactivate(ctx.UserContext(), ctx.Params("session_id"))
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}
