package controller

import (
	"nexora-campus-be/internal/dto"
	"nexora-campus-be/internal/pkg/serverutils"
	"nexora-campus-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IModerationController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	Check(ctx *fiber.Ctx) error
}

type moderationController struct {
	moderationService service.IModerationService
}

func NewModerationController(moderationService service.IModerationService) IModerationController {
	return &moderationController{moderationService: moderationService}
}

func (c *moderationController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	r.Post("/moderation/check", auth, c.Check)
}

func (c *moderationController) Check(ctx *fiber.Ctx) error {
	var req dto.ModerationCheckRequest
	if err := serverutils.ParseBody(ctx, &req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	return ctx.JSON(c.moderationService.CheckRequest(ctx.UserContext(), &req))
}
