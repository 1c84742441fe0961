package controller

import (
	"nexora-campus-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IKnowledgeController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	Reload(ctx *fiber.Ctx) error
	Status(ctx *fiber.Ctx) error
}

type knowledgeController struct {
	knowledgeService service.IKnowledgeService
}

func NewKnowledgeController(knowledgeService service.IKnowledgeService) IKnowledgeController {
	return &knowledgeController{knowledgeService: knowledgeService}
}

func (c *knowledgeController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	h := r.Group("/knowledge")
	h.Post("/reload", auth, c.Reload)
	h.Get("/status", c.Status)
}

// Reload rebuilds synchronously so the caller sees the new counts.
func (c *knowledgeController) Reload(ctx *fiber.Ctx) error {
	res, err := c.knowledgeService.ReloadNow(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

func (c *knowledgeController) Status(ctx *fiber.Ctx) error {
	return ctx.JSON(c.knowledgeService.Status())
}
