package controller

import (
	"nexora-campus-be/internal/dto"

	"github.com/gofiber/fiber/v2"
)

// ISystemController serves health and service info. Neither route touches
// a dependency, so both stay fast when backends are down.
type ISystemController interface {
	RegisterRoutes(r fiber.Router)
	Health(ctx *fiber.Ctx) error
	Info(ctx *fiber.Ctx) error
}

type systemController struct {
	name    string
	version string
}

func NewSystemController(name, version string) ISystemController {
	return &systemController{name: name, version: version}
}

func (c *systemController) RegisterRoutes(r fiber.Router) {
	r.Get("/health", c.Health)
	r.Get("/", c.Info)
}

func (c *systemController) Health(ctx *fiber.Ctx) error {
	return ctx.JSON(dto.HealthResponse{
		Status:  "healthy",
		Service: c.name,
		Version: c.version,
	})
}

func (c *systemController) Info(ctx *fiber.Ctx) error {
	return ctx.JSON(dto.ServiceInfoResponse{
		Service: c.name,
		Version: c.version,
		Status:  "running",
		Capabilities: []string{
			"campus events",
			"departments",
			"bus routes",
			"cafeteria menus",
			"exam results",
			"student profile",
			"knowledge base",
			"content moderation",
			"voice chat",
		},
		Endpoints: map[string]string{
			"chat":         "POST /api/v1/chat",
			"history":      "GET /api/v1/conversations/{session_id}/history",
			"summary":      "GET /api/v1/conversations/{session_id}/summary",
			"deactivate":   "DELETE /api/v1/conversations/{session_id}",
			"moderation":   "POST /api/v1/moderation/check",
			"transcribe":   "POST /api/v1/voice/transcribe",
			"synthesize":   "POST /api/v1/voice/synthesize",
			"voice_chat":   "WS /api/v1/voice/chat/{client_id}",
			"voice_status": "GET /api/v1/voice/status",
			"knowledge":    "GET /api/v1/knowledge/status",
			"health":       "GET /api/v1/health",
			"metrics":      "GET /metrics",
		},
	})
}
