package controller

import (
	"crypto/subtle"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"nexora-campus-be/internal/constant"
	"nexora-campus-be/internal/dto"
	"nexora-campus-be/internal/pkg/logger"
	"nexora-campus-be/internal/pkg/serverutils"
	"nexora-campus-be/internal/service"
	internalWS "nexora-campus-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

const maxAudioBytes = 25 * 1024 * 1024

type IVoiceController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	Status(ctx *fiber.Ctx) error
	Transcribe(ctx *fiber.Ctx) error
	Synthesize(ctx *fiber.Ctx) error
	Chat(ctx *fiber.Ctx) error
}

type voiceController struct {
	voiceService service.IVoiceService
	hub          *internalWS.Hub
	apiKey       string
	logger       logger.ILogger
}

func NewVoiceController(voiceService service.IVoiceService, hub *internalWS.Hub, apiKey string, logger logger.ILogger) IVoiceController {
	return &voiceController{
		voiceService: voiceService,
		hub:          hub,
		apiKey:       apiKey,
		logger:       logger,
	}
}

func (c *voiceController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	h := r.Group("/voice")
	h.Get("/status", c.Status)
	h.Post("/transcribe", auth, c.Transcribe)
	h.Post("/synthesize", auth, c.Synthesize)
	h.Get("/chat/:client_id", c.Chat)
}

func (c *voiceController) Status(ctx *fiber.Ctx) error {
	return ctx.JSON(c.voiceService.Status(c.hub.Count()))
}

func (c *voiceController) Transcribe(ctx *fiber.Ctx) error {
	file, err := ctx.FormFile("audio")
	if err != nil {
		if file, err = ctx.FormFile("file"); err != nil {
			return serverutils.NewValidationError("audio", "field required")
		}
	}
	if file.Size > maxAudioBytes {
		return serverutils.NewValidationError("audio", "file too large")
	}

	audio, err := readUpload(file)
	if err != nil {
		return serverutils.NewBadRequestError("Could not read uploaded audio")
	}

	res, err := c.voiceService.Transcribe(ctx.UserContext(), audio, audioFormat(file))
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

func (c *voiceController) Synthesize(ctx *fiber.Ctx) error {
	var req dto.SynthesizeRequest
	if err := serverutils.ParseBody(ctx, &req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	audio, format, err := c.voiceService.Synthesize(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	ctx.Set(fiber.HeaderContentType, "audio/"+mimeSubtype(format))
	ctx.Set(fiber.HeaderContentDisposition, `inline; filename="speech.`+format+`"`)
	return ctx.Send(audio)
}

// Chat upgrades to the voice websocket. Browsers cannot set headers on
// the upgrade, so the key may also come as ?token=.
func (c *voiceController) Chat(ctx *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(ctx) {
		return fiber.ErrUpgradeRequired
	}
	if !c.authorised(ctx) {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid API key")
	}

	clientID := ctx.Params("client_id")
	return websocket.New(func(conn *websocket.Conn) {
		c.logger.Info(constant.ModuleVoice, "Voice session started", map[string]interface{}{"client_id": clientID})
		internalWS.ServeWs(c.hub, conn, clientID, c.voiceService.HandleMessage)
		c.logger.Info(constant.ModuleVoice, "Voice session ended", map[string]interface{}{"client_id": clientID})
	})(ctx)
}

func (c *voiceController) authorised(ctx *fiber.Ctx) bool {
	token := ctx.Query("token")
	if token == "" {
		token, _ = strings.CutPrefix(ctx.Get(fiber.HeaderAuthorization), "Bearer ")
	}
	return c.apiKey != "" && subtle.ConstantTimeCompare([]byte(token), []byte(c.apiKey)) == 1
}

func readUpload(file *multipart.FileHeader) ([]byte, error) {
	f, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func audioFormat(file *multipart.FileHeader) string {
	if ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(file.Filename)), "."); ext != "" {
		return ext
	}
	ct := file.Header.Get(fiber.HeaderContentType)
	if _, sub, ok := strings.Cut(ct, "/"); ok {
		return strings.TrimPrefix(sub, "x-")
	}
	return "webm"
}

func mimeSubtype(format string) string {
	if format == "mp3" {
		return "mpeg"
	}
	return format
}
