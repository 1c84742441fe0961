package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"nexora-campus-be/internal/constant"
	"nexora-campus-be/internal/dto"
	"nexora-campus-be/internal/pkg/logger"
	"nexora-campus-be/pkg/voice"

	"github.com/gofiber/fiber/v2"
)

const voiceSessionPrefix = "voice-"

// IVoiceService covers the HTTP voice endpoints and the websocket frame
// protocol. HandleMessage matches the websocket hub's handler signature.
type IVoiceService interface {
	Status(activeConnections int) *dto.VoiceStatusResponse
	Transcribe(ctx context.Context, audio []byte, format string) (*dto.TranscribeResponse, error)
	Synthesize(ctx context.Context, req *dto.SynthesizeRequest) ([]byte, string, error)
	HandleMessage(ctx context.Context, clientID string, raw []byte, emit func(frame interface{}))
}

type VoiceOptions struct {
	TTSProvider string
}

type voiceService struct {
	transcriber voice.Transcriber
	synthesizer voice.Synthesizer
	chat        IChatService
	opts        VoiceOptions
	logger      logger.ILogger
}

// NewVoiceService accepts nil backends; the matching endpoints then answer
// 503 and the websocket reports an error frame.
func NewVoiceService(transcriber voice.Transcriber, synthesizer voice.Synthesizer, chat IChatService, opts VoiceOptions, logger logger.ILogger) IVoiceService {
	return &voiceService{
		transcriber: transcriber,
		synthesizer: synthesizer,
		chat:        chat,
		opts:        opts,
		logger:      logger,
	}
}

func (s *voiceService) Status(activeConnections int) *dto.VoiceStatusResponse {
	res := &dto.VoiceStatusResponse{
		Status:            "active",
		STTConfigured:     s.transcriber != nil,
		TTSConfigured:     s.synthesizer != nil,
		ActiveConnections: activeConnections,
	}
	if res.TTSConfigured {
		res.TTSProvider = s.opts.TTSProvider
	}
	switch {
	case res.STTConfigured && res.TTSConfigured:
		res.Message = "Voice-to-voice service is running"
	case res.STTConfigured:
		res.Message = "Speech-to-text available, replies are text only"
	default:
		res.Status = "degraded"
		res.Message = "Speech-to-text is not configured"
	}
	return res
}

func (s *voiceService) Transcribe(ctx context.Context, audio []byte, format string) (*dto.TranscribeResponse, error) {
	if s.transcriber == nil {
		return nil, fiber.NewError(fiber.StatusServiceUnavailable, "Speech-to-text is not configured")
	}

	text, err := s.transcriber.Transcribe(ctx, audio, format)
	if err != nil {
		return nil, voiceError(err)
	}

	return &dto.TranscribeResponse{
		Text:       text,
		Language:   "en",
		Confidence: 1.0,
		Duration:   voice.EstimateDuration(audio, format).Seconds(),
	}, nil
}

func (s *voiceService) Synthesize(ctx context.Context, req *dto.SynthesizeRequest) ([]byte, string, error) {
	if s.synthesizer == nil {
		return nil, "", fiber.NewError(fiber.StatusServiceUnavailable, "Text-to-speech is not configured")
	}

	var opts voice.SpeechOptions
	if req.Voice != nil {
		opts.Voice = *req.Voice
	}
	if req.Speed != nil {
		opts.Speed = *req.Speed
	}

	audio, format, err := s.synthesizer.Synthesize(ctx, req.Text, opts)
	if err != nil {
		s.logger.Error(constant.ModuleVoice, "Synthesis failed", map[string]interface{}{"error": err.Error()})
		return nil, "", err
	}
	if len(audio) == 0 {
		return nil, "", fmt.Errorf("synthesizer returned no audio")
	}
	return audio, format, nil
}

// HandleMessage processes one websocket frame. Replies are emitted in
// protocol order: processing, transcription, response_text, response_audio.
func (s *voiceService) HandleMessage(ctx context.Context, clientID string, raw []byte, emit func(frame interface{})) {
	var msg dto.VoiceClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		emit(errorFrame("Invalid JSON format"))
		return
	}

	switch msg.Type {
	case dto.VoiceMessagePing:
		emit(dto.VoiceServerMessage{Type: dto.VoiceMessagePong})
	case dto.VoiceMessageAudioChunk:
		s.handleAudio(ctx, clientID, msg, emit)
	default:
		emit(errorFrame(fmt.Sprintf("Unknown message type: %s", msg.Type)))
	}
}

func (s *voiceService) handleAudio(ctx context.Context, clientID string, msg dto.VoiceClientMessage, emit func(frame interface{})) {
	if msg.Data == "" {
		emit(errorFrame("No audio data provided"))
		return
	}
	audio, err := base64.StdEncoding.DecodeString(msg.Data)
	if err != nil {
		emit(errorFrame("Invalid base64 audio data"))
		return
	}
	if s.transcriber == nil {
		emit(errorFrame("Speech-to-text is not configured"))
		return
	}

	format := strings.ToLower(msg.Format)
	if format == "" {
		format = "webm"
	}
	s.logger.Info(constant.ModuleVoice, "Processing audio chunk", map[string]interface{}{
		"client_id": clientID,
		"bytes":     len(audio),
		"format":    format,
	})
	emit(dto.VoiceServerMessage{Type: dto.VoiceMessageProcessing, Message: "Processing your voice message..."})

	text, err := s.transcriber.Transcribe(ctx, audio, format)
	switch {
	case errors.Is(err, voice.ErrAudioTooShort):
		emit(errorFrame("Audio too short, please speak for at least one second"))
		return
	case errors.Is(err, voice.ErrNoSpeech):
		emit(errorFrame("Could not understand audio, please try again"))
		return
	case err != nil:
		s.logger.Error(constant.ModuleVoice, "Transcription failed", map[string]interface{}{
			"client_id": clientID,
			"error":     err.Error(),
		})
		emit(errorFrame("Error processing audio"))
		return
	}
	emit(dto.VoiceServerMessage{Type: dto.VoiceMessageTranscription, Text: text})

	userID := clientID
	reply, err := s.chat.Chat(ctx, &dto.ChatRequest{
		Message:   text,
		UserId:    &userID,
		SessionId: voiceSessionPrefix + clientID,
	})
	if err != nil {
		emit(errorFrame("Sorry, I encountered an error while generating a response"))
		return
	}
	emit(dto.VoiceServerMessage{Type: dto.VoiceMessageResponseText, Text: reply.Response})

	if s.synthesizer == nil {
		return
	}
	speech, format, err := s.synthesizer.Synthesize(ctx, reply.Response, voice.SpeechOptions{})
	if err != nil || len(speech) == 0 {
		s.logger.Warn(constant.ModuleVoice, "Reply synthesis failed, text only", map[string]interface{}{
			"client_id": clientID,
			"error":     fmt.Sprint(err),
		})
		return
	}
	emit(dto.VoiceServerMessage{
		Type:   dto.VoiceMessageResponseAudio,
		Data:   base64.StdEncoding.EncodeToString(speech),
		Format: format,
	})
	s.logger.Info(constant.ModuleVoice, "Voice turn completed", map[string]interface{}{"client_id": clientID})
}

func errorFrame(message string) dto.VoiceServerMessage {
	return dto.VoiceServerMessage{Type: dto.VoiceMessageError, Message: message}
}

func voiceError(err error) error {
	switch {
	case errors.Is(err, voice.ErrAudioTooShort):
		return fiber.NewError(fiber.StatusUnprocessableEntity, "Audio too short, please speak for at least one second")
	case errors.Is(err, voice.ErrNoSpeech):
		return fiber.NewError(fiber.StatusUnprocessableEntity, "No speech detected in audio")
	case errors.Is(err, voice.ErrNotConfigured):
		return fiber.NewError(fiber.StatusServiceUnavailable, "Speech-to-text is not configured")
	default:
		return err
	}
}
