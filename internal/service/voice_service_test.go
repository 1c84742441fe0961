package service

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"nexora-campus-be/internal/dto"
	"nexora-campus-be/pkg/voice"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTranscriber struct {
	text string
	err  error
	got  string
}

func (f *fakeTranscriber) Transcribe(_ context.Context, _ []byte, format string) (string, error) {
	f.got = format
	return f.text, f.err
}

type fakeSynthesizer struct {
	lastText string
}

func (f *fakeSynthesizer) Synthesize(_ context.Context, text string, _ voice.SpeechOptions) ([]byte, string, error) {
	f.lastText = text
	return []byte("ID3"), "mp3", nil
}

type fakeChat struct {
	req *dto.ChatRequest
	err error
}

func (f *fakeChat) Chat(_ context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	f.req = req
	if f.err != nil {
		return nil, f.err
	}
	return &dto.ChatResponse{Response: "Bus 12 leaves at 07:30.", SessionID: req.SessionId, Success: true}, nil
}

func collect(svc IVoiceService, raw string) []dto.VoiceServerMessage {
	var frames []dto.VoiceServerMessage
	svc.HandleMessage(context.Background(), "client-1", []byte(raw), func(frame interface{}) {
		frames = append(frames, frame.(dto.VoiceServerMessage))
	})
	return frames
}

func frameTypes(frames []dto.VoiceServerMessage) []string {
	out := make([]string, len(frames))
	for i, f := range frames {
		out[i] = f.Type
	}
	return out
}

func TestVoiceAudioTurnFrameOrder(t *testing.T) {
	stt := &fakeTranscriber{text: "when is the next bus"}
	tts := &fakeSynthesizer{}
	chat := &fakeChat{}
	svc := NewVoiceService(stt, tts, chat, VoiceOptions{TTSProvider: "elevenlabs"}, nopLogger)

	audio := base64.StdEncoding.EncodeToString([]byte("fake-audio"))
	frames := collect(svc, `{"type":"audio_chunk","data":"`+audio+`"}`)

	require.Equal(t, []string{
		dto.VoiceMessageProcessing,
		dto.VoiceMessageTranscription,
		dto.VoiceMessageResponseText,
		dto.VoiceMessageResponseAudio,
	}, frameTypes(frames))
	assert.Equal(t, "webm", stt.got)
	assert.Equal(t, "when is the next bus", frames[1].Text)
	assert.Equal(t, "Bus 12 leaves at 07:30.", frames[2].Text)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("ID3")), frames[3].Data)
	assert.Equal(t, "mp3", frames[3].Format)
	assert.Equal(t, "Bus 12 leaves at 07:30.", tts.lastText)

	require.NotNil(t, chat.req)
	assert.Equal(t, "voice-client-1", chat.req.SessionId)
	require.NotNil(t, chat.req.UserId)
	assert.Equal(t, "client-1", *chat.req.UserId)
}

func TestVoiceTextOnlyWithoutSynthesizer(t *testing.T) {
	svc := NewVoiceService(&fakeTranscriber{text: "hi"}, nil, &fakeChat{}, VoiceOptions{}, nopLogger)
	audio := base64.StdEncoding.EncodeToString([]byte("x"))

	frames := collect(svc, `{"type":"audio_chunk","data":"`+audio+`","format":"WAV"}`)
	assert.Equal(t, []string{
		dto.VoiceMessageProcessing,
		dto.VoiceMessageTranscription,
		dto.VoiceMessageResponseText,
	}, frameTypes(frames))
}

func TestVoiceProtocolErrors(t *testing.T) {
	svc := NewVoiceService(&fakeTranscriber{text: "hi"}, nil, &fakeChat{}, VoiceOptions{}, nopLogger)

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"invalid json", `{not json`, "Invalid JSON format"},
		{"unknown type", `{"type":"video"}`, "Unknown message type: video"},
		{"missing data", `{"type":"audio_chunk"}`, "No audio data provided"},
		{"bad base64", `{"type":"audio_chunk","data":"%%%"}`, "Invalid base64 audio data"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frames := collect(svc, tt.raw)
			require.Len(t, frames, 1)
			assert.Equal(t, dto.VoiceMessageError, frames[0].Type)
			assert.Equal(t, tt.want, frames[0].Message)
		})
	}
}

func TestVoicePing(t *testing.T) {
	svc := NewVoiceService(nil, nil, &fakeChat{}, VoiceOptions{}, nopLogger)
	frames := collect(svc, `{"type":"ping"}`)
	require.Len(t, frames, 1)
	assert.Equal(t, dto.VoiceMessagePong, frames[0].Type)
}

func TestVoiceShortAudioStopsBeforeChat(t *testing.T) {
	chat := &fakeChat{}
	svc := NewVoiceService(&fakeTranscriber{err: voice.ErrAudioTooShort}, &fakeSynthesizer{}, chat, VoiceOptions{}, nopLogger)
	audio := base64.StdEncoding.EncodeToString([]byte("x"))

	frames := collect(svc, `{"type":"audio_chunk","data":"`+audio+`"}`)
	assert.Equal(t, []string{dto.VoiceMessageProcessing, dto.VoiceMessageError}, frameTypes(frames))
	assert.Nil(t, chat.req)
}

func TestVoiceChatFailureEmitsError(t *testing.T) {
	svc := NewVoiceService(&fakeTranscriber{text: "hi"}, &fakeSynthesizer{}, &fakeChat{err: errors.New("boom")}, VoiceOptions{}, nopLogger)
	audio := base64.StdEncoding.EncodeToString([]byte("x"))

	frames := collect(svc, `{"type":"audio_chunk","data":"`+audio+`"}`)
	require.Len(t, frames, 3)
	assert.Equal(t, dto.VoiceMessageError, frames[2].Type)
	assert.NotContains(t, frames[2].Message, "boom")
}

func TestVoiceTranscribeErrors(t *testing.T) {
	ctx := context.Background()

	_, err := NewVoiceService(nil, nil, nil, VoiceOptions{}, nopLogger).Transcribe(ctx, []byte("x"), "wav")
	var fe *fiber.Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, fiber.StatusServiceUnavailable, fe.Code)

	_, err = NewVoiceService(&fakeTranscriber{err: voice.ErrAudioTooShort}, nil, nil, VoiceOptions{}, nopLogger).Transcribe(ctx, []byte("x"), "wav")
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, fiber.StatusUnprocessableEntity, fe.Code)

	res, err := NewVoiceService(&fakeTranscriber{text: "hello"}, nil, nil, VoiceOptions{}, nopLogger).Transcribe(ctx, make([]byte, 8000), "webm")
	require.NoError(t, err)
	assert.Equal(t, "hello", res.Text)
	assert.Equal(t, "en", res.Language)
	assert.InDelta(t, 2.0, res.Duration, 0.001)
}

func TestVoiceStatus(t *testing.T) {
	full := NewVoiceService(&fakeTranscriber{}, &fakeSynthesizer{}, nil, VoiceOptions{TTSProvider: "elevenlabs"}, nopLogger).Status(3)
	assert.Equal(t, "active", full.Status)
	assert.Equal(t, "elevenlabs", full.TTSProvider)
	assert.Equal(t, 3, full.ActiveConnections)
	assert.Equal(t, "Voice-to-voice service is running", full.Message)

	none := NewVoiceService(nil, nil, nil, VoiceOptions{TTSProvider: "elevenlabs"}, nopLogger).Status(0)
	assert.Equal(t, "degraded", none.Status)
	assert.Empty(t, none.TTSProvider)
}
