package voice

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	GroqBaseURL         = "https://api.groq.com/openai/v1/"
	DefaultWhisperModel = "whisper-large-v3-turbo"
)

var audioMIME = map[string]string{
	"webm": "audio/webm",
	"wav":  "audio/wav",
	"mp3":  "audio/mpeg",
	"ogg":  "audio/ogg",
	"m4a":  "audio/mp4",
}

// WhisperTranscriber calls an OpenAI-compatible transcription endpoint.
type WhisperTranscriber struct {
	client   *openai.Client
	model    string
	language string
}

func NewWhisperTranscriber(apiKey, baseURL, model string) *WhisperTranscriber {
	if baseURL == "" {
		baseURL = GroqBaseURL
	}
	if model == "" {
		model = DefaultWhisperModel
	}
	client := openai.NewClient(option.WithAPIKey(apiKey), option.WithBaseURL(baseURL))
	return &WhisperTranscriber{client: &client, model: model, language: "en"}
}

func (w *WhisperTranscriber) Transcribe(ctx context.Context, audio []byte, format string) (string, error) {
	if EstimateDuration(audio, format) < MinDuration {
		return "", ErrAudioTooShort
	}

	format = strings.ToLower(format)
	mime, ok := audioMIME[format]
	if !ok {
		format, mime = "webm", audioMIME["webm"]
	}

	res, err := w.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		File:     openai.File(bytes.NewReader(audio), "audio."+format, mime),
		Model:    openai.AudioModel(w.model),
		Language: openai.String(w.language),
	})
	if err != nil {
		return "", fmt.Errorf("transcribe: %w", err)
	}

	text := strings.TrimSpace(res.Text)
	// Single characters are almost always noise or silence.
	if len([]rune(text)) < 2 {
		return "", ErrNoSpeech
	}
	return text, nil
}
