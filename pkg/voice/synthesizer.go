package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAISynthesizer uses the OpenAI speech endpoint.
type OpenAISynthesizer struct {
	client *openai.Client
	model  string
	voice  string
}

func NewOpenAISynthesizer(apiKey, model, voice string) *OpenAISynthesizer {
	if model == "" {
		model = "tts-1"
	}
	if voice == "" {
		voice = "alloy"
	}
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAISynthesizer{client: &client, model: model, voice: voice}
}

func (s *OpenAISynthesizer) Synthesize(ctx context.Context, text string, opts SpeechOptions) ([]byte, string, error) {
	voiceName := s.voice
	if opts.Voice != "" {
		voiceName = opts.Voice
	}
	params := openai.AudioSpeechNewParams{
		Input:          CleanForSpeech(text),
		Model:          openai.SpeechModel(s.model),
		Voice:          openai.AudioSpeechNewParamsVoice(voiceName),
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatMP3,
	}
	if opts.Speed > 0 {
		params.Speed = openai.Float(opts.Speed)
	}
	resp, err := s.client.Audio.Speech.New(ctx, params)
	if err != nil {
		return nil, "", fmt.Errorf("openai speech: %w", err)
	}
	defer resp.Body.Close()

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read speech audio: %w", err)
	}
	return audio, "mp3", nil
}

const (
	ElevenLabsBaseURL      = "https://api.elevenlabs.io/v1"
	DefaultElevenLabsVoice = "EXAVITQu4vr4xnSDxMaL"
)

// ElevenLabsSynthesizer calls the ElevenLabs text-to-speech REST API.
type ElevenLabsSynthesizer struct {
	APIKey  string
	VoiceID string
	BaseURL string
	Model   string
	HTTP    *http.Client
}

func NewElevenLabsSynthesizer(apiKey, voiceID string, timeout time.Duration) *ElevenLabsSynthesizer {
	if voiceID == "" {
		voiceID = DefaultElevenLabsVoice
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ElevenLabsSynthesizer{
		APIKey:  apiKey,
		VoiceID: voiceID,
		BaseURL: ElevenLabsBaseURL,
		Model:   "eleven_multilingual_v2",
		HTTP:    &http.Client{Timeout: timeout},
	}
}

type elevenLabsRequest struct {
	Text          string             `json:"text"`
	ModelID       string             `json:"model_id"`
	VoiceSettings elevenLabsSettings `json:"voice_settings"`
}

type elevenLabsSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
	Speed           float64 `json:"speed,omitempty"`
}

func (s *ElevenLabsSynthesizer) Synthesize(ctx context.Context, text string, opts SpeechOptions) ([]byte, string, error) {
	voiceID := s.VoiceID
	if opts.Voice != "" {
		voiceID = opts.Voice
	}
	body, err := json.Marshal(elevenLabsRequest{
		Text:    CleanForSpeech(text),
		ModelID: s.Model,
		VoiceSettings: elevenLabsSettings{
			Stability:       0.71,
			SimilarityBoost: 0.75,
			UseSpeakerBoost: true,
			Speed:           opts.Speed,
		},
	})
	if err != nil {
		return nil, "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/text-to-speech/%s", s.BaseURL, voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("xi-api-key", s.APIKey)

	resp, err := s.HTTP.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("elevenlabs request failed: %w", err)
	}
	defer resp.Body.Close()

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("elevenlabs error: status %d, body: %s", resp.StatusCode, string(audio))
	}
	return audio, "mp3", nil
}
