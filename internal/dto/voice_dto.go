package dto

type TranscribeResponse struct {
	Text       string  `json:"text"`
	Language   string  `json:"language"`
	Confidence float64 `json:"confidence"`
	Duration   float64 `json:"duration"`
}

type SynthesizeRequest struct {
	Text   string   `json:"text" validate:"required,min=1,max=4000"`
	Voice  *string  `json:"voice,omitempty"`
	Speed  *float64 `json:"speed,omitempty" validate:"omitempty,gte=0.25,lte=4"`
	Format *string  `json:"format,omitempty" validate:"omitempty,oneof=mp3"`
}

type VoiceStatusResponse struct {
	Status            string `json:"status"`
	STTConfigured     bool   `json:"stt_configured"`
	TTSConfigured     bool   `json:"tts_configured"`
	TTSProvider       string `json:"tts_provider"`
	ActiveConnections int    `json:"active_connections"`
	Message           string `json:"message"`
}

// VoiceClientMessage is a frame received on the voice websocket.
type VoiceClientMessage struct {
	Type   string `json:"type"`
	Data   string `json:"data,omitempty"`
	Format string `json:"format,omitempty"`
}

// VoiceServerMessage is a frame sent on the voice websocket.
type VoiceServerMessage struct {
	Type    string `json:"type"`
	Text    string `json:"text,omitempty"`
	Data    string `json:"data,omitempty"`
	Format  string `json:"format,omitempty"`
	Message string `json:"message,omitempty"`
}

const (
	VoiceMessageAudioChunk    = "audio_chunk"
	VoiceMessagePing          = "ping"
	VoiceMessagePong          = "pong"
	VoiceMessageProcessing    = "processing"
	VoiceMessageTranscription = "transcription"
	VoiceMessageResponseText  = "response_text"
	VoiceMessageResponseAudio = "response_audio"
	VoiceMessageError         = "error"
)
