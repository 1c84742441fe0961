// Package voice wraps speech-to-text and text-to-speech backends used by
// the voice chat channel.
package voice

import (
	"context"
	"encoding/binary"
	"errors"
	"regexp"
	"strings"
	"time"
)

// MinDuration is the shortest clip worth sending to the transcriber.
const MinDuration = time.Second

var (
	ErrAudioTooShort = errors.New("audio clip is shorter than one second")
	ErrNoSpeech      = errors.New("no speech recognised")
	ErrNotConfigured = errors.New("voice backend is not configured")
)

type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, format string) (string, error)
}

// SpeechOptions overrides a synthesizer's defaults for one call. Zero
// values keep the defaults.
type SpeechOptions struct {
	Voice string
	Speed float64
}

// Synthesizer returns encoded audio and its format ("mp3", "wav").
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, opts SpeechOptions) ([]byte, string, error)
}

// Estimated bitrates in bytes per second for compressed formats whose
// duration cannot be read from a fixed header.
var bytesPerSecond = map[string]int{
	"webm": 4000,
	"ogg":  4000,
	"mp3":  16000,
	"m4a":  16000,
}

// EstimateDuration reads the duration from a WAV header, or estimates it
// from the size for compressed formats.
func EstimateDuration(audio []byte, format string) time.Duration {
	format = strings.ToLower(strings.TrimPrefix(format, "."))
	if format == "wav" || isRIFF(audio) {
		if d, ok := wavDuration(audio); ok {
			return d
		}
	}
	rate, ok := bytesPerSecond[format]
	if !ok {
		rate = bytesPerSecond["webm"]
	}
	return time.Duration(len(audio)) * time.Second / time.Duration(rate)
}

func isRIFF(audio []byte) bool {
	return len(audio) >= 12 && string(audio[0:4]) == "RIFF" && string(audio[8:12]) == "WAVE"
}

// wavDuration walks RIFF chunks for fmt (byte rate) and data (size).
func wavDuration(audio []byte) (time.Duration, bool) {
	if !isRIFF(audio) {
		return 0, false
	}
	var byteRate, dataSize uint32
	for off := 12; off+8 <= len(audio); {
		id := string(audio[off : off+4])
		size := binary.LittleEndian.Uint32(audio[off+4 : off+8])
		body := off + 8
		switch id {
		case "fmt ":
			if body+12 <= len(audio) {
				byteRate = binary.LittleEndian.Uint32(audio[body+8 : body+12])
			}
		case "data":
			dataSize = size
			if avail := uint32(len(audio) - body); dataSize > avail {
				dataSize = avail
			}
		}
		off = body + int(size) + int(size%2)
	}
	if byteRate == 0 {
		return 0, false
	}
	return time.Duration(dataSize) * time.Second / time.Duration(byteRate), true
}

var (
	mdHeader    = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	mdLink      = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	mdBold      = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	mdItalic    = regexp.MustCompile(`\*([^*]+)\*`)
	mdUnder     = regexp.MustCompile(`__([^_]+)__`)
	mdCodeFence = regexp.MustCompile("(?s)```.*?```")
	mdCode      = regexp.MustCompile("`([^`]+)`")
	mdBullet    = regexp.MustCompile(`(?m)^\s*([-*+]|\d+\.)\s+`)
	blankLines  = regexp.MustCompile(`\n\s*\n`)
	spaces      = regexp.MustCompile(`\s+`)
	unspoken    = regexp.MustCompile(`[^\p{L}\p{N}\s.,!?;:()'\-]`)
)

// CleanForSpeech strips markdown and symbols a speech engine would read out.
func CleanForSpeech(text string) string {
	text = mdCodeFence.ReplaceAllString(text, "code block")
	text = mdHeader.ReplaceAllString(text, "")
	text = mdLink.ReplaceAllString(text, "$1")
	text = mdBold.ReplaceAllString(text, "$1")
	text = mdItalic.ReplaceAllString(text, "$1")
	text = mdUnder.ReplaceAllString(text, "$1")
	text = mdCode.ReplaceAllString(text, "$1")
	text = mdBullet.ReplaceAllString(text, "")
	text = blankLines.ReplaceAllString(text, ". ")
	text = unspoken.ReplaceAllString(text, " ")
	text = spaces.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
