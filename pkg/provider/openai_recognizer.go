package provider

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIRecognizer implements RecognizerProvider over the Whisper
// transcription endpoint.
type OpenAIRecognizer struct {
	client *openai.Client
}

// NewOpenAIRecognizer builds the recognizer from the shared OpenAI config.
func NewOpenAIRecognizer(cfg OpenAIConfig) *OpenAIRecognizer {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := openai.NewClient(opts...)
	return &OpenAIRecognizer{client: &client}
}

func (p *OpenAIRecognizer) Name() string { return "whisper" }

// Transcribe sends one finalized utterance for transcription.
func (p *OpenAIRecognizer) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	if len(audio) == 0 {
		return "", nil
	}
	resp, err := p.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		Model: openai.AudioModelWhisper1,
		File:  openai.File(bytes.NewReader(audio), fileNameFor(mimeType), mimeType),
	})
	if err != nil {
		return "", fmt.Errorf("whisper transcription: %w", err)
	}
	return strings.TrimSpace(resp.Text), nil
}

func fileNameFor(mimeType string) string {
	switch {
	case strings.Contains(mimeType, "wav"):
		return "audio.wav"
	case strings.Contains(mimeType, "webm"):
		return "audio.webm"
	case strings.Contains(mimeType, "ogg"):
		return "audio.ogg"
	case strings.Contains(mimeType, "mp4"):
		return "audio.mp4"
	default:
		return "audio.mp3"
	}
}
