package provider

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Synthesis failure classes. Callers branch on these to pick the user-facing
// message; everything else is a generic synthesis failure.
var (
	ErrMissingCredential = errors.New("elevenlabs: api key not configured")
	ErrUnauthorized      = errors.New("elevenlabs: invalid api key")
	ErrBadRequest        = errors.New("elevenlabs: request rejected")
)

const (
	elevenLabsBaseURL = "https://api.elevenlabs.io/v1/text-to-speech"
	elevenLabsModel   = "eleven_multilingual_v2"
	elevenLabsFormat  = "mp3_44100_128"
	speechMIMEType    = "audio/mpeg"
)

// ElevenLabsTTSProvider implements TTSProvider over the ElevenLabs HTTP
// text-to-speech endpoint. Output is a complete MP3 utterance packaged as a
// base64 data URI.
type ElevenLabsTTSProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewElevenLabsTTSProvider builds the provider. baseURL overrides the API
// endpoint when non-empty.
func NewElevenLabsTTSProvider(apiKey, baseURL string) *ElevenLabsTTSProvider {
	if baseURL == "" {
		baseURL = elevenLabsBaseURL
	}
	return &ElevenLabsTTSProvider{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (p *ElevenLabsTTSProvider) Name() string { return "elevenlabs" }

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
}

// Synthesize converts one utterance into MP3 audio.
func (p *ElevenLabsTTSProvider) Synthesize(ctx context.Context, req *SpeechRequest) (*SpeechResult, error) {
	if p.apiKey == "" {
		return nil, ErrMissingCredential
	}
	if req.Text == "" || req.VoiceID == "" {
		return nil, fmt.Errorf("%w: text and voice id are required", ErrBadRequest)
	}

	body := elevenLabsRequest{
		Text:    req.Text,
		ModelID: elevenLabsModel,
		VoiceSettings: elevenLabsSettings{
			Stability:       0.5,
			SimilarityBoost: 0.75,
			Style:           0.0,
			UseSpeakerBoost: true,
		},
	}
	buf, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s?output_format=%s", p.baseURL, req.VoiceID, elevenLabsFormat)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: build request: %w", err)
	}
	httpReq.Header.Set("xi-api-key", p.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", speechMIMEType)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		switch {
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return nil, fmt.Errorf("%w: status=%d body=%s", ErrUnauthorized, resp.StatusCode, detail)
		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			return nil, fmt.Errorf("%w: status=%d body=%s", ErrBadRequest, resp.StatusCode, detail)
		default:
			return nil, fmt.Errorf("elevenlabs: status=%d body=%s", resp.StatusCode, detail)
		}
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: read audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("elevenlabs: empty audio response")
	}

	return &SpeechResult{
		AudioDataURI: "data:" + speechMIMEType + ";base64," + base64.StdEncoding.EncodeToString(audio),
		MIMEType:     speechMIMEType,
	}, nil
}
