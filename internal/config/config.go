package config

import "github.com/zeromicro/go-zero/rest"

type Config struct {
	rest.RestConf

	// Provider credentials; env vars fill in anything left empty here.
	Providers ProviderConfig `json:"providers,omitempty"`
}

type ProviderConfig struct {
	// LLM and speech recognition
	OpenAI OpenAIConfig `json:"openai,omitempty"`

	// Speech synthesis
	ElevenLabs ElevenLabsConfig `json:"elevenlabs,omitempty"`
}

type OpenAIConfig struct {
	APIKey  string `json:"apiKey,omitempty"`
	BaseURL string `json:"baseUrl,omitempty"`
	Model   string `json:"model,omitempty"`
}

type ElevenLabsConfig struct {
	APIKey        string `json:"apiKey,omitempty"`
	MaleVoiceID   string `json:"maleVoiceId,omitempty"`
	FemaleVoiceID string `json:"femaleVoiceId,omitempty"`
}
