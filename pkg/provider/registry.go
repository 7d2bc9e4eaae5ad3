package provider

import (
	"context"
	"fmt"
)

// Registry manages all providers with unified interfaces.
type Registry struct {
	llmProviders map[string]LLMProvider
	ttsProviders map[string]TTSProvider
	recProviders map[string]RecognizerProvider
}

func NewRegistry() *Registry {
	return &Registry{
		llmProviders: make(map[string]LLMProvider),
		ttsProviders: make(map[string]TTSProvider),
		recProviders: make(map[string]RecognizerProvider),
	}
}

// LLMProvider generates one completion for a prompt; when a schema is set the
// output text is strict JSON conforming to it.
type LLMProvider interface {
	Name() string
	Complete(ctx context.Context, req *CompletionRequest) (string, error)
}

// TTSProvider synthesizes one utterance into an encoded audio payload.
type TTSProvider interface {
	Name() string
	Synthesize(ctx context.Context, req *SpeechRequest) (*SpeechResult, error)
}

// RecognizerProvider transcribes one finalized utterance.
type RecognizerProvider interface {
	Name() string
	Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error)
}

// CompletionRequest describes one structured-output LLM call.
type CompletionRequest struct {
	Instructions    string
	Input           string
	SchemaName      string
	Schema          map[string]any
	MaxOutputTokens int64
}

// SpeechRequest selects the text and concrete vendor voice for synthesis.
type SpeechRequest struct {
	Text    string
	VoiceID string
}

// SpeechResult carries the synthesized audio as a base64 data URI.
type SpeechResult struct {
	AudioDataURI string
	MIMEType     string
}

// Registry methods

func (r *Registry) RegisterLLM(name string, p LLMProvider) {
	r.llmProviders[name] = p
}

func (r *Registry) RegisterTTS(name string, p TTSProvider) {
	r.ttsProviders[name] = p
}

func (r *Registry) RegisterRecognizer(name string, p RecognizerProvider) {
	r.recProviders[name] = p
}

func (r *Registry) GetLLM(name string) (LLMProvider, error) {
	if p, ok := r.llmProviders[name]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("LLM provider '%s' not found", name)
}

func (r *Registry) GetTTS(name string) (TTSProvider, error) {
	if p, ok := r.ttsProviders[name]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("TTS provider '%s' not found", name)
}

func (r *Registry) GetRecognizer(name string) (RecognizerProvider, error) {
	if p, ok := r.recProviders[name]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("recognizer provider '%s' not found", name)
}

// ProviderInfo describes one registered provider for the discovery endpoints.
type ProviderInfo struct {
	Name         string   `json:"name"`
	Type         string   `json:"type"`
	Status       string   `json:"status"`
	Capabilities []string `json:"capabilities,omitempty"`
}

func capabilitiesFor(providerType string) []string {
	switch providerType {
	case "llm":
		return []string{"complete", "structured_output"}
	case "tts":
		return []string{"synthesize"}
	case "recognizer":
		return []string{"transcribe"}
	}
	return nil
}

// GetAllProviders lists every registered provider.
func (r *Registry) GetAllProviders() []ProviderInfo {
	var providers []ProviderInfo
	for name := range r.llmProviders {
		providers = append(providers, ProviderInfo{Name: name, Type: "llm", Status: "online", Capabilities: capabilitiesFor("llm")})
	}
	for name := range r.ttsProviders {
		providers = append(providers, ProviderInfo{Name: name, Type: "tts", Status: "online", Capabilities: capabilitiesFor("tts")})
	}
	for name := range r.recProviders {
		providers = append(providers, ProviderInfo{Name: name, Type: "recognizer", Status: "online", Capabilities: capabilitiesFor("recognizer")})
	}
	return providers
}

// GetProvidersByType lists providers of one type.
func (r *Registry) GetProvidersByType(providerType string) []ProviderInfo {
	var providers []ProviderInfo
	switch providerType {
	case "llm":
		for name := range r.llmProviders {
			providers = append(providers, ProviderInfo{Name: name, Type: "llm", Status: "online", Capabilities: capabilitiesFor("llm")})
		}
	case "tts":
		for name := range r.ttsProviders {
			providers = append(providers, ProviderInfo{Name: name, Type: "tts", Status: "online", Capabilities: capabilitiesFor("tts")})
		}
	case "recognizer":
		for name := range r.recProviders {
			providers = append(providers, ProviderInfo{Name: name, Type: "recognizer", Status: "online", Capabilities: capabilitiesFor("recognizer")})
		}
	}
	return providers
}

// GetProviderInfo returns info for one provider.
func (r *Registry) GetProviderInfo(providerType, name string) (*ProviderInfo, error) {
	found := false
	switch providerType {
	case "llm":
		_, found = r.llmProviders[name]
	case "tts":
		_, found = r.ttsProviders[name]
	case "recognizer":
		_, found = r.recProviders[name]
	}
	if !found {
		return nil, fmt.Errorf("provider '%s' of type '%s' not found", name, providerType)
	}
	return &ProviderInfo{Name: name, Type: providerType, Status: "online", Capabilities: capabilitiesFor(providerType)}, nil
}
