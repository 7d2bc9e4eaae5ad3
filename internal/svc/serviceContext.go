package svc

import (
	"context"
	"os"
	"sync"

	"github.com/manas284/empathy-ai/internal/audio"
	"github.com/manas284/empathy-ai/internal/config"
	"github.com/manas284/empathy-ai/internal/flows"
	"github.com/manas284/empathy-ai/internal/session"
	"github.com/manas284/empathy-ai/pkg/provider"
)

// Default ElevenLabs voices: Rachel and Adam.
const (
	defaultFemaleVoiceID = "21m00Tcm4TlvDq8ikWAM"
	defaultMaleVoiceID   = "pNInz6obpgDQGcFmaJgB"
)

type ServiceContext struct {
	Config   config.Config
	Registry *provider.Registry
	Sessions *session.Manager

	maleVoiceID   string
	femaleVoiceID string

	mu        sync.Mutex
	playbacks map[string]*audio.PlaybackController
}

func NewServiceContext(c config.Config) *ServiceContext {
	registry := provider.NewRegistry()

	// OpenAI LLM + Whisper recognizer
	openAIKey := c.Providers.OpenAI.APIKey
	if openAIKey == "" {
		openAIKey = os.Getenv("OPENAI_API_KEY")
	}
	if openAIKey != "" {
		cfg := provider.OpenAIConfig{
			APIKey:  openAIKey,
			BaseURL: c.Providers.OpenAI.BaseURL,
			Model:   c.Providers.OpenAI.Model,
		}
		registry.RegisterLLM("openai", provider.NewOpenAILLMProvider(cfg))
		registry.RegisterRecognizer("whisper", provider.NewOpenAIRecognizer(cfg))
	}

	// ElevenLabs TTS
	elevenKey := c.Providers.ElevenLabs.APIKey
	if elevenKey == "" {
		elevenKey = os.Getenv("ELEVENLABS_API_KEY")
	}
	if elevenKey != "" {
		registry.RegisterTTS("elevenlabs", provider.NewElevenLabsTTSProvider(elevenKey, ""))
	}

	femaleVoice := c.Providers.ElevenLabs.FemaleVoiceID
	if femaleVoice == "" {
		femaleVoice = os.Getenv("ELEVENLABS_FEMALE_VOICE_ID")
	}
	if femaleVoice == "" {
		femaleVoice = defaultFemaleVoiceID
	}
	maleVoice := c.Providers.ElevenLabs.MaleVoiceID
	if maleVoice == "" {
		maleVoice = os.Getenv("ELEVENLABS_MALE_VOICE_ID")
	}
	if maleVoice == "" {
		maleVoice = defaultMaleVoiceID
	}

	return &ServiceContext{
		Config:        c,
		Registry:      registry,
		Sessions:      session.NewManager(),
		maleVoiceID:   maleVoice,
		femaleVoiceID: femaleVoice,
		playbacks:     make(map[string]*audio.PlaybackController),
	}
}

// NewSession creates a session wired to the registered providers, with its own
// playback controller.
func (sc *ServiceContext) NewSession() (*session.Session, error) {
	llm, err := sc.Registry.GetLLM("openai")
	if err != nil {
		return nil, err
	}
	tts, err := sc.Registry.GetTTS("elevenlabs")
	if err != nil {
		return nil, err
	}

	fc := flows.NewClient(llm)
	pc := audio.NewPlaybackController()
	s := sc.Sessions.Create(session.Deps{
		Recommender: fc,
		Adapter:     fc,
		Responder:   fc,
		Synthesizer: &speechSynthesizer{tts: tts, male: sc.maleVoiceID, female: sc.femaleVoiceID},
		Playback:    pc,
	})

	sc.mu.Lock()
	sc.playbacks[s.ID] = pc
	sc.mu.Unlock()
	return s, nil
}

// Playback returns the playback controller belonging to a session.
func (sc *ServiceContext) Playback(sessionID string) (*audio.PlaybackController, bool) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	pc, ok := sc.playbacks[sessionID]
	return pc, ok
}

// RemoveSession drops a session and its playback controller.
func (sc *ServiceContext) RemoveSession(sessionID string) {
	sc.Sessions.Remove(sessionID)
	sc.mu.Lock()
	delete(sc.playbacks, sessionID)
	sc.mu.Unlock()
}

// Recognizer returns the registered speech recognizer, or nil when recognition
// is not configured. A nil recognizer disables the listening feature.
func (sc *ServiceContext) Recognizer() provider.RecognizerProvider {
	rec, err := sc.Registry.GetRecognizer("whisper")
	if err != nil {
		return nil
	}
	return rec
}

// speechSynthesizer adapts the vendor TTS provider to the orchestrator's port,
// mapping the voice gender preference to a concrete vendor voice id.
type speechSynthesizer struct {
	tts    provider.TTSProvider
	male   string
	female string
}

func (s *speechSynthesizer) Synthesize(ctx context.Context, text, voice string) (*session.SpeechPayload, error) {
	voiceID := s.female
	if voice == audio.VoiceMale {
		voiceID = s.male
	}
	res, err := s.tts.Synthesize(ctx, &provider.SpeechRequest{Text: text, VoiceID: voiceID})
	if err != nil {
		return nil, err
	}
	return &session.SpeechPayload{AudioDataURI: res.AudioDataURI, MIMEType: res.MIMEType}, nil
}

var _ session.Synthesizer = (*speechSynthesizer)(nil)
