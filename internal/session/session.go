package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zeromicro/go-zero/core/logx"
)

// historyLimit bounds the recent-history context sent to the responder.
const historyLimit = 4

// fallbackReply is appended when the responder fails, so the conversation can
// continue instead of dead-ending on an error toast.
const fallbackReply = "I'm having a little trouble connecting right now. Please try sending your message again in a moment."

var (
	// ErrNotChatting is returned for user input before the session reached the chat stage.
	ErrNotChatting = errors.New("session: not in chatting stage")
	// ErrTurnInFlight is returned when input arrives while a response is still being generated.
	ErrTurnInFlight = errors.New("session: an AI turn is already in flight")
	// ErrProfileLocked is returned when a profile is submitted twice.
	ErrProfileLocked = errors.New("session: profile already submitted")
)

// Recommender produces the startup therapy recommendations for a profile.
type Recommender interface {
	Recommend(ctx context.Context, p UserProfile) (*Recommendation, error)
}

// LanguageAdapter produces the startup language/technique adaptation for a profile.
type LanguageAdapter interface {
	AdaptLanguage(ctx context.Context, p UserProfile) (*AdaptedStyle, error)
}

// Responder produces the next assistant utterance for one turn.
type Responder interface {
	Respond(ctx context.Context, in ResponderInput) (*ResponderResult, error)
}

// Synthesizer converts an utterance into an encoded audio payload for the given voice.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voice string) (*SpeechPayload, error)
}

// Playback is the playback half of the audio bridge as seen by the orchestrator.
// Play must stop and release any prior utterance before starting the new one.
type Playback interface {
	Play(dataURI, mimeType, voice string) uint64
	Stop()
	Voice() string
}

// EventSink receives session events for delivery to the client. Implementations
// must not call back into the Session from within an event method.
type EventSink interface {
	MessageAppended(msg ChatMessage)
	StateChanged(stage Stage, turn TurnState)
	SpeechStarted(utteranceID uint64, payload SpeechPayload, voice string)
	Notify(code, message string)
}

type nopSink struct{}

func (nopSink) MessageAppended(ChatMessage)                 {}
func (nopSink) StateChanged(Stage, TurnState)               {}
func (nopSink) SpeechStarted(uint64, SpeechPayload, string) {}
func (nopSink) Notify(string, string)                       {}

// Deps bundles the collaborators a Session orchestrates.
type Deps struct {
	Recommender Recommender
	Adapter     LanguageAdapter
	Responder   Responder
	Synthesizer Synthesizer
	Playback    Playback
}

// Session is the turn-taking controller for one therapy conversation. It owns
// the append-only message timeline, the rapport counter and the explicit
// stage/turn state machine; every external call happens outside its lock and
// its result is fenced by a monotonic turn id so a superseded response can
// never resurrect old state.
type Session struct {
	ID string

	mu               sync.Mutex
	stage            Stage
	turn             TurnState
	profile          UserProfile
	hasProfile       bool
	recommendation   *Recommendation
	style            *AdaptedStyle
	messages         []ChatMessage
	rapport          int
	turnSeq          uint64
	currentUtterance uint64
	pendingGreeting  bool

	deps Deps
	sink EventSink
	now  func() time.Time
}

// New constructs a Session in the collectingProfile stage.
func New(deps Deps) *Session {
	return &Session{
		ID:    uuid.NewString(),
		stage: StageCollectingProfile,
		turn:  TurnIdle,
		deps:  deps,
		sink:  nopSink{},
		now:   time.Now,
	}
}

// AttachSink replaces the event sink, typically when a chat transport connects.
func (s *Session) AttachSink(sink EventSink) {
	s.mu.Lock()
	if sink == nil {
		sink = nopSink{}
	}
	s.sink = sink
	s.mu.Unlock()
}

// Start validates the profile, runs the two startup flows concurrently with an
// all-or-nothing join, and on success appends the composite greeting and
// advances to the chatting stage. On any failure the session stays in
// collectingProfile and may be retried with a new submission.
func (s *Session) Start(ctx context.Context, p UserProfile) (*ChatMessage, error) {
	if err := ValidateProfile(p); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.hasProfile {
		s.mu.Unlock()
		return nil, ErrProfileLocked
	}
	s.stage = StageAwaitingInitialAI
	sink := s.sink
	s.mu.Unlock()
	sink.StateChanged(StageAwaitingInitialAI, TurnIdle)

	var (
		wg       sync.WaitGroup
		reco     *Recommendation
		style    *AdaptedStyle
		recoErr  error
		adaptErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		reco, recoErr = s.deps.Recommender.Recommend(ctx, p)
	}()
	go func() {
		defer wg.Done()
		style, adaptErr = s.deps.Adapter.AdaptLanguage(ctx, p)
	}()
	wg.Wait()

	if recoErr != nil || adaptErr != nil {
		err := recoErr
		if err == nil {
			err = adaptErr
		}
		logx.WithContext(ctx).Errorf("session %s: startup flows failed: %v", s.ID, err)
		s.mu.Lock()
		s.stage = StageCollectingProfile
		sink = s.sink
		s.mu.Unlock()
		sink.StateChanged(StageCollectingProfile, TurnIdle)
		sink.Notify("profile_failed", "Could not process your profile. Please try again.")
		return nil, err
	}

	greeting := ChatMessage{
		ID:        uuid.NewString(),
		Sender:    SenderAI,
		Text:      composeGreeting(reco, style),
		Timestamp: s.now(),
	}

	s.mu.Lock()
	s.profile = p
	s.hasProfile = true
	s.recommendation = reco
	s.style = style
	s.messages = append(s.messages, greeting)
	s.stage = StageChatting
	s.turn = TurnIdle
	s.turnSeq++
	s.pendingGreeting = true
	sink = s.sink
	s.mu.Unlock()

	sink.MessageAppended(greeting)
	sink.StateChanged(StageChatting, TurnIdle)
	return &greeting, nil
}

// SpeakGreeting begins speech synthesis for the greeting message. It is
// invoked once the chat transport is attached and is a no-op afterwards.
func (s *Session) SpeakGreeting(ctx context.Context) {
	s.mu.Lock()
	if !s.pendingGreeting || len(s.messages) == 0 {
		s.mu.Unlock()
		return
	}
	s.pendingGreeting = false
	tid := s.turnSeq
	text := s.messages[0].Text
	s.mu.Unlock()
	s.speak(ctx, tid, text)
}

// HandleUserInput runs one turn: append the user message, invoke the responder
// with bounded history, append its reply (or the fixed fallback), then
// synthesize and start playback. Input arriving while speech is in flight or
// playing cancels that speech unconditionally before the new cycle starts.
func (s *Session) HandleUserInput(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	s.mu.Lock()
	if s.stage != StageChatting {
		s.mu.Unlock()
		return ErrNotChatting
	}
	if s.turn == TurnAwaitingAIText {
		s.mu.Unlock()
		return ErrTurnInFlight
	}
	if s.turn == TurnAwaitingSpeech || s.turn == TurnSpeaking {
		// Stop before the new cycle starts; Stop emits no further events for
		// the released payload.
		s.deps.Playback.Stop()
		s.currentUtterance = 0
	}
	s.pendingGreeting = false

	userMsg := ChatMessage{
		ID:        uuid.NewString(),
		Sender:    SenderUser,
		Text:      text,
		Timestamp: s.now(),
	}
	s.messages = append(s.messages, userMsg)
	s.turnSeq++
	tid := s.turnSeq
	s.turn = TurnAwaitingAIText
	in := s.responderInputLocked(text)
	sink := s.sink
	s.mu.Unlock()

	sink.MessageAppended(userMsg)
	sink.StateChanged(StageChatting, TurnAwaitingAIText)

	res, err := s.deps.Responder.Respond(ctx, in)

	s.mu.Lock()
	if s.turnSeq != tid {
		s.mu.Unlock()
		return nil
	}
	if err != nil {
		logx.WithContext(ctx).Errorf("session %s: responder failed: %v", s.ID, err)
		fallback := ChatMessage{
			ID:        uuid.NewString(),
			Sender:    SenderAI,
			Text:      fallbackReply,
			Timestamp: s.now(),
		}
		s.messages = append(s.messages, fallback)
		s.turn = TurnIdle
		sink = s.sink
		s.mu.Unlock()
		sink.MessageAppended(fallback)
		sink.StateChanged(StageChatting, TurnIdle)
		sink.Notify("response_failed", "Could not get AI response.")
		return nil
	}

	aiMsg := ChatMessage{
		ID:                uuid.NewString(),
		Sender:            SenderAI,
		Text:              res.Response,
		Timestamp:         s.now(),
		DetectedSentiment: res.DetectedSentiment,
	}
	s.messages = append(s.messages, aiMsg)
	s.rapport = res.UpdatedRapportLevel
	sink = s.sink
	s.mu.Unlock()

	sink.MessageAppended(aiMsg)
	s.speak(ctx, tid, res.Response)
	return nil
}

// responderInputLocked builds the responder payload: profile with Medium
// anxiety normalized to High, and the last historyLimit messages preceding the
// just-appended user message. Caller holds s.mu.
func (s *Session) responderInputLocked(current string) ResponderInput {
	p := s.profile
	p.AnxietyLevel = normalizedAnxiety(p.AnxietyLevel)

	prior := s.messages[:len(s.messages)-1]
	start := 0
	if len(prior) > historyLimit {
		start = len(prior) - historyLimit
	}
	history := make([]HistoryEntry, 0, historyLimit)
	for _, m := range prior[start:] {
		history = append(history, HistoryEntry{Role: string(m.Sender), Text: m.Text})
	}

	return ResponderInput{
		Profile:        p,
		CurrentMessage: current,
		RapportLevel:   s.rapport,
		RecentHistory:  history,
	}
}

// speak synthesizes text for turn tid and starts playback. A result arriving
// after the turn was superseded is discarded without touching any state.
func (s *Session) speak(ctx context.Context, tid uint64, text string) {
	s.mu.Lock()
	if s.turnSeq != tid {
		s.mu.Unlock()
		return
	}
	s.turn = TurnAwaitingSpeech
	voice := s.deps.Playback.Voice()
	sink := s.sink
	s.mu.Unlock()
	sink.StateChanged(StageChatting, TurnAwaitingSpeech)

	payload, err := s.deps.Synthesizer.Synthesize(ctx, text, voice)

	s.mu.Lock()
	if s.turnSeq != tid {
		s.mu.Unlock()
		return
	}
	if err != nil {
		logx.WithContext(ctx).Errorf("session %s: speech synthesis failed: %v", s.ID, err)
		s.turn = TurnIdle
		sink = s.sink
		s.mu.Unlock()
		sink.Notify("speech_failed", "Speech generation failed. The conversation continues in text.")
		sink.StateChanged(StageChatting, TurnIdle)
		return
	}

	uid := s.deps.Playback.Play(payload.AudioDataURI, payload.MIMEType, voice)
	s.currentUtterance = uid
	s.turn = TurnSpeaking
	sink = s.sink
	s.mu.Unlock()

	sink.SpeechStarted(uid, *payload, voice)
	sink.StateChanged(StageChatting, TurnSpeaking)
}

// PlaybackEnded reports natural end of playback for an utterance. Stale ids
// are ignored.
func (s *Session) PlaybackEnded(utteranceID uint64) {
	s.mu.Lock()
	if s.turn != TurnSpeaking || utteranceID != s.currentUtterance {
		s.mu.Unlock()
		return
	}
	s.turn = TurnIdle
	s.currentUtterance = 0
	sink := s.sink
	s.mu.Unlock()
	sink.StateChanged(StageChatting, TurnIdle)
}

// PlaybackErrored reports a playback failure; the turn returns to idle and the
// user is notified. Stale ids are ignored.
func (s *Session) PlaybackErrored(utteranceID uint64, reason string) {
	s.mu.Lock()
	if s.turn != TurnSpeaking || utteranceID != s.currentUtterance {
		s.mu.Unlock()
		return
	}
	logx.Errorf("session %s: playback errored: %s", s.ID, reason)
	s.turn = TurnIdle
	s.currentUtterance = 0
	sink := s.sink
	s.mu.Unlock()
	sink.Notify("speech_failed", "Audio playback failed.")
	sink.StateChanged(StageChatting, TurnIdle)
}

// AITurnActive reports whether the AI is generating or speaking; the capture
// bridge uses it to refuse the microphone during an AI turn.
func (s *Session) AITurnActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stage != StageChatting || s.turn != TurnIdle
}

// Stage returns the current coarse stage.
func (s *Session) Stage() Stage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stage
}

// Turn returns the current turn sub-state.
func (s *Session) Turn() TurnState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turn
}

// Rapport returns the current rapport level.
func (s *Session) Rapport() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rapport
}

// Messages returns a copy of the timeline.
func (s *Session) Messages() []ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

// Profile returns the submitted profile and whether one exists.
func (s *Session) Profile() (UserProfile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile, s.hasProfile
}

// Recommendation returns the startup recommendation output, if any.
func (s *Session) Recommendation() *Recommendation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recommendation
}

// Style returns the startup language-adaptation output, if any.
func (s *Session) Style() *AdaptedStyle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.style
}

func composeGreeting(reco *Recommendation, style *AdaptedStyle) string {
	var b strings.Builder
	b.WriteString("Thank you for sharing. Based on your information, here are some initial thoughts and how we might proceed:\n\n")
	b.WriteString("**Recommendations:**\n")
	b.WriteString(reco.Recommendations)
	b.WriteString("\n\n**Our Approach:**\n")
	b.WriteString(style.AdaptedLanguage)
	b.WriteString("\n\nFeel free to share what's on your mind to begin our conversation.")
	return b.String()
}
