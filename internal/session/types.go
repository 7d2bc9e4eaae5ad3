package session

import "time"

// GenderIdentity is the self-reported gender identity captured by the intake form.
type GenderIdentity string

const (
	GenderMale      GenderIdentity = "Male"
	GenderFemale    GenderIdentity = "Female"
	GenderNonBinary GenderIdentity = "Non-Binary"
)

// AnxietyLevel as captured by the intake form. The conversational responder
// only understands Low/High; Medium is normalized at call time.
type AnxietyLevel string

const (
	AnxietyLow    AnxietyLevel = "Low"
	AnxietyMedium AnxietyLevel = "Medium"
	AnxietyHigh   AnxietyLevel = "High"
)

// BreakupType categorizes how the relationship ended.
type BreakupType string

const (
	BreakupMutual   BreakupType = "Mutual"
	BreakupGhosting BreakupType = "Ghosting"
	BreakupCheating BreakupType = "Cheating"
	BreakupDemise   BreakupType = "Demise"
	BreakupDivorce  BreakupType = "Divorce"
)

// UserProfile is the validated intake form output. Immutable once a session
// has been started with it.
type UserProfile struct {
	Age             int            `json:"age"`
	GenderIdentity  GenderIdentity `json:"genderIdentity"`
	Ethnicity       string         `json:"ethnicity"`
	VulnerableScore int            `json:"vulnerableScore"`
	AnxietyLevel    AnxietyLevel   `json:"anxietyLevel"`
	BreakupType     BreakupType    `json:"breakupType"`
	Background      string         `json:"background"`
}

// Sender identifies the author of a chat message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

// ChatMessage is one entry in the append-only conversation timeline.
type ChatMessage struct {
	ID                string    `json:"id"`
	Sender            Sender    `json:"sender"`
	Text              string    `json:"text"`
	Timestamp         time.Time `json:"timestamp"`
	DetectedSentiment string    `json:"detectedSentiment,omitempty"`
}

// Stage is the coarse session stage.
type Stage string

const (
	StageCollectingProfile Stage = "collectingProfile"
	StageAwaitingInitialAI Stage = "awaitingInitialAI"
	StageChatting          Stage = "chatting"
)

// TurnState is the per-turn sub-state while chatting. It is the single source
// of truth for "is an AI turn active".
type TurnState string

const (
	TurnIdle           TurnState = "idle"
	TurnAwaitingAIText TurnState = "awaitingAiText"
	TurnAwaitingSpeech TurnState = "awaitingSpeech"
	TurnSpeaking       TurnState = "speaking"
)

// Recommendation is the output of the startup therapy-recommendation flow.
type Recommendation struct {
	Recommendations            string   `json:"recommendations"`
	IdentifiedTherapeuticNeeds []string `json:"identifiedTherapeuticNeeds"`
}

// AdaptedStyle is the output of the startup language-adaptation flow.
type AdaptedStyle struct {
	AdaptedLanguage string `json:"adaptedLanguage"`
}

// HistoryEntry is one prior exchange handed to the responder as context.
type HistoryEntry struct {
	Role string `json:"role"` // "user" or "ai"
	Text string `json:"text"`
}

// ResponderInput is the payload for one empathetic-response call. AnxietyLevel
// here is restricted to Low/High per the responder's contract.
type ResponderInput struct {
	Profile        UserProfile    `json:"profile"`
	CurrentMessage string         `json:"currentMessage"`
	RapportLevel   int            `json:"rapportLevel"`
	RecentHistory  []HistoryEntry `json:"recentHistory"`
}

// ResponderResult is the responder's reply for one turn.
type ResponderResult struct {
	Response            string `json:"response"`
	UpdatedRapportLevel int    `json:"updatedRapportLevel"`
	DetectedSentiment   string `json:"detectedSentiment,omitempty"`
}

// SpeechPayload is a synthesized utterance, encoded as a base64 data URI.
type SpeechPayload struct {
	AudioDataURI string `json:"audioDataUri"`
	MIMEType     string `json:"mimeType"`
}
