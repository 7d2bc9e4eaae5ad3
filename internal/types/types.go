package types

// StartSessionRequest carries the intake form.
type StartSessionRequest struct {
	Age             int    `json:"age"`
	GenderIdentity  string `json:"genderIdentity"`
	Ethnicity       string `json:"ethnicity"`
	VulnerableScore int    `json:"vulnerableScore"`
	AnxietyLevel    string `json:"anxietyLevel"`
	BreakupType     string `json:"breakupType"`
	Background      string `json:"background"`
}

// SessionData is the session view returned after a successful start.
type SessionData struct {
	SessionID                  string        `json:"sessionId"`
	Stage                      string        `json:"stage"`
	RapportLevel               int           `json:"rapportLevel"`
	Messages                   []ChatMessage `json:"messages"`
	Recommendations            string        `json:"recommendations"`
	IdentifiedTherapeuticNeeds []string      `json:"identifiedTherapeuticNeeds"`
	AdaptedLanguage            string        `json:"adaptedLanguage"`
}

// ChatMessage is the wire form of one timeline entry.
type ChatMessage struct {
	ID                string `json:"id"`
	Sender            string `json:"sender"`
	Text              string `json:"text"`
	Timestamp         int64  `json:"timestamp"`
	DetectedSentiment string `json:"detectedSentiment,omitempty"`
}

type StartSessionResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    SessionData `json:"data,omitempty"`
}

type HealthData struct {
	Status    string `json:"status"`
	Sessions  int    `json:"sessions"`
	Providers int    `json:"providers"`
}

type HealthResponse struct {
	Code    int        `json:"code"`
	Message string     `json:"message"`
	Data    HealthData `json:"data"`
}

// ProviderInfo mirrors the registry's discovery record.
type ProviderInfo struct {
	Name         string   `json:"name"`
	Type         string   `json:"type"`
	Status       string   `json:"status"`
	Capabilities []string `json:"capabilities,omitempty"`
}

type ServiceListResponse struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Data    []ProviderInfo `json:"data"`
}

type ServiceStatusResponse struct {
	Code    int          `json:"code"`
	Message string       `json:"message"`
	Data    ProviderInfo `json:"data,omitempty"`
}
