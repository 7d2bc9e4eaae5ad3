package flows

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/manas284/empathy-ai/internal/session"
	"github.com/manas284/empathy-ai/pkg/provider"
)

// Client runs the therapy AI flows over a structured-output LLM provider. It
// implements the session's Recommender, LanguageAdapter and Responder ports.
type Client struct {
	llm             provider.LLMProvider
	maxOutputTokens int64
}

// NewClient wires the flows to an LLM provider.
func NewClient(llm provider.LLMProvider) *Client {
	return &Client{llm: llm, maxOutputTokens: 2048}
}

// Structured outputs. Field names are part of the model contract.

type recommendationOutput struct {
	IdentifiedTherapeuticNeeds []string `json:"identifiedTherapeuticNeeds" jsonschema_description:"Therapeutic needs identified by the AI (e.g., CBT, IPT, Grief Counseling)."`
	Recommendations            string   `json:"recommendations" jsonschema_description:"Personalized therapy recommendations based on the user data and identified needs."`
}

type adaptationOutput struct {
	AdaptedLanguage string `json:"adaptedLanguage" jsonschema_description:"The adapted language and therapeutic techniques for the user, reflecting AI-inferred needs."`
}

type responseOutput struct {
	Response            string `json:"response" jsonschema_description:"The empathetic reply to the user's current message."`
	UpdatedRapportLevel int    `json:"updatedRapportLevel" jsonschema_description:"The reassessed rapport level on a 1-10 scale."`
	DetectedSentiment   string `json:"detectedSentiment" jsonschema_description:"Short phrase describing the emotional sentiment of the user's message."`
}

var (
	recommendationSchema = provider.GenerateSchema[recommendationOutput]()
	adaptationSchema     = provider.GenerateSchema[adaptationOutput]()
	responseSchema       = provider.GenerateSchema[responseOutput]()
)

// Recommend analyzes the profile and produces therapy recommendations together
// with the therapeutic needs the model identified.
func (c *Client) Recommend(ctx context.Context, p session.UserProfile) (*session.Recommendation, error) {
	var out recommendationOutput
	err := c.complete(ctx, &provider.CompletionRequest{
		Instructions:    recommendInstructions,
		Input:           recommendInput(p),
		SchemaName:      "personalized_therapy",
		Schema:          recommendationSchema,
		MaxOutputTokens: c.maxOutputTokens,
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("recommend flow: %w", err)
	}
	return &session.Recommendation{
		Recommendations:            out.Recommendations,
		IdentifiedTherapeuticNeeds: out.IdentifiedTherapeuticNeeds,
	}, nil
}

// AdaptLanguage derives the therapeutic style and register to use for the user.
func (c *Client) AdaptLanguage(ctx context.Context, p session.UserProfile) (*session.AdaptedStyle, error) {
	var out adaptationOutput
	err := c.complete(ctx, &provider.CompletionRequest{
		Instructions:    adaptInstructions,
		Input:           adaptInput(p),
		SchemaName:      "adapted_language",
		Schema:          adaptationSchema,
		MaxOutputTokens: c.maxOutputTokens,
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("adapt flow: %w", err)
	}
	return &session.AdaptedStyle{AdaptedLanguage: out.AdaptedLanguage}, nil
}

// Respond generates one empathetic reply and the updated rapport level.
func (c *Client) Respond(ctx context.Context, in session.ResponderInput) (*session.ResponderResult, error) {
	var out responseOutput
	err := c.complete(ctx, &provider.CompletionRequest{
		Instructions:    respondInstructions,
		Input:           respondInput(in),
		SchemaName:      "empathetic_response",
		Schema:          responseSchema,
		MaxOutputTokens: c.maxOutputTokens,
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("respond flow: %w", err)
	}
	return &session.ResponderResult{
		Response:            out.Response,
		UpdatedRapportLevel: out.UpdatedRapportLevel,
		DetectedSentiment:   out.DetectedSentiment,
	}, nil
}

func (c *Client) complete(ctx context.Context, req *provider.CompletionRequest, out any) error {
	raw, err := c.llm.Complete(ctx, req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("decode %s output: %w", req.SchemaName, err)
	}
	return nil
}
