package flows

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/manas284/empathy-ai/internal/session"
	"github.com/manas284/empathy-ai/pkg/provider"
)

type fakeLLM struct {
	output string
	err    error
	last   *provider.CompletionRequest
}

func (f *fakeLLM) Name() string { return "fake" }

func (f *fakeLLM) Complete(ctx context.Context, req *provider.CompletionRequest) (string, error) {
	f.last = req
	if f.err != nil {
		return "", f.err
	}
	return f.output, nil
}

func testProfile() session.UserProfile {
	return session.UserProfile{
		Age:             34,
		GenderIdentity:  session.GenderNonBinary,
		Ethnicity:       "Irish",
		VulnerableScore: 7,
		AnxietyLevel:    session.AnxietyHigh,
		BreakupType:     session.BreakupGhosting,
		Background:      "They stopped replying three weeks ago.",
	}
}

func TestRecommendParsesStructuredOutput(t *testing.T) {
	llm := &fakeLLM{output: `{"identifiedTherapeuticNeeds":["CBT","Grief Counselling"],"recommendations":"Start with grounding exercises."}`}
	c := NewClient(llm)

	reco, err := c.Recommend(context.Background(), testProfile())
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if len(reco.IdentifiedTherapeuticNeeds) != 2 || reco.IdentifiedTherapeuticNeeds[0] != "CBT" {
		t.Errorf("needs = %v", reco.IdentifiedTherapeuticNeeds)
	}
	if reco.Recommendations != "Start with grounding exercises." {
		t.Errorf("recommendations = %q", reco.Recommendations)
	}

	if llm.last.Schema == nil || llm.last.SchemaName != "personalized_therapy" {
		t.Errorf("expected strict schema request, got %+v", llm.last.SchemaName)
	}
	if !strings.Contains(llm.last.Input, "Age: 34") || !strings.Contains(llm.last.Input, "Breakup Type: Ghosting") {
		t.Errorf("prompt missing profile fields:\n%s", llm.last.Input)
	}
	if !strings.Contains(llm.last.Input, "Background: They stopped replying") {
		t.Errorf("prompt missing background:\n%s", llm.last.Input)
	}
}

func TestAdaptLanguageParsesStructuredOutput(t *testing.T) {
	llm := &fakeLLM{output: `{"adaptedLanguage":"Gentle, affirming British English."}`}
	c := NewClient(llm)

	style, err := c.AdaptLanguage(context.Background(), testProfile())
	if err != nil {
		t.Fatalf("adapt: %v", err)
	}
	if style.AdaptedLanguage != "Gentle, affirming British English." {
		t.Errorf("adapted = %q", style.AdaptedLanguage)
	}
	if llm.last.SchemaName != "adapted_language" {
		t.Errorf("schema name = %q", llm.last.SchemaName)
	}
}

func TestAdaptLanguageOmitsEmptyBackground(t *testing.T) {
	llm := &fakeLLM{output: `{"adaptedLanguage":"x"}`}
	c := NewClient(llm)

	p := testProfile()
	p.Background = ""
	if _, err := c.AdaptLanguage(context.Background(), p); err != nil {
		t.Fatalf("adapt: %v", err)
	}
	if strings.Contains(llm.last.Input, "Background/Context:") {
		t.Errorf("empty background must be omitted:\n%s", llm.last.Input)
	}
}

func TestRespondCarriesRapportAndHistory(t *testing.T) {
	llm := &fakeLLM{output: `{"response":"I'm here with you.","updatedRapportLevel":4,"detectedSentiment":"loneliness"}`}
	c := NewClient(llm)

	res, err := c.Respond(context.Background(), session.ResponderInput{
		Profile:        testProfile(),
		CurrentMessage: "It still hurts.",
		RapportLevel:   3,
		RecentHistory: []session.HistoryEntry{
			{Role: "user", Text: "I can't sleep."},
			{Role: "ai", Text: "That sounds exhausting."},
		},
	})
	if err != nil {
		t.Fatalf("respond: %v", err)
	}
	if res.Response != "I'm here with you." || res.UpdatedRapportLevel != 4 || res.DetectedSentiment != "loneliness" {
		t.Errorf("unexpected result %+v", res)
	}

	in := llm.last.Input
	if !strings.Contains(in, "Current Rapport Level: 3") {
		t.Errorf("rapport missing:\n%s", in)
	}
	if !strings.Contains(in, "user: I can't sleep.") || !strings.Contains(in, "ai: That sounds exhausting.") {
		t.Errorf("history missing:\n%s", in)
	}
	if !strings.Contains(in, "Current Message: It still hurts.") {
		t.Errorf("current message missing:\n%s", in)
	}
}

func TestFlowErrorsPropagate(t *testing.T) {
	llm := &fakeLLM{err: errors.New("rate limited")}
	c := NewClient(llm)

	if _, err := c.Recommend(context.Background(), testProfile()); err == nil {
		t.Fatal("expected error from failing provider")
	}
	if _, err := c.Respond(context.Background(), session.ResponderInput{Profile: testProfile()}); err == nil {
		t.Fatal("expected error from failing provider")
	}
}

func TestMalformedOutputFails(t *testing.T) {
	llm := &fakeLLM{output: `not json`}
	c := NewClient(llm)
	if _, err := c.AdaptLanguage(context.Background(), testProfile()); err == nil {
		t.Fatal("expected decode error")
	}
}
