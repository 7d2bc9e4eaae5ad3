package flows

import (
	"fmt"
	"strings"

	"github.com/manas284/empathy-ai/internal/session"
)

const recommendInstructions = `You are an AI therapist. Your task is to:
1. Analyze the user's profile information provided below, especially their background, age, anxiety level, and breakup type.
2. From this analysis, identify the primary therapeutic needs or approaches (such as CBT, IPT, Grief Counseling, or others if more appropriate) that would be most beneficial for the user. Populate the 'identifiedTherapeuticNeeds' field with these.
3. Based on these AI-identified needs and the overall user profile, generate tailored therapy recommendations. These recommendations should be empathetic, contextually relevant, and actionable. Populate the 'recommendations' field.
Use British English with medical terms where appropriate.`

const adaptInstructions = `Based on the user's information, infer the most relevant therapeutic approaches (like CBT, IPT, Grief Counseling) that would suit their situation. Then, adapt the language and therapeutic techniques to provide relevant and hyper-personalized support. Use British English and medical terms where appropriate.

Your task is to generate the 'adaptedLanguage' string. This string should describe the AI's therapeutic style and language, reflecting the needs you've inferred for this user.`

const respondInstructions = `You are an empathetic AI therapist supporting a user through a breakup. Respond to the user's current message with warmth and clinical care, in British English with medical terms where appropriate.
Your task is to:
1. Generate a supportive, contextually relevant reply to the user's current message. Populate the 'response' field.
2. Reassess the rapport between you and the user on a 0-5 scale, starting from the current level and adjusting for how the conversation is going. Populate the 'updatedRapportLevel' field.
3. Describe the emotional sentiment you detect in the user's current message in a short phrase. Populate the 'detectedSentiment' field.`

// profileBlock renders the shared user-profile section of every prompt.
func profileBlock(b *strings.Builder, p session.UserProfile) {
	fmt.Fprintf(b, "Age: %d\n", p.Age)
	fmt.Fprintf(b, "Gender Identity: %s\n", p.GenderIdentity)
	fmt.Fprintf(b, "Ethnicity: %s\n", p.Ethnicity)
	fmt.Fprintf(b, "Vulnerable Score: %d\n", p.VulnerableScore)
	fmt.Fprintf(b, "Anxiety Level: %s\n", p.AnxietyLevel)
	fmt.Fprintf(b, "Breakup Type: %s\n", p.BreakupType)
}

func recommendInput(p session.UserProfile) string {
	var b strings.Builder
	b.WriteString("User Profile:\n")
	profileBlock(&b, p)
	fmt.Fprintf(&b, "Background: %s\n", p.Background)
	return b.String()
}

func adaptInput(p session.UserProfile) string {
	var b strings.Builder
	b.WriteString("User Information:\n")
	profileBlock(&b, p)
	if p.Background != "" {
		fmt.Fprintf(&b, "Background/Context: %s\n", p.Background)
	}
	return b.String()
}

func respondInput(in session.ResponderInput) string {
	var b strings.Builder
	b.WriteString("User Profile:\n")
	profileBlock(&b, in.Profile)
	fmt.Fprintf(&b, "Background: %s\n", in.Profile.Background)
	fmt.Fprintf(&b, "\nCurrent Rapport Level: %d\n", in.RapportLevel)
	if len(in.RecentHistory) > 0 {
		b.WriteString("\nRecent Conversation:\n")
		for _, h := range in.RecentHistory {
			fmt.Fprintf(&b, "%s: %s\n", h.Role, h.Text)
		}
	}
	fmt.Fprintf(&b, "\nCurrent Message: %s\n", in.CurrentMessage)
	return b.String()
}
