package session

import "fmt"

const (
	minAge              = 13
	maxAge              = 100
	maxVulnerableScore  = 10
	minBackgroundLength = 10
)

// FieldError is a single intake-form validation failure, keyed by field name
// so the client can render it next to the offending input.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string { return e.Field + ": " + e.Message }

// ValidationErrors aggregates every failing field of one submission.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	if len(v) == 1 {
		return v[0].Error()
	}
	return fmt.Sprintf("%s (and %d more)", v[0].Error(), len(v)-1)
}

// ValidateProfile checks the intake form constraints. A nil return means the
// profile may be used to start a session; validation never reaches the network.
func ValidateProfile(p UserProfile) error {
	var errs ValidationErrors

	if p.Age < minAge || p.Age > maxAge {
		errs = append(errs, FieldError{"age", fmt.Sprintf("must be between %d and %d", minAge, maxAge)})
	}
	switch p.GenderIdentity {
	case GenderMale, GenderFemale, GenderNonBinary:
	default:
		errs = append(errs, FieldError{"genderIdentity", "must be Male, Female or Non-Binary"})
	}
	if p.VulnerableScore < 0 || p.VulnerableScore > maxVulnerableScore {
		errs = append(errs, FieldError{"vulnerableScore", fmt.Sprintf("must be between 0 and %d", maxVulnerableScore)})
	}
	switch p.AnxietyLevel {
	case AnxietyLow, AnxietyMedium, AnxietyHigh:
	default:
		errs = append(errs, FieldError{"anxietyLevel", "must be Low, Medium or High"})
	}
	switch p.BreakupType {
	case BreakupMutual, BreakupGhosting, BreakupCheating, BreakupDemise, BreakupDivorce:
	default:
		errs = append(errs, FieldError{"breakupType", "must be one of Mutual, Ghosting, Cheating, Demise, Divorce"})
	}
	if len(p.Background) < minBackgroundLength {
		errs = append(errs, FieldError{"background", fmt.Sprintf("must be at least %d characters", minBackgroundLength)})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// normalizedAnxiety maps the form's Medium level to High for the responder
// call only; the stored profile keeps the original value.
func normalizedAnxiety(level AnxietyLevel) AnxietyLevel {
	if level == AnxietyMedium {
		return AnxietyHigh
	}
	return level
}
