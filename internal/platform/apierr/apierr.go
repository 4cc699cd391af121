package apierr

import "fmt"

// Machine codes shared by the pipeline and the HTTP boundary.
const (
	CodeValidationFailed      = "VALIDATION_FAILED"
	CodeDensityFailed         = "DENSITY_FAILED"
	CodeLowInteractionDensity = "LOW_INTERACTION_DENSITY"
	CodeGenerationError       = "GENERATION_ERROR"
)

type Violation struct {
	Issue string `json:"issue"`
}

// Error is the structured failure object returned to callers. A caller always
// receives either a complete storyboard or one of these; never both.
type Error struct {
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	Hints      []string    `json:"hints"`
	Violations []Violation `json:"violations"`
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Code
}

func New(code, message string, hints []string, issues []string) *Error {
	violations := make([]Violation, 0, len(issues))
	for _, issue := range issues {
		violations = append(violations, Violation{Issue: issue})
	}
	return &Error{Code: code, Message: message, Hints: hints, Violations: violations}
}

// GenericHints are attached to GENERATION_ERROR failures where nothing more
// specific is known.
func GenericHints() []string {
	return []string{
		"Check that at least one learning objective was provided",
		"Verify the LLM gateway credentials and base URL",
		"Review service logs for the underlying error",
	}
}

func Generation(err error) *Error {
	msg := "storyboard generation failed"
	if err != nil {
		msg = err.Error()
	}
	return New(CodeGenerationError, msg, GenericHints(), nil)
}
