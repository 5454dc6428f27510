package model

// Messages shown to end users when an enhancement fails.
const (
	MessageInvalidInput      = "Invalid input."
	MessageEnhancementFailed = "Failed to enhance description with AI."
)

// EnhancementRequest holds validated property facts for a rewrite
type EnhancementRequest struct {
	Address     string  `json:"address" validate:"required"`
	Price       float64 `json:"price" validate:"gt=0"`
	Amenities   string  `json:"amenities" validate:"required"`
	Description string  `json:"description" validate:"required"`
}

// EnhancementResult is the rewritten description
type EnhancementResult struct {
	EnhancedDescription string `json:"enhancedDescription"`
}

// Outcome is the success/failure envelope returned to callers.
// Exactly one of Data and Error is set.
type Outcome struct {
	Success bool               `json:"success"`
	Data    *EnhancementResult `json:"data,omitempty"`
	Error   string             `json:"error,omitempty"`
}

// Succeeded builds a Success outcome.
func Succeeded(result EnhancementResult) Outcome {
	return Outcome{Success: true, Data: &result}
}

// Failed builds a Failure outcome with a display-safe message.
func Failed(message string) Outcome {
	return Outcome{Success: false, Error: message}
}
