package service

import (
	"errors"
	"strings"

	"rentals/internal/model"
)

// Adapt converts a pipeline result into the Outcome envelope. Validation
// failures become "Invalid input."; every other error, and a result with a
// blank description, collapses to the generic enhancement failure.
func Adapt(result model.EnhancementResult, err error) model.Outcome {
	if err == nil {
		if strings.TrimSpace(result.EnhancedDescription) == "" {
			return model.Failed(model.MessageEnhancementFailed)
		}
		return model.Succeeded(result)
	}

	var verr *ValidationError
	if errors.As(err, &verr) {
		return model.Failed(model.MessageInvalidInput)
	}
	return model.Failed(model.MessageEnhancementFailed)
}

// DecodeEnhancement reads the enhanced description out of a schema-checked
// object. A missing, non-text or blank value is a schema mismatch.
func DecodeEnhancement(obj map[string]any) (model.EnhancementResult, error) {
	value, ok := obj["enhancedDescription"].(string)
	if !ok || strings.TrimSpace(value) == "" {
		return model.EnhancementResult{}, ErrSchemaMismatch
	}
	return model.EnhancementResult{EnhancedDescription: value}, nil
}

// outcomeLabel is the metrics label for a finished call.
func outcomeLabel(err error) string {
	var verr *ValidationError
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &verr):
		return "invalid_input"
	case errors.Is(err, ErrSchemaMismatch):
		return "schema_mismatch"
	default:
		return "generation_failure"
	}
}
