package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentals/internal/model"
)

func TestEnhance(t *testing.T) {
	tests := []struct {
		name       string
		outcome    model.Outcome
		wantStatus int
		wantBody   string
	}{
		{
			name:       "success",
			outcome:    model.Succeeded(model.EnhancementResult{EnhancedDescription: "Bright and airy."}),
			wantStatus: http.StatusOK,
			wantBody:   `{"success": true, "data": {"enhancedDescription": "Bright and airy."}}`,
		},
		{
			name:       "invalid input",
			outcome:    model.Failed(model.MessageInvalidInput),
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"success": false, "error": "Invalid input."}`,
		},
		{
			name:       "generation failure",
			outcome:    model.Failed(model.MessageEnhancementFailed),
			wantStatus: http.StatusBadGateway,
			wantBody:   `{"success": false, "error": "Failed to enhance description with AI."}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubEnhancer{outcome: tt.outcome}
			router := newTestRouter(t, stub)

			w := do(router, http.MethodPost, "/api/v1/listings/enhance-description", map[string]any{
				"address":     "123 Main St, Anytown, USA",
				"price":       2500,
				"amenities":   "In-unit laundry, Gym, Rooftop deck",
				"description": "A nice apartment.",
			})

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
			require.Equal(t, 1, stub.calls)
			assert.Equal(t, "123 Main St, Anytown, USA", stub.got["address"])
			assert.Equal(t, 2500.0, stub.got["price"])
		})
	}
}

func TestEnhance_MalformedBody(t *testing.T) {
	stub := &stubEnhancer{}
	router := newTestRouter(t, stub)

	w := do(router, http.MethodPost, "/api/v1/listings/enhance-description", `{"address": `)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"success": false, "error": "Invalid input."}`, w.Body.String())
	assert.Equal(t, 0, stub.calls)
}
