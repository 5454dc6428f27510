package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"rentals/internal/model"
)

// Enhancer rewrites property descriptions.
type Enhancer interface {
	EnhanceDescription(ctx context.Context, raw map[string]any) model.Outcome
}

// EnhanceHandler exposes description enhancement over HTTP
type EnhanceHandler struct {
	enhancer Enhancer
}

// NewEnhanceHandler creates a new enhance handler
func NewEnhanceHandler(enhancer Enhancer) *EnhanceHandler {
	return &EnhanceHandler{enhancer: enhancer}
}

// Enhance handles POST /api/v1/listings/enhance-description
func (h *EnhanceHandler) Enhance(c *gin.Context) {
	var raw map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil {
		c.JSON(http.StatusBadRequest, model.Failed(model.MessageInvalidInput))
		return
	}

	outcome := h.enhancer.EnhanceDescription(c.Request.Context(), raw)
	c.JSON(outcomeStatus(outcome), outcome)
}

func outcomeStatus(o model.Outcome) int {
	switch {
	case o.Success:
		return http.StatusOK
	case o.Error == model.MessageInvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}
