package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"rentals/internal/config"
)

// OpenAIBackend talks to any OpenAI-compatible chat completions API and asks
// for a json_schema shaped response.
type OpenAIBackend struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

// NewOpenAIBackend creates a backend from configuration.
func NewOpenAIBackend(cfg config.OpenAIConfig, timeout time.Duration) *OpenAIBackend {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.APIBase != "" {
		clientCfg.BaseURL = cfg.APIBase
	}
	if timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: timeout}
	}

	return &OpenAIBackend{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.ChatModel,
		temperature: float32(cfg.ChatTemperature),
		maxTokens:   cfg.ChatMaxTokens,
	}
}

// Name returns "openai".
func (b *OpenAIBackend) Name() string { return "openai" }

// Complete sends the prompt and returns the first choice's content.
func (b *OpenAIBackend) Complete(ctx context.Context, prompt string, schema *Schema) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: b.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: schemaInstruction(schema)},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:        schema.Name,
				Description: schema.Description,
				Schema:      schema,
			},
		},
	}
	if b.temperature > 0 {
		req.Temperature = b.temperature
	}
	if b.maxTokens > 0 {
		req.MaxTokens = b.maxTokens
	}

	resp, err := b.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", classifyOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices in response")
	}
	return resp.Choices[0].Message.Content, nil
}

// classifyOpenAIError marks rate limits, server errors and network failures
// as transient.
func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if retryableStatus(apiErr.HTTPStatusCode) {
			return Transient(err)
		}
		return fmt.Errorf("api error (status %d): %w", apiErr.HTTPStatusCode, err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.HTTPStatusCode == 0 || retryableStatus(reqErr.HTTPStatusCode) {
			return Transient(err)
		}
		return fmt.Errorf("request error (status %d): %w", reqErr.HTTPStatusCode, err)
	}

	return err
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// schemaInstruction tells models that ignore response_format what to return.
func schemaInstruction(schema *Schema) string {
	doc, err := schema.MarshalJSON()
	if err != nil {
		return "Respond only with a JSON object."
	}
	return fmt.Sprintf("Respond only with a JSON object named %s matching this JSON Schema: %s", schema.Name, doc)
}
