package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/genai"

	"rentals/internal/config"
)

// GeminiBackend generates structured output with the Gemini API using a
// response schema and JSON MIME type.
type GeminiBackend struct {
	client *genai.Client
	model  string
}

// NewGeminiBackend creates a Gemini client from configuration.
func NewGeminiBackend(ctx context.Context, cfg config.GeminiConfig, timeout time.Duration) (*GeminiBackend, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: timeout}
	}
	if cfg.APIBase != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.APIBase}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiBackend{client: client, model: cfg.Model}, nil
}

// Name returns "gemini".
func (b *GeminiBackend) Name() string { return "gemini" }

// Complete sends the prompt and returns the response text.
func (b *GeminiBackend) Complete(ctx context.Context, prompt string, schema *Schema) (string, error) {
	genCfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   geminiSchema(schema),
	}

	resp, err := b.client.Models.GenerateContent(ctx, b.model, genai.Text(prompt), genCfg)
	if err != nil {
		return "", classifyGeminiError(err)
	}
	if resp == nil {
		return "", errors.New("received empty response from Gemini API")
	}

	text := resp.Text()
	if text == "" {
		return "", errors.New("gemini response has no text")
	}
	return text, nil
}

func geminiSchema(schema *Schema) *genai.Schema {
	properties := make(map[string]*genai.Schema, len(schema.Fields))
	ordering := make([]string, 0, len(schema.Fields))
	for _, f := range schema.Fields {
		prop := &genai.Schema{
			Type:        genai.TypeString,
			Description: f.Description,
		}
		if f.NonEmpty {
			prop.MinLength = genai.Ptr[int64](1)
		}
		properties[f.Name] = prop
		ordering = append(ordering, f.Name)
	}

	return &genai.Schema{
		Type:             genai.TypeObject,
		Description:      schema.Description,
		Properties:       properties,
		PropertyOrdering: ordering,
		Required:         schema.RequiredFields(),
	}
}

func classifyGeminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if retryableStatus(apiErr.Code) {
			return Transient(err)
		}
		return fmt.Errorf("api error (status %d): %w", apiErr.Code, err)
	}

	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		if retryableStatus(apiErrPtr.Code) {
			return Transient(err)
		}
		return fmt.Errorf("api error (status %d): %w", apiErrPtr.Code, err)
	}

	return err
}
