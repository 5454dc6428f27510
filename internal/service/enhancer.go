package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"rentals/internal/logging"
	"rentals/internal/metrics"
	"rentals/internal/model"
)

// DescriptionEnhancer runs the enhancement pipeline: validate, build the
// prompt, generate against EnhancementSchema and adapt the result into an
// Outcome. It never returns an error or panics to its caller.
type DescriptionEnhancer struct {
	generator Generator
	timeout   time.Duration
	metrics   *metrics.Recorder
	logger    zerolog.Logger
}

// EnhancerOption configures a DescriptionEnhancer.
type EnhancerOption func(*DescriptionEnhancer)

// WithEnhancerMetrics sets the metrics recorder.
func WithEnhancerMetrics(m *metrics.Recorder) EnhancerOption {
	return func(e *DescriptionEnhancer) { e.metrics = m }
}

// WithEnhancerLogger sets the logger.
func WithEnhancerLogger(l zerolog.Logger) EnhancerOption {
	return func(e *DescriptionEnhancer) { e.logger = l }
}

// NewDescriptionEnhancer creates an enhancer. A zero timeout means the
// caller's context alone bounds each call.
func NewDescriptionEnhancer(generator Generator, timeout time.Duration, opts ...EnhancerOption) *DescriptionEnhancer {
	e := &DescriptionEnhancer{
		generator: generator,
		timeout:   timeout,
		metrics:   metrics.Nop(),
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// EnhanceDescription rewrites the description in raw caller input.
func (e *DescriptionEnhancer) EnhanceDescription(ctx context.Context, raw map[string]any) (outcome model.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error().Interface("panic", r).Msg("enhancement panicked")
			e.metrics.Outcome("generation_failure")
			outcome = model.Failed(model.MessageEnhancementFailed)
		}
	}()

	logger := logging.Ctx(ctx, e.logger)
	start := time.Now()
	result, err := e.run(ctx, raw)
	e.metrics.Outcome(outcomeLabel(err))

	var verr *ValidationError
	switch {
	case err == nil:
		logger.Info().Dur("took", time.Since(start)).Int("length", len(result.EnhancedDescription)).Msg("description enhanced")
	case errors.As(err, &verr):
		logger.Debug().Err(err).Msg("rejected enhancement request")
	default:
		logger.Error().Err(err).Dur("took", time.Since(start)).Msg("description enhancement failed")
	}

	return Adapt(result, err)
}

// Enhance is EnhanceDescription for an already typed request. The request is
// still validated.
func (e *DescriptionEnhancer) Enhance(ctx context.Context, req model.EnhancementRequest) model.Outcome {
	return e.EnhanceDescription(ctx, RequestFields(req))
}

func (e *DescriptionEnhancer) run(ctx context.Context, raw map[string]any) (model.EnhancementResult, error) {
	req, err := Validate(raw)
	if err != nil {
		return model.EnhancementResult{}, err
	}

	prompt := BuildPrompt(req)

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	obj, err := e.generator.Generate(ctx, prompt, EnhancementSchema)
	if err != nil {
		return model.EnhancementResult{}, err
	}

	result, err := DecodeEnhancement(obj)
	if err != nil {
		return model.EnhancementResult{}, fmt.Errorf("decode enhancement: %w", err)
	}
	return result, nil
}
